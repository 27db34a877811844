package whitelist

import (
	"github.com/odooup/odooup/internal/modulegraph"
)

// persistenceFiles returns the existing persistence files of every
// namespace in the graph
func persistenceFiles(g *modulegraph.Graph) []string {
	set := make(map[string]bool)
	for _, n := range g.Nodes() {
		if n.Missing() {
			continue
		}
		if p := PersistenceFile(n.Namespace); fileExists(p) {
			set[p] = true
		}
	}
	return sortedKeys(set)
}

// whitelisted returns every module that will be checked out: modules of
// namespaces without a persistence file (no sparse checkout) and every
// persisted entry.
func whitelisted(g *modulegraph.Graph) (map[string]bool, error) {
	out := make(map[string]bool)
	for _, n := range g.Nodes() {
		if !n.Missing() && !fileExists(PersistenceFile(n.Namespace)) {
			out[n.Name] = true
		}
	}
	for _, p := range persistenceFiles(g) {
		lines, err := readLines(p)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			out[line] = true
		}
	}
	return out, nil
}

// reconcileAutoInstall adds auto_install modules whose dependencies are all
// whitelisted to their namespace's persistence file. It returns the modules
// added in this pass; callers repeat until none are added.
func reconcileAutoInstall(g *modulegraph.Graph) ([]string, error) {
	listed, err := whitelisted(g)
	if err != nil {
		return nil, err
	}

	var added []string
	for _, n := range g.Nodes() {
		if n.Missing() || !n.Manifest.AutoInstall {
			continue
		}

		ready := true
		for _, dep := range n.Manifest.Depends {
			if !listed[dep] {
				ready = false
				break
			}
		}
		if !ready {
			continue
		}

		// namespaces without sparse checkout have everything already
		p := PersistenceFile(n.Namespace)
		if !fileExists(p) {
			continue
		}

		existing, err := readSet(p)
		if err != nil {
			return nil, err
		}
		if existing[n.Name] {
			continue
		}

		if err := appendLines(p, []string{n.Name}); err != nil {
			return nil, err
		}
		added = append(added, n.Name)
	}
	return added, nil
}
