package whitelist

import (
	"os"
	"path"
	"sort"
	"strings"

	"github.com/odooup/odooup/internal/modulegraph"
)

// DockerignorePlaceholder marks where the generated part of .dockerignore starts
const DockerignorePlaceholder = "# Autogenerated file content from here ... DO NOT MODIFY"

// DockerignoreSnippet renders the ignore rules mirroring every sparse
// checkout: each namespace is ignored except for its whitelisted modules.
func DockerignoreSnippet(root string, g *modulegraph.Graph) ([]string, error) {
	type entry struct {
		namespace string
		file      string
	}
	var entries []entry
	for _, p := range persistenceFiles(g) {
		entries = append(entries, entry{NamespaceFromPersistenceFile(root, p), p})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].namespace < entries[j].namespace })

	var snippet []string
	for _, e := range entries {
		lines, err := readLines(e.file)
		if err != nil {
			return nil, err
		}
		sort.Strings(lines)

		snippet = append(snippet, path.Join(e.namespace, "**"))
		for _, line := range lines {
			if strings.Contains(line, "!setup") {
				continue
			}
			snippet = append(snippet, "!"+path.Join(e.namespace, line))
		}
	}
	return snippet, nil
}

// ReconcileDockerignore rewrites everything below the placeholder line of
// the dockerignore file at file. Lines above it are kept as they are; the
// placeholder is appended when absent. A missing file is returned as an
// os.ErrNotExist error.
func ReconcileDockerignore(root, file string, g *modulegraph.Graph) error {
	snippet, err := DockerignoreSnippet(root, g)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return err
	}

	var out []string
	found := false
	for _, line := range strings.Split(strings.TrimSuffix(string(data), "\n"), "\n") {
		out = append(out, line)
		if strings.Contains(line, DockerignorePlaceholder) {
			found = true
			break
		}
	}
	if !found {
		if len(out) == 1 && out[0] == "" {
			out = out[:0]
		}
		out = append(out, DockerignorePlaceholder)
	}
	out = append(out, snippet...)

	return os.WriteFile(file, []byte(strings.Join(out, "\n")+"\n"), 0644)
}
