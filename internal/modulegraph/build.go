package modulegraph

import (
	"path/filepath"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/odooup/odooup/internal/manifest"
	"github.com/odooup/odooup/internal/module"
)

// Build scans root for Odoo modules and links them by their manifest
// depends. Manifests that fail to parse are left out of the graph and
// reported together in the returned error; the graph is still usable then.
// Only a failure to walk root yields a nil graph.
func Build(root string) (*Graph, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	locations, err := module.Find(root)
	if err != nil {
		return nil, err
	}

	var merr *multierror.Error
	g := New()
	g.Root = root
	for _, loc := range locations {
		m, err := manifest.Load(loc.ManifestPath)
		if err != nil {
			merr = multierror.Append(merr, err)
			continue
		}
		g.AddModule(loc.Name, loc.Dir, loc.Namespace, m)
	}

	for _, n := range g.Nodes() {
		if n.Missing() {
			continue
		}
		for _, dep := range n.Manifest.Depends {
			g.AddDependency(n.Name, dep)
		}
	}

	for name, dirs := range g.Duplicates {
		zap.L().Debug("duplicate module ignored", zap.String("module", name), zap.Strings("dirs", dirs))
	}
	zap.L().Debug("module graph built",
		zap.String("root", root),
		zap.Int("modules", len(locations)),
		zap.Int("nodes", g.Len()))

	return g, merr.ErrorOrNil()
}
