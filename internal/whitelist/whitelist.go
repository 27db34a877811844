// Package whitelist restricts the git sparse checkout of vendored addon
// repositories to the dependency tree of the modules a project uses.
//
// Each namespace (the directory holding a set of modules, usually a vendored
// repository) gets a persistence file next to it listing the modules to
// check out. The repository's sparse-checkout file is a symlink to it, and
// the project's .dockerignore mirrors the same selection.
package whitelist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/odooup/odooup/internal/git"
	"github.com/odooup/odooup/internal/modulegraph"
)

const (
	// PathLengthWarningThreshold is the default longest dependency chain
	// tolerated before warning
	PathLengthWarningThreshold = 5

	// SetupExclude keeps setup/ out of every sparse checkout
	SetupExclude = "!setup/**"

	// DefaultDockerignore is used when Options.Dockerignore is empty
	DefaultDockerignore = ".dockerignore"
)

var (
	// ErrNotWorkTree means the root is not inside a git work tree
	ErrNotWorkTree = errors.New("you are not inside a work tree")
	// ErrUnknownModule means the module is nowhere in the graph
	ErrUnknownModule = errors.New("unknown module")
	// ErrMissingModule means the module is only known as a dependency
	ErrMissingModule = errors.New("missing module, but referenced")
	// ErrNativeModule means a native module was asked for while skipping them
	ErrNativeModule = errors.New("you have specified a native module while skipping native modules from whitelisting")
)

// MissingDependencyError is a dependency of the whitelisted module that
// was found nowhere under the root
type MissingDependencyError struct {
	Dependency string
	Root       string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("the dependency '%s' was found nowhere under %s", e.Dependency, e.Root)
}

// Options configure a whitelist run
type Options struct {
	Root                string
	Module              string
	SkipNative          bool
	PathLengthThreshold int
	// Dockerignore is resolved against Root when relative
	Dockerignore string
}

// Result describes what a run did. It is returned, partially filled,
// alongside errors too so callers can still show the warnings.
type Result struct {
	Module string
	Root   string
	// LongPath is set when the dependency chain exceeds the threshold
	LongPath []string
	// Added lists the entries appended per namespace
	Added         map[string][]string
	AutoInstalled []string
	// Dockerignore is the file rewritten, "" when none was found
	Dockerignore string
	// Missing lists every referenced module found nowhere in the graph
	Missing []string
	// ManifestErrors holds manifests that could not be parsed
	ManifestErrors error
}

// Whitelister runs whitelist operations against git repositories
type Whitelister struct {
	git git.Runner
}

// New returns a Whitelister using r for git commands
func New(r git.Runner) *Whitelister {
	return &Whitelister{git: r}
}

// Run whitelists opts.Module and its dependency tree for sparse checkout.
// Nothing is written unless the module and all its dependencies resolve.
func (w *Whitelister) Run(ctx context.Context, opts Options) (*Result, error) {
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, err
	}
	if !git.IsInsideWorkTree(ctx, w.git, root) {
		return nil, ErrNotWorkTree
	}

	g, err := modulegraph.Build(root)
	if g == nil {
		return nil, fmt.Errorf("failed to build module graph: %w", err)
	}

	res := &Result{
		Module:         opts.Module,
		Root:           root,
		Added:          make(map[string][]string),
		Missing:        g.Missing(),
		ManifestErrors: err,
	}

	node, ok := g.Node(opts.Module)
	if !ok {
		return res, fmt.Errorf("%w: '%s' is not in the module graph built from %s", ErrUnknownModule, opts.Module, root)
	}
	if node.Missing() {
		return res, fmt.Errorf("%w: while '%s' is itself listed as a dependency somewhere, it was found nowhere under %s",
			ErrMissingModule, opts.Module, root)
	}

	deps, err := g.Ancestors(opts.Module)
	if err != nil {
		return res, err
	}
	res.LongPath = longPath(g, deps, opts.PathLengthThreshold)

	if opts.SkipNative && node.Native() {
		return res, ErrNativeModule
	}

	include := map[string]map[string]bool{node.Namespace: {opts.Module: true}}
	var merr *multierror.Error
	for _, dep := range deps {
		n, _ := g.Node(dep)
		if n.Missing() {
			merr = multierror.Append(merr, &MissingDependencyError{Dependency: dep, Root: root})
			continue
		}
		if opts.SkipNative && n.Native() {
			continue
		}
		if include[n.Namespace] == nil {
			include[n.Namespace] = make(map[string]bool)
		}
		include[n.Namespace][dep] = true
	}
	if err := merr.ErrorOrNil(); err != nil {
		return res, err
	}

	namespaces := make([]string, 0, len(include))
	for ns := range include {
		namespaces = append(namespaces, ns)
	}
	sort.Strings(namespaces)

	for _, ns := range namespaces {
		added, err := w.whitelistNamespace(ctx, ns, include[ns])
		if err != nil {
			return res, fmt.Errorf("failed to whitelist %s: %w", ns, err)
		}
		if len(added) > 0 {
			res.Added[ns] = added
		}
	}

	for {
		added, err := reconcileAutoInstall(g)
		if err != nil {
			return res, fmt.Errorf("failed to reconcile auto_install modules: %w", err)
		}
		if len(added) == 0 {
			break
		}
		res.AutoInstalled = append(res.AutoInstalled, added...)
	}

	dockerignore := opts.Dockerignore
	if dockerignore == "" {
		dockerignore = DefaultDockerignore
	}
	if !filepath.IsAbs(dockerignore) {
		dockerignore = filepath.Join(root, dockerignore)
	}
	switch err := ReconcileDockerignore(root, dockerignore, g); {
	case errors.Is(err, os.ErrNotExist):
		zap.L().Warn("no dockerignore file, skipping", zap.String("path", dockerignore))
	case err != nil:
		return res, fmt.Errorf("failed to update %s: %w", dockerignore, err)
	default:
		res.Dockerignore = dockerignore
	}

	return res, nil
}

// whitelistNamespace enables sparse checkout for the repository at ns and
// appends the modules not yet listed in its persistence file
func (w *Whitelister) whitelistNamespace(ctx context.Context, ns string, modules map[string]bool) ([]string, error) {
	if err := git.EnableSparseCheckout(ctx, w.git, ns); err != nil {
		zap.L().Warn("failed to enable sparse checkout", zap.String("namespace", ns), zap.Error(err))
	}

	persist := PersistenceFile(ns)
	if !fileExists(persist) {
		// a hand-written sparse-checkout file seeds the persistence file
		if err := git.LinkSparseCheckoutFile(ctx, w.git, ns, persist); err != nil {
			zap.L().Warn("failed to link sparse-checkout file", zap.String("namespace", ns), zap.Error(err))
		}
	}
	existing, err := readSet(persist)
	switch {
	case errors.Is(err, os.ErrNotExist):
		existing = map[string]bool{}
	case err != nil:
		return nil, err
	}

	var missing []string
	for _, entry := range append(sortedKeys(modules), SetupExclude) {
		if !existing[entry] {
			missing = append(missing, entry)
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	sort.Strings(missing)

	if err := appendLines(persist, missing); err != nil {
		return nil, err
	}
	return missing, nil
}

// longPath returns the longest chain among deps if it exceeds threshold
func longPath(g *modulegraph.Graph, deps []string, threshold int) []string {
	if threshold <= 0 {
		threshold = PathLengthWarningThreshold
	}
	path, err := g.Subgraph(deps).LongestPath()
	if err != nil {
		zap.L().Warn("cannot measure dependency path length", zap.Error(err))
		return nil
	}
	if len(path)-1 > threshold {
		return path
	}
	return nil
}
