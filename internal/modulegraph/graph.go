package modulegraph

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/encoding"
	"gonum.org/v1/gonum/graph/encoding/dot"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/odooup/odooup/internal/manifest"
	"github.com/odooup/odooup/internal/odoo"
)

// Node is a module in the dependency graph. A node that is only referenced
// as a dependency and was found nowhere has no namespace and no manifest.
type Node struct {
	id        int64
	Name      string
	Dir       string
	Namespace string
	Manifest  *manifest.Manifest

	native bool
}

func (n *Node) ID() int64 { return n.id }

// Missing reports whether the module was referenced but not found
func (n *Node) Missing() bool { return n.Manifest == nil }

// Native reports whether the module is vendored from Odoo itself
func (n *Node) Native() bool { return !n.Missing() && n.native }

func (n *Node) DOTID() string { return n.Name }

func (n *Node) Attributes() []encoding.Attribute {
	switch {
	case n.Missing():
		return []encoding.Attribute{{Key: "style", Value: "dashed"}, {Key: "color", Value: "red"}}
	case n.Native():
		return []encoding.Attribute{{Key: "color", Value: "gray"}}
	}
	return nil
}

// CycleError is returned by ordering queries on a graph with dependency cycles
type CycleError struct {
	Cycles [][]string
}

func (e *CycleError) Error() string {
	parts := make([]string, len(e.Cycles))
	for i, c := range e.Cycles {
		parts[i] = strings.Join(c, ", ")
	}
	return "dependency cycle between: " + strings.Join(parts, "; ")
}

// Graph is a directed module graph. Edges point from a dependency to the
// module depending on it, so a module's ancestors are its dependencies.
type Graph struct {
	g      *simple.DirectedGraph
	byName map[string]*Node
	nextID int64

	// Root is the workspace root. Native detection only looks at the part
	// of a namespace below it.
	Root string

	// Duplicates lists module directories shadowed by an earlier
	// module of the same name
	Duplicates map[string][]string
}

// New returns an empty graph
func New() *Graph {
	return &Graph{
		g:          simple.NewDirectedGraph(),
		byName:     make(map[string]*Node),
		Duplicates: make(map[string][]string),
	}
}

func (g *Graph) ensure(name string) *Node {
	if n, ok := g.byName[name]; ok {
		return n
	}
	n := &Node{id: g.nextID, Name: name}
	g.nextID++
	g.byName[name] = n
	g.g.AddNode(n)
	return n
}

// AddModule registers a module found on disk. A module registered twice
// keeps its first location; the second is recorded in Duplicates.
func (g *Graph) AddModule(name, dir, namespace string, m *manifest.Manifest) *Node {
	n := g.ensure(name)
	if !n.Missing() {
		g.Duplicates[name] = append(g.Duplicates[name], dir)
		return n
	}
	n.Dir = dir
	n.Namespace = namespace
	n.Manifest = m
	n.native = odoo.IsNative(g.relative(namespace))
	return n
}

func (g *Graph) relative(path string) string {
	if g.Root == "" {
		return path
	}
	rel, err := filepath.Rel(g.Root, path)
	if err != nil || rel == ".." || strings.HasPrefix(filepath.ToSlash(rel), "../") {
		return path
	}
	return rel
}

// AddDependency records that module depends on dep
func (g *Graph) AddDependency(module, dep string) {
	if module == dep {
		return
	}
	from, to := g.ensure(dep), g.ensure(module)
	g.g.SetEdge(g.g.NewEdge(from, to))
}

// Node returns the named module
func (g *Graph) Node(name string) (*Node, bool) {
	n, ok := g.byName[name]
	return n, ok
}

// Len returns the number of nodes
func (g *Graph) Len() int {
	return len(g.byName)
}

// Nodes returns all nodes sorted by name
func (g *Graph) Nodes() []*Node {
	nodes := make([]*Node, 0, len(g.byName))
	for _, n := range g.byName {
		nodes = append(nodes, n)
	}
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	return nodes
}

// Missing returns the names of referenced modules found nowhere
func (g *Graph) Missing() []string {
	var names []string
	for _, n := range g.Nodes() {
		if n.Missing() {
			names = append(names, n.Name)
		}
	}
	return names
}

// Dependencies returns the direct dependencies of a module, sorted
func (g *Graph) Dependencies(name string) ([]string, error) {
	n, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("module %q is not in the graph", name)
	}
	return sortedNames(g.g.To(n.ID())), nil
}

// Ancestors returns all transitive dependencies of a module, sorted.
// The module itself is not included.
func (g *Graph) Ancestors(name string) ([]string, error) {
	n, ok := g.byName[name]
	if !ok {
		return nil, fmt.Errorf("module %q is not in the graph", name)
	}

	seen := map[int64]bool{n.ID(): true}
	queue := []graph.Node{n}
	var names []string
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		to := g.g.To(cur.ID())
		for to.Next() {
			dep := to.Node()
			if seen[dep.ID()] {
				continue
			}
			seen[dep.ID()] = true
			names = append(names, dep.(*Node).Name)
			queue = append(queue, dep)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Subgraph returns the graph induced by the named nodes. Unknown names are ignored.
func (g *Graph) Subgraph(names []string) *Graph {
	sub := New()
	sub.nextID = g.nextID
	sub.Root = g.Root
	for _, name := range names {
		if n, ok := g.byName[name]; ok && sub.g.Node(n.ID()) == nil {
			sub.byName[name] = n
			sub.g.AddNode(n)
		}
	}
	for _, n := range sub.byName {
		from := g.g.From(n.ID())
		for from.Next() {
			if to := from.Node(); sub.g.Node(to.ID()) != nil {
				sub.g.SetEdge(sub.g.NewEdge(n, to))
			}
		}
	}
	return sub
}

// TopologicalOrder returns nodes with every dependency before its dependents.
// Ties are broken by name.
func (g *Graph) TopologicalOrder() ([]*Node, error) {
	sorted, err := topo.SortStabilized(g.g, byName)
	if err != nil {
		if unorderable, ok := err.(topo.Unorderable); ok {
			cerr := &CycleError{}
			for _, component := range unorderable {
				names := make([]string, len(component))
				for i, n := range component {
					names[i] = n.(*Node).Name
				}
				sort.Strings(names)
				cerr.Cycles = append(cerr.Cycles, names)
			}
			return nil, cerr
		}
		return nil, err
	}

	nodes := make([]*Node, len(sorted))
	for i, n := range sorted {
		nodes[i] = n.(*Node)
	}
	return nodes, nil
}

// LongestPath returns the longest dependency chain in the graph, from the
// deepest dependency to the last dependent.
func (g *Graph) LongestPath() ([]string, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}
	if len(order) == 0 {
		return nil, nil
	}

	dist := make(map[int64]int, len(order))
	prev := make(map[int64]*Node, len(order))
	var end *Node
	for _, n := range order {
		for _, name := range sortedNames(g.g.To(n.ID())) {
			p := g.byName[name]
			if dist[p.ID()]+1 > dist[n.ID()] {
				dist[n.ID()] = dist[p.ID()] + 1
				prev[n.ID()] = p
			}
		}
		if end == nil || dist[n.ID()] > dist[end.ID()] {
			end = n
		}
	}

	var path []string
	for n := end; n != nil; n = prev[n.ID()] {
		path = append([]string{n.Name}, path...)
	}
	return path, nil
}

// LongestPathLength returns the number of edges on the longest path
func (g *Graph) LongestPathLength() (int, error) {
	path, err := g.LongestPath()
	if err != nil || len(path) == 0 {
		return 0, err
	}
	return len(path) - 1, nil
}

// DOT renders the graph in Graphviz format. With a module name, only the
// module and its dependencies are rendered.
func (g *Graph) DOT(name string) ([]byte, error) {
	target := g
	if name != "" {
		deps, err := g.Ancestors(name)
		if err != nil {
			return nil, err
		}
		target = g.Subgraph(append(deps, name))
	}
	return dot.Marshal(target.g, "odooup", "", "  ")
}

func byName(nodes []graph.Node) {
	sort.Slice(nodes, func(i, j int) bool {
		return nodes[i].(*Node).Name < nodes[j].(*Node).Name
	})
}

func sortedNames(it graph.Nodes) []string {
	var names []string
	for it.Next() {
		names = append(names, it.Node().(*Node).Name)
	}
	sort.Strings(names)
	return names
}
