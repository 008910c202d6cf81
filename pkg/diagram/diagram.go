package diagram

import (
	"errors"
	"fmt"
	"maps"
)

var (
	// ErrInvalidNodeID is returned by [Graph.AddNode] when the node ID is empty.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [Graph.AddNode] when a node with the
	// same ID was already declared.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrUnknownSourceNode is returned by [Graph.AddEdge] when the From node
	// has not been declared.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [Graph.AddEdge] when the To node
	// has not been declared.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrInvalidStatementKind is returned by [Graph.AddTrailer] for a kind
	// other than graph, node or edge.
	ErrInvalidStatementKind = errors.New("statement kind must be graph, node or edge")
)

// Attrs holds Graphviz attributes by name. Values are kept as strings exactly
// as they will appear in DOT (e.g. "32", "#E6F2FF", "rounded,filled").
type Attrs map[string]string

// Clone returns a copy of a. The copy of a nil map is an empty map.
func (a Attrs) Clone() Attrs {
	out := make(Attrs, len(a))
	maps.Copy(out, a)
	return out
}

// Merge returns a copy of a overlaid with the entries of b.
func (a Attrs) Merge(b Attrs) Attrs {
	out := a.Clone()
	maps.Copy(out, b)
	return out
}

// Node is a labeled vertex drawn with the attributes of its style preset.
type Node struct {
	ID       string   // Unique within one graph
	Label    string   // Display text, may contain newlines
	Category Category // Category of the preset the node was declared with
	Style    string   // Name of the preset the node was declared with
	Attrs    Attrs    // Resolved visual attributes (preset plus overrides)
}

// Edge is a directed connection between two declared nodes. Multiple edges
// between the same pair are allowed.
type Edge struct {
	From  string
	To    string
	Label string // Optional
	Attrs Attrs  // Optional per-edge attributes (style, color, arrowhead, fontsize)
}

// Statement is a default-attribute statement such as node [margin="0.35"].
// Kind is "graph", "node" or "edge".
type Statement struct {
	Kind  string
	Attrs Attrs
}

// Graph owns the nodes, edges and global rendering attributes of one diagram.
// Nodes and edges keep their declaration order so encoding is deterministic.
//
// The zero value is not usable; use [New].
// Graph is not safe for concurrent mutation.
type Graph struct {
	name      string
	format    string
	attrs     Attrs
	nodeAttrs Attrs
	edgeAttrs Attrs
	nodes     []Node
	index     map[string]int
	edges     []Edge
	trailers  []Statement
}

// New creates an empty directed graph with the given name and PNG output.
func New(name string) *Graph {
	return &Graph{
		name:      name,
		format:    "png",
		attrs:     Attrs{},
		nodeAttrs: Attrs{},
		edgeAttrs: Attrs{},
		index:     make(map[string]int),
	}
}

// Name returns the graph name used in the DOT header.
func (g *Graph) Name() string { return g.name }

// Format returns the output format the diagram is declared with.
func (g *Graph) Format() string { return g.format }

// SetFormat changes the declared output format.
func (g *Graph) SetFormat(format string) { g.format = format }

// SetAttr sets a graph-level attribute such as rankdir or dpi.
func (g *Graph) SetAttr(key, value string) { g.attrs[key] = value }

// SetNodeDefault sets a default attribute applied to every node.
func (g *Graph) SetNodeDefault(key, value string) { g.nodeAttrs[key] = value }

// SetEdgeDefault sets a default attribute applied to every edge.
func (g *Graph) SetEdgeDefault(key, value string) { g.edgeAttrs[key] = value }

// Attrs returns a copy of the graph-level attributes.
func (g *Graph) Attrs() Attrs { return g.attrs.Clone() }

// NodeDefaults returns a copy of the node default attributes.
func (g *Graph) NodeDefaults() Attrs { return g.nodeAttrs.Clone() }

// EdgeDefaults returns a copy of the edge default attributes.
func (g *Graph) EdgeDefaults() Attrs { return g.edgeAttrs.Clone() }

// AddTrailer appends a default-attribute statement that is written after
// every node and edge. Graphviz applies defaults only to elements declared
// later, so a trailer leaves the existing nodes and edges unchanged.
func (g *Graph) AddTrailer(kind string, attrs Attrs) error {
	switch kind {
	case "graph", "node", "edge":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatementKind, kind)
	}
	g.trailers = append(g.trailers, Statement{Kind: kind, Attrs: attrs.Clone()})
	return nil
}

// Trailers returns the trailing statements in declaration order.
func (g *Graph) Trailers() []Statement {
	out := make([]Statement, len(g.trailers))
	for i, s := range g.trailers {
		out[i] = Statement{Kind: s.Kind, Attrs: s.Attrs.Clone()}
	}
	return out
}

// AddNode declares a node drawn with the given preset. Extra attributes
// override the preset for this node only.
func (g *Graph) AddNode(id, label string, style Style, extra Attrs) error {
	if id == "" {
		return ErrInvalidNodeID
	}
	if _, ok := g.index[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNodeID, id)
	}
	g.index[id] = len(g.nodes)
	g.nodes = append(g.nodes, Node{
		ID:       id,
		Label:    label,
		Category: style.Category(),
		Style:    style.Name(),
		Attrs:    style.Attrs().Merge(extra),
	})
	return nil
}

// AddEdge declares a directed edge. Both endpoints must already be declared.
func (g *Graph) AddEdge(e Edge) error {
	if _, ok := g.index[e.From]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
	}
	if _, ok := g.index[e.To]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
	}
	e.Attrs = e.Attrs.Clone()
	g.edges = append(g.edges, e)
	return nil
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	i, ok := g.index[id]
	if !ok {
		return Node{}, false
	}
	return g.nodes[i], true
}

// Nodes returns the nodes in declaration order.
func (g *Graph) Nodes() []Node {
	out := make([]Node, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Edges returns the edges in declaration order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// NodeIDs returns the node identifiers in declaration order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, len(g.nodes))
	for i, n := range g.nodes {
		ids[i] = n.ID
	}
	return ids
}

// NodeCount returns the number of declared nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// EdgeCount returns the number of declared edges.
func (g *Graph) EdgeCount() int { return len(g.edges) }

// Validate checks that every edge references declared nodes.
func (g *Graph) Validate() error {
	for _, e := range g.edges {
		if _, ok := g.index[e.From]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownSourceNode, e.From)
		}
		if _, ok := g.index[e.To]; !ok {
			return fmt.Errorf("%w: %s", ErrUnknownTargetNode, e.To)
		}
	}
	return nil
}
