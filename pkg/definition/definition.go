// Package definition reads and writes diagrams declared in TOML or YAML.
//
// A definition file carries the same information as a builtin diagram: graph
// attributes, node and edge defaults, named style presets, nodes and edges.
//
//	name   = "pipeline"
//	output = "pipeline"
//	format = "svg"
//
//	[graph]
//	rankdir = "LR"
//	dpi     = 300
//
//	[[styles]]
//	name     = "service"
//	category = "module"
//	attrs    = { shape = "box", style = "rounded,filled", fillcolor = "#E8F7E4" }
//
//	[[nodes]]
//	id    = "api"
//	label = "API"
//	style = "service"
//
//	[[edges]]
//	from  = "api"
//	to    = "db"
//	label = "SQL"
//
// Trailers are default statements written after every node and edge, so
// they only reach elements Graphviz creates later:
//
//	[[trailers]]
//	kind  = "node"
//	attrs = { margin = 0.35 }
//
// Attribute values may be strings, numbers or booleans; they are converted to
// their DOT text form when the graph is built.
package definition

import (
	"cmp"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/matzehuels/snhsdiag/pkg/diagram"
	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
	"github.com/matzehuels/snhsdiag/pkg/render"
)

// File is the on-disk schema of a diagram definition.
type File struct {
	Name    string `toml:"name" yaml:"name"`
	Title   string `toml:"title,omitempty" yaml:"title,omitempty"`
	Output  string `toml:"output,omitempty" yaml:"output,omitempty"`
	Format  string `toml:"format,omitempty" yaml:"format,omitempty"`
	Message string `toml:"message,omitempty" yaml:"message,omitempty"`

	// GraphName is the name in the DOT header. Defaults to Name.
	GraphName string `toml:"graph_name,omitempty" yaml:"graph_name,omitempty"`

	Graph        map[string]any `toml:"graph,omitempty" yaml:"graph,omitempty"`
	NodeDefaults map[string]any `toml:"node_defaults,omitempty" yaml:"node_defaults,omitempty"`
	EdgeDefaults map[string]any `toml:"edge_defaults,omitempty" yaml:"edge_defaults,omitempty"`

	Styles []Style `toml:"styles,omitempty" yaml:"styles,omitempty"`
	Nodes  []Node  `toml:"nodes" yaml:"nodes"`
	Edges  []Edge  `toml:"edges,omitempty" yaml:"edges,omitempty"`

	// Trailers are default statements written after every node and edge.
	Trailers []Trailer `toml:"trailers,omitempty" yaml:"trailers,omitempty"`
}

// Trailer is a graph, node or edge default statement that only affects
// elements declared after it.
type Trailer struct {
	Kind  string         `toml:"kind" yaml:"kind"`
	Attrs map[string]any `toml:"attrs" yaml:"attrs"`
}

// Style is a named preset shared by several nodes.
type Style struct {
	Name     string         `toml:"name" yaml:"name"`
	Category string         `toml:"category" yaml:"category"`
	Attrs    map[string]any `toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Node declares one node. Style names a preset from the Styles list.
type Node struct {
	ID    string         `toml:"id" yaml:"id"`
	Label string         `toml:"label,omitempty" yaml:"label,omitempty"`
	Style string         `toml:"style,omitempty" yaml:"style,omitempty"`
	Attrs map[string]any `toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// Edge declares one directed edge.
type Edge struct {
	From  string         `toml:"from" yaml:"from"`
	To    string         `toml:"to" yaml:"to"`
	Label string         `toml:"label,omitempty" yaml:"label,omitempty"`
	Attrs map[string]any `toml:"attrs,omitempty" yaml:"attrs,omitempty"`
}

// defaultStyle is used by nodes that name no style.
var defaultStyle = diagram.NewStyle("default", diagram.CategoryModule, nil)

// Validate checks the metadata fields that BuildGraph does not cover.
func (f *File) Validate() error {
	if f.Name == "" {
		return invalid("name is required")
	}
	if err := errs.ValidateDiagramName(f.Name); err != nil {
		return errs.Wrap(errs.ErrCodeInvalidDefinition, err, "name")
	}
	if f.Output != "" {
		if err := errs.ValidateOutputName(f.Output); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidDefinition, err, "output")
		}
	}
	if f.Format != "" {
		if _, err := render.ParseFormat(f.Format); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidDefinition, err, "format")
		}
	}
	if len(f.Nodes) == 0 {
		return invalid("%s: at least one node is required", f.Name)
	}
	return nil
}

// BuildGraph builds the diagram described by f.
func (f *File) BuildGraph() (*diagram.Graph, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}

	g := diagram.New(cmp.Or(f.GraphName, f.Name))
	if f.Format != "" {
		format, _ := render.ParseFormat(f.Format)
		g.SetFormat(string(format))
	}

	for _, section := range []struct {
		name string
		src  map[string]any
		set  func(k, v string)
	}{
		{"graph", f.Graph, g.SetAttr},
		{"node_defaults", f.NodeDefaults, g.SetNodeDefault},
		{"edge_defaults", f.EdgeDefaults, g.SetEdgeDefault},
	} {
		attrs, err := toAttrs(section.src)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s: %s", f.Name, section.name)
		}
		for _, k := range slices.Sorted(maps.Keys(attrs)) {
			section.set(k, attrs[k])
		}
	}

	styles := make(map[string]diagram.Style, len(f.Styles))
	for _, s := range f.Styles {
		if s.Name == "" {
			return nil, invalid("%s: style without name", f.Name)
		}
		if _, dup := styles[s.Name]; dup {
			return nil, invalid("%s: duplicate style %q", f.Name, s.Name)
		}
		cat, err := diagram.ParseCategory(s.Category)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s: style %q", f.Name, s.Name)
		}
		attrs, err := toAttrs(s.Attrs)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s: style %q", f.Name, s.Name)
		}
		styles[s.Name] = diagram.NewStyle(s.Name, cat, attrs)
	}

	for _, n := range f.Nodes {
		style := defaultStyle
		if n.Style != "" {
			var ok bool
			if style, ok = styles[n.Style]; !ok {
				return nil, invalid("%s: node %q uses unknown style %q", f.Name, n.ID, n.Style)
			}
		}
		attrs, err := toAttrs(n.Attrs)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s: node %q", f.Name, n.ID)
		}
		label := n.Label
		if label == "" {
			label = n.ID
		}
		if err := g.AddNode(n.ID, label, style, attrs); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s", f.Name)
		}
	}

	for i, e := range f.Edges {
		attrs, err := toAttrs(e.Attrs)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s: edge %d", f.Name, i)
		}
		if err := g.AddEdge(diagram.Edge{From: e.From, To: e.To, Label: e.Label, Attrs: attrs}); err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s: edge %d", f.Name, i)
		}
	}

	for i, tr := range f.Trailers {
		attrs, err := toAttrs(tr.Attrs)
		if err == nil {
			err = g.AddTrailer(tr.Kind, attrs)
		}
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidDefinition, err, "%s: trailer %d", f.Name, i)
		}
	}

	return g, nil
}

// Definition adapts f to the builtin Definition shape so file-based and
// builtin diagrams are rendered the same way.
func (f *File) Definition() builtin.Definition {
	output := f.Output
	if output == "" {
		output = f.Name
	}
	return builtin.Definition{
		Name:    f.Name,
		Title:   f.Title,
		Output:  output,
		Message: f.Message,
		Build:   f.BuildGraph,
	}
}

// FromDefinition builds d and converts the result into a File.
func FromDefinition(d builtin.Definition) (*File, error) {
	g, err := d.Build()
	if err != nil {
		return nil, err
	}
	f := FromGraph(g)
	if d.Name != f.Name {
		f.GraphName = f.Name
		f.Name = d.Name
	}
	f.Title = d.Title
	f.Output = d.Output
	f.Message = d.Message
	return f, nil
}

// FromGraph converts g into a File. Presets are reconstructed from the
// attributes shared by every node declared with them; the remainder is
// stored per node, so building the File again yields the same DOT.
func FromGraph(g *diagram.Graph) *File {
	f := &File{
		Name:         g.Name(),
		Format:       g.Format(),
		Graph:        fromAttrs(g.Attrs()),
		NodeDefaults: fromAttrs(g.NodeDefaults()),
		EdgeDefaults: fromAttrs(g.EdgeDefaults()),
	}

	type preset struct {
		category diagram.Category
		attrs    diagram.Attrs
	}
	var order []string
	presets := map[string]*preset{}
	for _, n := range g.Nodes() {
		p, ok := presets[n.Style]
		if !ok {
			presets[n.Style] = &preset{category: n.Category, attrs: n.Attrs.Clone()}
			order = append(order, n.Style)
			continue
		}
		for k, v := range p.attrs {
			if n.Attrs[k] != v {
				delete(p.attrs, k)
			}
		}
	}
	for _, name := range order {
		p := presets[name]
		f.Styles = append(f.Styles, Style{Name: name, Category: p.category.String(), Attrs: fromAttrs(p.attrs)})
	}

	for _, n := range g.Nodes() {
		shared := presets[n.Style].attrs
		rest := diagram.Attrs{}
		for k, v := range n.Attrs {
			if sv, ok := shared[k]; !ok || sv != v {
				rest[k] = v
			}
		}
		f.Nodes = append(f.Nodes, Node{ID: n.ID, Label: n.Label, Style: n.Style, Attrs: fromAttrs(rest)})
	}

	for _, e := range g.Edges() {
		f.Edges = append(f.Edges, Edge{From: e.From, To: e.To, Label: e.Label, Attrs: fromAttrs(e.Attrs)})
	}
	for _, s := range g.Trailers() {
		f.Trailers = append(f.Trailers, Trailer{Kind: s.Kind, Attrs: fromAttrs(s.Attrs)})
	}
	return f
}

func toAttrs(m map[string]any) (diagram.Attrs, error) {
	if len(m) == 0 {
		return nil, nil
	}
	out := make(diagram.Attrs, len(m))
	for k, v := range m {
		s, err := attrString(v)
		if err != nil {
			return nil, fmt.Errorf("attribute %q: %w", k, err)
		}
		out[k] = s
	}
	return out, nil
}

func attrString(v any) (string, error) {
	switch v := v.(type) {
	case string:
		return v, nil
	case bool:
		return strconv.FormatBool(v), nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case uint64:
		return strconv.FormatUint(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("unsupported value type %T", v)
}

func fromAttrs(a diagram.Attrs) map[string]any {
	if len(a) == 0 {
		return nil
	}
	out := make(map[string]any, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

func invalid(format string, args ...any) error {
	return errs.New(errs.ErrCodeInvalidDefinition, format, args...)
}
