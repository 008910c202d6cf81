package diagram

// Builder declares a graph one statement at a time and remembers the first
// error, so literal diagram definitions read as a flat list of calls.
type Builder struct {
	g   *Graph
	err error
}

// NewBuilder starts a graph with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{g: New(name)}
}

// Format sets the output format.
func (b *Builder) Format(format string) *Builder {
	b.g.SetFormat(format)
	return b
}

// Attr sets graph-level attributes.
func (b *Builder) Attr(attrs Attrs) *Builder {
	for k, v := range attrs {
		b.g.SetAttr(k, v)
	}
	return b
}

// NodeDefaults sets default attributes for every node.
func (b *Builder) NodeDefaults(attrs Attrs) *Builder {
	for k, v := range attrs {
		b.g.SetNodeDefault(k, v)
	}
	return b
}

// EdgeDefaults sets default attributes for every edge.
func (b *Builder) EdgeDefaults(attrs Attrs) *Builder {
	for k, v := range attrs {
		b.g.SetEdgeDefault(k, v)
	}
	return b
}

// Node declares a node with a style preset.
func (b *Builder) Node(id, label string, style Style) *Builder {
	if b.err == nil {
		b.err = b.g.AddNode(id, label, style, nil)
	}
	return b
}

// Edge declares a directed edge with an optional label and attributes.
func (b *Builder) Edge(from, to, label string, attrs Attrs) *Builder {
	if b.err == nil {
		b.err = b.g.AddEdge(Edge{From: from, To: to, Label: label, Attrs: attrs})
	}
	return b
}

// Trailer appends a default statement written after every node and edge.
func (b *Builder) Trailer(kind string, attrs Attrs) *Builder {
	if b.err == nil {
		b.err = b.g.AddTrailer(kind, attrs)
	}
	return b
}

// Build returns the graph, or the first declaration error.
func (b *Builder) Build() (*Graph, error) {
	if b.err != nil {
		return nil, b.err
	}
	return b.g, nil
}
