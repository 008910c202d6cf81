package diagram

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
)

// EncodeDOT converts a graph to Graphviz DOT source.
// The output is deterministic: defaults first, then nodes and edges in
// declaration order, then trailing statements. Attributes are listed as
// label first and the rest sorted by name.
func EncodeDOT(g *Graph) []byte {
	var buf bytes.Buffer
	_ = WriteDOT(g, &buf)
	return buf.Bytes()
}

// WriteDOT writes the DOT source of g to w.
func WriteDOT(g *Graph, w io.Writer) error {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %s {\n", quote(g.name))

	if len(g.attrs) > 0 {
		fmt.Fprintf(&buf, "\tgraph [%s]\n", fmtAttrs("", g.attrs))
	}
	if len(g.nodeAttrs) > 0 {
		fmt.Fprintf(&buf, "\tnode [%s]\n", fmtAttrs("", g.nodeAttrs))
	}
	if len(g.edgeAttrs) > 0 {
		fmt.Fprintf(&buf, "\tedge [%s]\n", fmtAttrs("", g.edgeAttrs))
	}

	for _, n := range g.nodes {
		fmt.Fprintf(&buf, "\t%s [%s]\n", quote(n.ID), fmtAttrs(n.Label, n.Attrs))
	}
	for _, e := range g.edges {
		attrs := fmtAttrs(e.Label, e.Attrs)
		if attrs == "" {
			fmt.Fprintf(&buf, "\t%s -> %s\n", quote(e.From), quote(e.To))
			continue
		}
		fmt.Fprintf(&buf, "\t%s -> %s [%s]\n", quote(e.From), quote(e.To), attrs)
	}
	for _, s := range g.trailers {
		fmt.Fprintf(&buf, "\t%s [%s]\n", s.Kind, fmtAttrs("", s.Attrs))
	}

	buf.WriteString("}\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func fmtAttrs(label string, attrs Attrs) string {
	var parts []string
	if label != "" {
		parts = append(parts, "label="+quote(label))
	}
	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		if k == "label" && label != "" {
			continue
		}
		parts = append(parts, k+"="+quote(attrs[k]))
	}
	return strings.Join(parts, " ")
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote renders s as a DOT double-quoted string.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}
