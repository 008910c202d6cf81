// Package analysis reports structural facts about a diagram: how its nodes
// are connected, which of them only emit or only receive edges, and whether
// any cycles exist.
//
// Diagrams are not required to be trees or acyclic; the report simply makes
// their shape visible. Graph algorithms come from gonum.
package analysis

import (
	"slices"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	"github.com/matzehuels/snhsdiag/pkg/diagram"
)

// Report summarizes a diagram.
//
// Components counts weakly connected components. Cycles lists strongly
// connected groups of two or more nodes. ParallelEdges counts edges that
// repeat an earlier from/to pair.
type Report struct {
	Name          string         `json:"name"`
	Nodes         int            `json:"nodes"`
	Edges         int            `json:"edges"`
	LabeledEdges  int            `json:"labeled_edges"`
	Categories    map[string]int `json:"categories"`
	Components    int            `json:"components"`
	Cycles        [][]string     `json:"cycles,omitempty"`
	SelfLoops     []string       `json:"self_loops,omitempty"`
	ParallelEdges int            `json:"parallel_edges"`
	Sources       []string       `json:"sources,omitempty"`
	Sinks         []string       `json:"sinks,omitempty"`
	Isolated      []string       `json:"isolated,omitempty"`
}

// Acyclic reports whether the diagram has no cycles or self loops.
func (r Report) Acyclic() bool {
	return len(r.Cycles) == 0 && len(r.SelfLoops) == 0
}

// Analyze builds a gonum directed graph mirroring g and computes a report.
// Node identifiers in the report follow declaration order.
func Analyze(g *diagram.Graph) Report {
	ids := g.NodeIDs()
	index := make(map[string]int64, len(ids))

	dg := simple.NewDirectedGraph()
	for i, id := range ids {
		index[id] = int64(i)
		dg.AddNode(simple.Node(int64(i)))
	}

	r := Report{
		Name:       g.Name(),
		Nodes:      g.NodeCount(),
		Edges:      g.EdgeCount(),
		Categories: make(map[string]int),
	}
	for _, n := range g.Nodes() {
		r.Categories[n.Category.String()]++
	}

	for _, e := range g.Edges() {
		if e.Label != "" {
			r.LabeledEdges++
		}
		from, to := index[e.From], index[e.To]
		if from == to {
			// simple graphs cannot hold self loops
			if !slices.Contains(r.SelfLoops, e.From) {
				r.SelfLoops = append(r.SelfLoops, e.From)
			}
			continue
		}
		if dg.HasEdgeFromTo(from, to) {
			r.ParallelEdges++
			continue
		}
		dg.SetEdge(dg.NewEdge(dg.Node(from), dg.Node(to)))
	}

	r.Components = len(topo.ConnectedComponents(graph.Undirect{G: dg}))

	var cycles [][]int
	for _, scc := range topo.TarjanSCC(dg) {
		if len(scc) >= 2 {
			cycles = append(cycles, positions(scc))
		}
	}
	// Groups are disjoint, so ordering by first member is total.
	slices.SortFunc(cycles, func(a, b []int) int { return a[0] - b[0] })
	for _, c := range cycles {
		r.Cycles = append(r.Cycles, names(c, ids))
	}

	for i, id := range ids {
		in := dg.To(int64(i)).Len()
		out := dg.From(int64(i)).Len()
		loop := slices.Contains(r.SelfLoops, id)
		switch {
		case in == 0 && out == 0 && !loop:
			r.Isolated = append(r.Isolated, id)
		case in == 0 && !loop:
			r.Sources = append(r.Sources, id)
		case out == 0 && !loop:
			r.Sinks = append(r.Sinks, id)
		}
	}

	return r
}

// positions returns the declaration indexes of nodes in ascending order.
func positions(nodes []graph.Node) []int {
	out := make([]int, len(nodes))
	for i, n := range nodes {
		out[i] = int(n.ID())
	}
	slices.Sort(out)
	return out
}

func names(positions []int, ids []string) []string {
	out := make([]string, len(positions))
	for i, p := range positions {
		out[i] = ids[p]
	}
	return out
}
