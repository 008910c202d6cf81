// Package builtin holds the two diagrams shipped with snhsdiag: the
// high-resolution data-flow diagram and the layered architecture diagram of
// the SNHS school management system.
//
// Each [Definition] is self-contained. Its Build function declares the nodes,
// edges and styles from literals, and the definition carries the output file
// base name and the confirmation line printed after rendering.
package builtin

import (
	"slices"

	"github.com/matzehuels/snhsdiag/pkg/diagram"
)

// Definition describes a diagram that can be built and rendered by name.
type Definition struct {
	Name    string   // Lookup name, e.g. "dfd"
	Aliases []string // Alternative lookup names
	Title   string   // Human readable title
	Output  string   // Output file base name, without extension
	Message string   // Line printed after a successful render (may be empty)
	Build   func() (*diagram.Graph, error)
}

// DataFlow is the data-flow diagram. It renders to "1.png" while announcing
// snhs_dfd_highres.png; the mismatch is long-standing and kept as is.
func DataFlow() Definition {
	return Definition{
		Name:    "dfd",
		Aliases: []string{"1", "data-flow"},
		Title:   "SNHS data-flow diagram",
		Output:  "1",
		Message: "High-resolution DFD rendered as snhs_dfd_highres.png",
		Build:   BuildDataFlow,
	}
}

// Architecture is the layered architecture diagram rendered to "2.png".
func Architecture() Definition {
	return Definition{
		Name:    "architecture",
		Aliases: []string{"2", "arch"},
		Title:   "SNHS architecture diagram",
		Output:  "2",
		Build:   BuildArchitecture,
	}
}

// All returns every builtin definition in a stable order.
func All() []Definition {
	return []Definition{DataFlow(), Architecture()}
}

// Names returns the primary names of all builtin definitions.
func Names() []string {
	var names []string
	for _, d := range All() {
		names = append(names, d.Name)
	}
	return names
}

// Lookup finds a builtin definition by name or alias.
func Lookup(name string) (Definition, bool) {
	for _, d := range All() {
		if d.Name == name || slices.Contains(d.Aliases, name) {
			return d, true
		}
	}
	return Definition{}, false
}
