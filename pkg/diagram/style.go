package diagram

import "fmt"

// Category is the kind of element a node represents in a diagram.
type Category int

const (
	CategoryActor Category = iota
	CategorySystem
	CategoryLayer
	CategoryModule
	CategoryDatabase
	CategoryNote
)

var categoryNames = map[Category]string{
	CategoryActor:    "actor",
	CategorySystem:   "system",
	CategoryLayer:    "layer",
	CategoryModule:   "module",
	CategoryDatabase: "database",
	CategoryNote:     "note",
}

// Categories lists every category in declaration order.
var Categories = []Category{
	CategoryActor, CategorySystem, CategoryLayer, CategoryModule, CategoryDatabase, CategoryNote,
}

func (c Category) String() string {
	if s, ok := categoryNames[c]; ok {
		return s
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory maps a category name back to its value.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// Style is a named, immutable bundle of visual attributes applied to a node
// at declaration time. Copies share nothing.
type Style struct {
	name     string
	category Category
	attrs    Attrs
}

// NewStyle creates a preset. The attribute map is copied.
func NewStyle(name string, category Category, attrs Attrs) Style {
	return Style{name: name, category: category, attrs: attrs.Clone()}
}

// Name returns the preset name.
func (s Style) Name() string { return s.name }

// Category returns the node category the preset draws.
func (s Style) Category() Category { return s.category }

// Attrs returns a copy of the preset attributes.
func (s Style) Attrs() Attrs { return s.attrs.Clone() }
