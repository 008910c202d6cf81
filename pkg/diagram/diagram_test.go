package diagram

import (
	"errors"
	"testing"
)

var testStyle = NewStyle("module", CategoryModule, Attrs{"shape": "oval", "fillcolor": "#E8F7E4"})

func TestAddNode(t *testing.T) {
	g := New("G")

	if err := g.AddNode("a", "A", testStyle, nil); err != nil {
		t.Fatalf("AddNode() error: %v", err)
	}
	if err := g.AddNode("", "empty", testStyle, nil); !errors.Is(err, ErrInvalidNodeID) {
		t.Errorf("AddNode(\"\") error = %v, want ErrInvalidNodeID", err)
	}
	if err := g.AddNode("a", "again", testStyle, nil); !errors.Is(err, ErrDuplicateNodeID) {
		t.Errorf("AddNode(dup) error = %v, want ErrDuplicateNodeID", err)
	}

	n, ok := g.Node("a")
	if !ok {
		t.Fatal("Node(a) not found")
	}
	if n.Label != "A" || n.Category != CategoryModule || n.Style != "module" {
		t.Errorf("Node(a) = %+v", n)
	}
	if n.Attrs["shape"] != "oval" {
		t.Errorf("Node(a) shape = %q, want oval", n.Attrs["shape"])
	}
}

func TestAddNodeOverridesDoNotLeakIntoStyle(t *testing.T) {
	g := New("G")
	if err := g.AddNode("a", "A", testStyle, Attrs{"shape": "box"}); err != nil {
		t.Fatal(err)
	}
	n, _ := g.Node("a")
	if n.Attrs["shape"] != "box" {
		t.Errorf("override shape = %q, want box", n.Attrs["shape"])
	}
	if testStyle.Attrs()["shape"] != "oval" {
		t.Error("style preset was mutated by node override")
	}
}

func TestAddEdge(t *testing.T) {
	g := New("G")
	_ = g.AddNode("a", "A", testStyle, nil)
	_ = g.AddNode("b", "B", testStyle, nil)

	tests := []struct {
		name string
		edge Edge
		want error
	}{
		{"valid", Edge{From: "a", To: "b"}, nil},
		{"parallel allowed", Edge{From: "a", To: "b", Label: "again"}, nil},
		{"self loop allowed", Edge{From: "a", To: "a"}, nil},
		{"unknown source", Edge{From: "x", To: "b"}, ErrUnknownSourceNode},
		{"unknown target", Edge{From: "a", To: "y"}, ErrUnknownTargetNode},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.AddEdge(tt.edge)
			if tt.want == nil && err != nil {
				t.Errorf("AddEdge() error: %v", err)
			}
			if tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("AddEdge() error = %v, want %v", err, tt.want)
			}
		})
	}

	if g.EdgeCount() != 3 {
		t.Errorf("EdgeCount() = %d, want 3", g.EdgeCount())
	}
	if err := g.Validate(); err != nil {
		t.Errorf("Validate() error: %v", err)
	}
}

func TestNodesPreserveDeclarationOrder(t *testing.T) {
	g := New("G")
	for _, id := range []string{"z", "a", "m"} {
		_ = g.AddNode(id, id, testStyle, nil)
	}
	ids := g.NodeIDs()
	want := []string{"z", "a", "m"}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("NodeIDs() = %v, want %v", ids, want)
		}
	}
}

func TestBuilderStopsAtFirstError(t *testing.T) {
	_, err := NewBuilder("G").
		Node("a", "A", testStyle).
		Edge("a", "missing", "", nil).
		Node("a", "dup", testStyle).
		Build()
	if !errors.Is(err, ErrUnknownTargetNode) {
		t.Errorf("Build() error = %v, want ErrUnknownTargetNode", err)
	}
}

func TestNewStyleCopiesAttrs(t *testing.T) {
	attrs := Attrs{"shape": "oval"}
	s := NewStyle("module", CategoryModule, attrs)
	attrs["shape"] = "box"
	if s.Attrs()["shape"] != "oval" {
		t.Error("NewStyle() kept a reference to the caller's map")
	}
	s.Attrs()["shape"] = "box"
	if s.Attrs()["shape"] != "oval" {
		t.Error("Attrs() exposed the preset's map")
	}
}

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(c.String())
		if err != nil || got != c {
			t.Errorf("ParseCategory(%q) = %v, %v", c.String(), got, err)
		}
	}
	if _, err := ParseCategory("widget"); err == nil {
		t.Error("ParseCategory(widget) should fail")
	}
}
