package render

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEngineUnavailable is returned when the rendering engine cannot run.
	ErrEngineUnavailable = errors.New("rendering engine unavailable")

	// ErrRender is returned when the engine runs but fails to produce output.
	ErrRender = errors.New("render failed")

	// ErrUnsupportedFormat is returned for unknown output formats.
	ErrUnsupportedFormat = errors.New("unsupported format")

	// ErrUnknownEngine is returned by NewEngine for unknown engine names.
	ErrUnknownEngine = errors.New("unknown engine")
)

// Engine names accepted by NewEngine.
const (
	EngineGraphviz = "graphviz"
	EngineExec     = "exec"
)

// DefaultLayout is the Graphviz layout program used when none is set.
const DefaultLayout = "dot"

// Engine renders DOT source into the requested format.
// Implementations must be safe for concurrent use.
type Engine interface {
	Name() string
	Render(ctx context.Context, src []byte, format Format) ([]byte, error)
}

// NewEngine returns the engine with the given name. An empty name selects
// the in-process Graphviz engine. dotPath is only used by the exec engine
// and defaults to "dot" on PATH.
func NewEngine(name, dotPath string) (Engine, error) {
	switch strings.ToLower(name) {
	case "", EngineGraphviz:
		return NewGraphviz(), nil
	case EngineExec, "dot":
		return NewExec(dotPath), nil
	}
	return nil, fmt.Errorf("%w: %q (must be one of: %s, %s)", ErrUnknownEngine, name, EngineGraphviz, EngineExec)
}
