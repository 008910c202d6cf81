package render

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Exec renders DOT by piping it to an external Graphviz executable.
type Exec struct {
	// Path is the executable name or path. Defaults to "dot".
	Path string
	// Layout is passed as -K<layout>.
	Layout string
}

// NewExec returns an engine that runs the dot executable at path.
func NewExec(path string) *Exec {
	if path == "" {
		path = "dot"
	}
	return &Exec{Path: path, Layout: DefaultLayout}
}

// Name implements Engine.
func (e *Exec) Name() string { return EngineExec }

// Render implements Engine.
func (e *Exec) Render(ctx context.Context, src []byte, format Format) ([]byte, error) {
	if _, err := ParseFormat(string(format)); err != nil {
		return nil, err
	}

	bin, err := exec.LookPath(e.Path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s not found (install Graphviz: brew install graphviz, apt install graphviz): %v", ErrEngineUnavailable, e.Path, err)
	}

	layout := e.Layout
	if layout == "" {
		layout = DefaultLayout
	}

	cmd := exec.CommandContext(ctx, bin, "-K"+layout, "-T"+string(format))
	cmd.Stdin = bytes.NewReader(src)

	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var execErr *exec.Error
		if errors.As(err, &execErr) {
			return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return nil, fmt.Errorf("%w: %s: %v: %s", ErrRender, e.Path, err, strings.TrimSpace(errBuf.String()))
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("%w: %s produced no output", ErrRender, e.Path)
	}
	return out.Bytes(), nil
}
