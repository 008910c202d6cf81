package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"
)

// Graphviz renders DOT in-process with github.com/goccy/go-graphviz.
type Graphviz struct {
	// Layout is the Graphviz layout program (dot, neato, ...).
	Layout string
}

// NewGraphviz returns an in-process engine using the dot layout.
func NewGraphviz() *Graphviz {
	return &Graphviz{Layout: DefaultLayout}
}

// Name implements Engine.
func (e *Graphviz) Name() string { return EngineGraphviz }

// Render implements Engine.
func (e *Graphviz) Render(ctx context.Context, src []byte, format Format) ([]byte, error) {
	if format == FormatPDF {
		svg, err := e.Render(ctx, src, FormatSVG)
		if err != nil {
			return nil, err
		}
		return ToPDF(ctx, svg)
	}

	gvFormat, err := graphvizFormat(format)
	if err != nil {
		return nil, err
	}

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: init graphviz: %v", ErrEngineUnavailable, err)
	}
	defer gv.Close()

	layout := e.Layout
	if layout == "" {
		layout = DefaultLayout
	}
	gv.SetLayout(graphviz.Layout(layout))

	g, err := graphviz.ParseBytes(src)
	if err != nil {
		return nil, fmt.Errorf("%w: parse DOT: %v", ErrRender, err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, gvFormat, &buf); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRender, err)
	}
	return buf.Bytes(), nil
}

func graphvizFormat(f Format) (graphviz.Format, error) {
	switch f {
	case FormatPNG:
		return graphviz.PNG, nil
	case FormatSVG:
		return graphviz.SVG, nil
	case FormatJPG:
		return graphviz.JPG, nil
	case FormatDOT:
		// go-graphviz names the plain "dot" output XDOT.
		return graphviz.XDOT, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}
