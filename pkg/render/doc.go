// Package render turns DOT source into image bytes.
//
// # Overview
//
// Two [Engine] implementations are provided:
//
//   - [Graphviz] runs Graphviz in-process through github.com/goccy/go-graphviz.
//     No system installation is needed for PNG, SVG, JPG and DOT output.
//   - [Exec] pipes the DOT source to an external dot executable, the same way
//     the Graphviz command line is used interactively.
//
// Both engines share the [Format] vocabulary. PDF output from the in-process
// engine goes through SVG and the external rsvg-convert tool (from librsvg),
// see [ToPDF].
//
//	eng, err := render.NewEngine("graphviz", "")
//	if err != nil {
//	    return err
//	}
//	png, err := eng.Render(ctx, diagram.EncodeDOT(g), render.FormatPNG)
//
// # Errors
//
// An engine that cannot run at all (missing executable, WASM runtime failure)
// returns an error wrapping [ErrEngineUnavailable]. Layout or output failures
// wrap [ErrRender].
package render
