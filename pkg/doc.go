// Package pkg provides the libraries behind snhsdiag, a renderer for the SNHS
// school management system diagrams.
//
// # Overview
//
// The pkg directory is organized into three areas:
//
//  1. [diagram] - Graph model, style presets, DOT encoding, the builtin
//     diagrams and structural analysis
//  2. [render], [pipeline] - Graphviz engines and the render pipeline that
//     writes image files
//  3. [cache], [config], [server], [watch] - Artifact caching, configuration,
//     the HTTP API and file watching
//
// # Architecture
//
// The typical data flow:
//
//	builtin diagram or definition file
//	         ↓
//	    [diagram] package (nodes, edges, presets)
//	         ↓
//	    DOT source
//	         ↓
//	    [render] package (go-graphviz or external dot)
//	         ↓
//	    PNG/SVG/JPG/PDF output
//
// # Quick Start
//
// Render the data-flow diagram to 1.png in the working directory:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
//	    "github.com/matzehuels/snhsdiag/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(nil, nil, nil, nil)
//	res, err := runner.RenderDefinition(context.Background(), builtin.DataFlow(), pipeline.Options{})
//
// [diagram]: https://pkg.go.dev/github.com/matzehuels/snhsdiag/pkg/diagram
// [render]: https://pkg.go.dev/github.com/matzehuels/snhsdiag/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/snhsdiag/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/snhsdiag/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/snhsdiag/pkg/config
// [server]: https://pkg.go.dev/github.com/matzehuels/snhsdiag/pkg/server
// [watch]: https://pkg.go.dev/github.com/matzehuels/snhsdiag/pkg/watch
package pkg
