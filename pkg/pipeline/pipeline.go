// Package pipeline renders diagrams to files with caching.
//
// The pipeline has two stages:
//
//  1. Encode: the diagram is serialized to deterministic DOT source.
//  2. Render: a [render.Engine] turns the source into image bytes. Results are
//     cached under the hash of the source, the engine and the format, so an
//     unchanged diagram is never laid out twice.
//
// [Runner.Render] adds the file handling of a command-line render: the image
// is written atomically to <dir>/<output>.<format>, and the intermediate DOT
// source is kept next to it as <dir>/<output> only when requested. A failed
// render leaves no file behind.
//
// # Usage
//
//	eng, _ := render.NewEngine("graphviz", "")
//	runner := pipeline.NewRunner(eng, cache, nil, logger)
//	defer runner.Close()
//
//	res, err := runner.RenderDefinition(ctx, builtin.DataFlow(), pipeline.Options{})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.Path) // 1.png
package pipeline

import (
	"path/filepath"
	"time"

	"github.com/matzehuels/snhsdiag/pkg/diagram"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
	"github.com/matzehuels/snhsdiag/pkg/render"
)

// Options configures a file render.
type Options struct {
	// Output is the file base name without extension. Required unless the
	// render starts from a definition, which supplies its own.
	Output string `json:"output,omitempty"`

	// Dir is the output directory. Empty means the working directory.
	Dir string `json:"dir,omitempty"`

	// Format overrides the format declared by the diagram.
	Format string `json:"format,omitempty"`

	// KeepSource keeps the intermediate DOT source at <dir>/<output>.
	KeepSource bool `json:"keep_source,omitempty"`

	// Refresh bypasses cached artifacts and re-renders.
	Refresh bool `json:"refresh,omitempty"`

	format render.Format
}

// Result describes a completed render.
type Result struct {
	Diagram    string        // Graph name
	Path       string        // Written image file
	SourcePath string        // Kept DOT source, empty when cleaned up
	Format     render.Format // Output format
	Size       int           // Image size in bytes
	CacheHit   bool          // Whether the image came from the cache
	Duration   time.Duration // Wall time of the render stage
	Nodes      int
	Edges      int
}

// ValidateAndSetDefaults checks the options against g and resolves the
// output format.
func (o *Options) ValidateAndSetDefaults(g *diagram.Graph) error {
	if err := errs.ValidateOutputName(o.Output); err != nil {
		return err
	}

	name := o.Format
	if name == "" {
		name = g.Format()
	}
	if name == "" {
		name = string(render.FormatPNG)
	}
	f, err := render.ParseFormat(name)
	if err != nil {
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "output format")
	}
	o.format = f
	return nil
}

// ImagePath returns <dir>/<output>.<format>. Valid after ValidateAndSetDefaults.
func (o *Options) ImagePath() string {
	return filepath.Join(o.Dir, o.Output+"."+o.format.Ext())
}

// SourcePath returns <dir>/<output>, where the DOT source is kept.
func (o *Options) SourcePath() string {
	return filepath.Join(o.Dir, o.Output)
}
