package cli

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/matzehuels/snhsdiag/pkg/definition"
	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
	"github.com/matzehuels/snhsdiag/pkg/pipeline"
	"github.com/matzehuels/snhsdiag/pkg/render"
	"github.com/matzehuels/snhsdiag/pkg/watch"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	engineFlags

	files     []string // definition files rendered alongside named diagrams
	format    string   // output format override
	outputDir string   // output directory override
	noCleanup bool     // keep the intermediate DOT source
	refresh   bool     // bypass cached artifacts
	watch     bool     // re-render definition files when they change

	out io.Writer // confirmation messages; nil means stdout
}

// renderCommand creates the render command.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [diagram|file...]",
		Short: "Render diagrams to image files",
		Long: `Render builtin diagrams or diagram definition files.

Diagrams are named by name or alias (dfd, 1, architecture, 2). Arguments
ending in .toml, .yaml or .yml are read as definition files. With no
arguments every builtin diagram is rendered.

Each diagram is written to <output-dir>/<output>.<format>. The intermediate
DOT source is removed unless --no-cleanup is given.`,
		Example: `  snhsdiag render dfd
  snhsdiag render 2 --format svg --output-dir out
  snhsdiag render --file school.toml --watch`,
		ValidArgsFunction: completeDiagrams,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.out = cmd.OutOrStdout()
			return c.runRender(cmd.Context(), args, &opts)
		},
	}

	opts.engineFlags.register(cmd)
	cmd.Flags().StringSliceVarP(&opts.files, "file", "f", nil, "diagram definition file (.toml, .yaml); repeatable")
	cmd.Flags().StringVar(&opts.format, "format", "", fmt.Sprintf("output format override: %v", render.Formats))
	cmd.Flags().StringVarP(&opts.outputDir, "output-dir", "o", "", "output directory (default: config output_dir or .)")
	cmd.Flags().BoolVar(&opts.noCleanup, "no-cleanup", false, "keep the intermediate DOT source next to the image")
	cmd.Flags().BoolVar(&opts.refresh, "refresh", false, "ignore cached images and re-render")
	cmd.Flags().BoolVarP(&opts.watch, "watch", "w", false, "re-render definition files when they change")

	return cmd
}

// runRender renders the requested diagrams, then optionally watches the
// definition files and renders them again on every change.
func (c *CLI) runRender(ctx context.Context, args []string, opts *renderOpts) error {
	watched := opts.watchPaths(args)
	if opts.watch && len(watched) == 0 {
		return errs.New(errs.ErrCodeInvalidInput, "--watch needs at least one definition file")
	}
	if opts.format != "" {
		if _, err := render.ParseFormat(opts.format); err != nil {
			return errs.Wrap(errs.ErrCodeInvalidFormat, err, "--format")
		}
	}

	defs, err := resolveTargets(args, opts.files)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(ctx, opts.engineFlags)
	if err != nil {
		return err
	}
	defer runner.Close()

	if err := c.renderAll(ctx, runner, defs, opts); err != nil {
		return err
	}
	if !opts.watch {
		return nil
	}
	return c.watchAndRender(ctx, runner, watched, opts)
}

// renderAll renders defs in order and stops at the first failure.
func (c *CLI) renderAll(ctx context.Context, runner *pipeline.Runner, defs []builtin.Definition, opts *renderOpts) error {
	out := opts.out
	if out == nil {
		out = os.Stdout
	}

	for _, def := range defs {
		if err := ctx.Err(); err != nil {
			return err
		}

		prog := newProgress(c.Logger)
		res, err := runner.RenderDefinition(ctx, def, c.pipelineOptions(opts))
		if err != nil {
			return fmt.Errorf("render %s: %w", def.Name, err)
		}
		prog.done("Rendered "+def.Name, "path", res.Path, "nodes", res.Nodes, "edges", res.Edges, "cached", res.CacheHit)
		if res.SourcePath != "" {
			c.Logger.Debug("kept DOT source", "path", res.SourcePath)
		}
		if def.Message != "" {
			fmt.Fprintln(out, def.Message)
		}
	}
	return nil
}

// watchAndRender blocks until ctx is canceled, re-rendering each changed
// definition file.
func (c *CLI) watchAndRender(ctx context.Context, runner *pipeline.Runner, paths []string, opts *renderOpts) error {
	w, err := watch.New(paths, watch.DefaultDebounce, c.Logger)
	if err != nil {
		return err
	}

	c.Logger.Info("Watching for changes", "files", len(paths))
	return w.Run(ctx, func(ctx context.Context, changed []string) error {
		var defs []builtin.Definition
		for _, path := range changed {
			f, err := definition.Load(path)
			if err != nil {
				return err
			}
			defs = append(defs, f.Definition())
		}
		return c.renderAll(ctx, runner, defs, opts)
	})
}

// pipelineOptions merges flags over the config file.
func (c *CLI) pipelineOptions(opts *renderOpts) pipeline.Options {
	return pipeline.Options{
		Dir:        cmp.Or(opts.outputDir, c.cfg.OutputDir),
		Format:     cmp.Or(opts.format, c.cfg.Format),
		KeepSource: opts.noCleanup || !c.cfg.Cleanup,
		Refresh:    opts.refresh,
	}
}

// watchPaths returns the definition files among args and --file.
func (o *renderOpts) watchPaths(args []string) []string {
	var paths []string
	for _, a := range args {
		if _, err := definition.KindFromPath(a); err == nil {
			paths = append(paths, a)
		}
	}
	return append(paths, o.files...)
}
