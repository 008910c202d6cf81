// Package cli implements the snhsdiag command-line interface.
package cli

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/snhsdiag/pkg/buildinfo"
	"github.com/matzehuels/snhsdiag/pkg/cache"
	"github.com/matzehuels/snhsdiag/pkg/config"
	"github.com/matzehuels/snhsdiag/pkg/definition"
	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
	"github.com/matzehuels/snhsdiag/pkg/pipeline"
	"github.com/matzehuels/snhsdiag/pkg/render"
)

// Log levels accepted by New.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	verbose    bool
	cfg        config.Config
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
// Run without a subcommand it renders every builtin diagram.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   config.AppName,
		Short: "snhsdiag renders the SNHS system diagrams with Graphviz",
		Long: `snhsdiag builds the SNHS school management system diagrams (a data-flow
diagram and a layered architecture diagram) and renders them with Graphviz.

Run without arguments to render every builtin diagram into the current
directory, or use "render" to pick diagrams, definition files and formats.`,
		Version:       buildinfo.Get().Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			return c.loadConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRender(cmd.Context(), nil, &renderOpts{out: cmd.OutOrStdout()})
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/snhsdiag/config.toml)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.listCommand())
	root.AddCommand(c.sourceCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.pickCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file and installs the logging hooks.
func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	installHooks(c.Logger)
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// engineFlags are the rendering flags shared by several commands.
type engineFlags struct {
	engine  string
	dotPath string
	noCache bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.engine, "engine", "", "rendering engine: graphviz (in-process), exec (external dot)")
	cmd.Flags().StringVar(&f.dotPath, "dot-path", "", "dot executable used by the exec engine")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the artifact cache")
}

// newRunner creates a pipeline runner from the config and flag overrides.
func (c *CLI) newRunner(ctx context.Context, f engineFlags) (*pipeline.Runner, error) {
	name := cmp.Or(f.engine, c.cfg.Engine)
	engine, err := render.NewEngine(name, cmp.Or(f.dotPath, c.cfg.DotPath))
	if err != nil {
		return nil, errs.Wrap(errs.ErrCodeInvalidEngine, err, "engine")
	}

	ch, err := c.openCache(ctx, f.noCache)
	if err != nil {
		return nil, err
	}

	runner := pipeline.NewRunner(engine, ch, nil, c.Logger)
	runner.TTL = c.cfg.Cache.TTL.Duration
	c.Logger.Debug("runner ready", "engine", engine.Name(), "cache", cmp.Or(c.cfg.Cache.Backend, cache.BackendFile), "cached", !f.noCache)
	return runner, nil
}

// openCache opens the configured cache backend. An unreachable backend
// degrades to no caching; an unknown one is a config error.
func (c *CLI) openCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}

	opts := c.cacheOptions()
	if opts.Dir == "" {
		dir, err := config.CacheDir()
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		opts.Dir = dir
	}

	ch, err := cache.Open(ctx, opts)
	if errors.Is(err, cache.ErrUnknownBackend) {
		return nil, errs.Wrap(errs.ErrCodeInvalidConfig, err, "cache backend")
	}
	if err != nil {
		c.Logger.Warn("cache unavailable, caching disabled", "backend", opts.Backend, "err", err)
		return cache.NewNullCache(), nil
	}
	return ch, nil
}

func (c *CLI) cacheOptions() cache.Options {
	cc := c.cfg.Cache
	return cache.Options{
		Backend:         cc.Backend,
		Dir:             cc.Dir,
		RedisURL:        cc.RedisURL,
		KeyPrefix:       cc.KeyPrefix,
		MongoURI:        cc.MongoURI,
		MongoDatabase:   cc.MongoDatabase,
		MongoCollection: cc.MongoCollection,
	}
}

// =============================================================================
// Diagram Resolution
// =============================================================================

// resolveTarget maps a command-line argument to a diagram definition.
// Arguments ending in .toml, .yaml or .yml are definition files; anything
// else is a builtin name or alias.
func resolveTarget(arg string) (builtin.Definition, error) {
	if _, err := definition.KindFromPath(arg); err == nil {
		f, err := definition.Load(arg)
		if err != nil {
			return builtin.Definition{}, err
		}
		return f.Definition(), nil
	}

	if err := errs.ValidateDiagramName(arg); err != nil {
		return builtin.Definition{}, err
	}
	d, ok := builtin.Lookup(arg)
	if !ok {
		return builtin.Definition{}, errs.New(errs.ErrCodeDiagramNotFound,
			"unknown diagram %q (available: %s)", arg, strings.Join(builtin.Names(), ", "))
	}
	return d, nil
}

// resolveTargets resolves names and files in order, dropping repeats.
// With nothing given it returns every builtin definition.
func resolveTargets(args, files []string) ([]builtin.Definition, error) {
	if len(args) == 0 && len(files) == 0 {
		return builtin.All(), nil
	}

	var defs []builtin.Definition
	seen := map[string]bool{}
	for _, arg := range append(append([]string{}, args...), files...) {
		d, err := resolveTarget(arg)
		if err != nil {
			return nil, err
		}
		key := d.Name + "\x00" + d.Output
		if seen[key] {
			continue
		}
		seen[key] = true
		defs = append(defs, d)
	}
	return defs, nil
}

// completeDiagrams offers builtin names for shell completion.
func completeDiagrams(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	var names []string
	for _, d := range builtin.All() {
		names = append(names, fmt.Sprintf("%s\t%s", d.Name, d.Title))
	}
	return names, cobra.ShellCompDirectiveDefault
}
