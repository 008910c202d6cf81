package pipeline

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/snhsdiag/pkg/cache"
	"github.com/matzehuels/snhsdiag/pkg/diagram"
	"github.com/matzehuels/snhsdiag/pkg/diagram/builtin"
	errs "github.com/matzehuels/snhsdiag/pkg/errors"
	"github.com/matzehuels/snhsdiag/pkg/observability"
	"github.com/matzehuels/snhsdiag/pkg/render"
)

// Runner encapsulates rendering with caching.
// The CLI, the watcher and the HTTP server all render through a Runner.
//
// The Runner is stateless except for its collaborators, so multiple
// goroutines can safely share one.
type Runner struct {
	Engine render.Engine
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	// TTL is how long artifacts stay cached. Zero uses cache.TTLArtifact.
	TTL time.Duration
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// If engine is nil, the in-process Graphviz engine is used.
func NewRunner(engine render.Engine, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if engine == nil {
		engine = render.NewGraphviz()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	return &Runner{
		Engine: engine,
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// RenderBytesWithCacheInfo renders g and reports whether the bytes came from
// the cache. With refresh set the cache is not read but is still updated.
func (r *Runner) RenderBytesWithCacheInfo(ctx context.Context, g *diagram.Graph, format render.Format, refresh bool) ([]byte, bool, error) {
	if err := g.Validate(); err != nil {
		return nil, false, errs.Wrap(errs.ErrCodeInvalidInput, err, "diagram %s", g.Name())
	}

	src := diagram.EncodeDOT(g)
	key := r.Keyer.ArtifactKey(cache.Hash(src), cache.ArtifactKeyOpts{
		Engine: r.Engine.Name(),
		Layout: render.DefaultLayout,
		Format: string(format),
	})

	if !refresh {
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil {
			r.Logger.Warn("cache read failed", "diagram", g.Name(), "err", err)
		} else if hit {
			r.Logger.Debug("artifact cache hit", "diagram", g.Name(), "format", format)
			return data, true, nil
		}
	}

	observability.Render().OnRenderStart(ctx, g.Name(), string(format))
	start := time.Now()
	data, err := r.Engine.Render(ctx, src, format)
	observability.Render().OnRenderComplete(ctx, g.Name(), string(format), len(data), time.Since(start), err)
	if err != nil {
		return nil, false, classify(err, g.Name(), format)
	}

	ttl := r.TTL
	if ttl == 0 {
		ttl = cache.TTLArtifact
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "diagram", g.Name(), "err", err)
	}
	return data, false, nil
}

// RenderBytes is a convenience wrapper that discards the cache hit info.
func (r *Runner) RenderBytes(ctx context.Context, g *diagram.Graph, format render.Format) ([]byte, error) {
	data, _, err := r.RenderBytesWithCacheInfo(ctx, g, format, false)
	return data, err
}

// Render renders g to <dir>/<output>.<format>.
func (r *Runner) Render(ctx context.Context, g *diagram.Graph, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(g); err != nil {
		return nil, err
	}

	start := time.Now()
	data, hit, err := r.RenderBytesWithCacheInfo(ctx, g, opts.format, opts.Refresh)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Diagram:  g.Name(),
		Path:     opts.ImagePath(),
		Format:   opts.format,
		Size:     len(data),
		CacheHit: hit,
		Nodes:    g.NodeCount(),
		Edges:    g.EdgeCount(),
	}

	if err := writeFileAtomic(res.Path, data); err != nil {
		return nil, errs.Wrap(errs.ErrCodeIO, err, "write %s", res.Path)
	}
	if opts.KeepSource {
		res.SourcePath = opts.SourcePath()
		if err := writeFileAtomic(res.SourcePath, diagram.EncodeDOT(g)); err != nil {
			return nil, errs.Wrap(errs.ErrCodeIO, err, "write %s", res.SourcePath)
		}
	}
	res.Duration = time.Since(start)

	r.Logger.Debug("rendered diagram",
		"diagram", res.Diagram,
		"path", res.Path,
		"bytes", res.Size,
		"cached", res.CacheHit,
		"duration", res.Duration)
	return res, nil
}

// RenderDefinition builds def and renders it. An empty opts.Output takes
// the definition's output name.
func (r *Runner) RenderDefinition(ctx context.Context, def builtin.Definition, opts Options) (*Result, error) {
	g, err := def.Build()
	if err != nil {
		if errs.GetCode(err) != "" {
			return nil, err
		}
		return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "build %s", def.Name)
	}
	if opts.Output == "" {
		opts.Output = def.Output
	}
	return r.Render(ctx, g, opts)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// classify maps engine errors onto error codes.
func classify(err error, name string, format render.Format) error {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, render.ErrEngineUnavailable):
		return errs.Wrap(errs.ErrCodeEngineUnavailable, err, "render %s", name)
	case errors.Is(err, render.ErrUnsupportedFormat):
		return errs.Wrap(errs.ErrCodeInvalidFormat, err, "render %s", name)
	default:
		return errs.Wrap(errs.ErrCodeRender, err, "render %s as %s", name, format)
	}
}
