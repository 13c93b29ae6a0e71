package pipeline

import (
	"context"
	"runtime"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/helmdraw/pkg/cache"
	"github.com/matzehuels/helmdraw/pkg/diagram"
	"github.com/matzehuels/helmdraw/pkg/errors"
	"github.com/matzehuels/helmdraw/pkg/graph"
	"github.com/matzehuels/helmdraw/pkg/monomer"
	"github.com/matzehuels/helmdraw/pkg/observability"
)

// Runner executes the pipeline with caching.
//
// The Runner keeps no per-run state, so one Runner may serve many
// goroutines at once.
type Runner struct {
	Cache    cache.Cache
	Keyer    cache.Keyer
	Monomers monomer.Database
	Logger   *log.Logger
}

// NewRunner creates a runner. A nil cache disables caching, a nil keyer
// uses [cache.DefaultKeyer] and a nil database uses the built-in monomer
// library.
func NewRunner(c cache.Cache, keyer cache.Keyer, db monomer.Database, logger *log.Logger) *Runner {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if db == nil {
		db = monomer.Default()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{Cache: c, Keyer: keyer, Monomers: db, Logger: logger}
}

// Execute runs parse → layout → render.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}

	result, err := r.Layout(ctx, opts)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, result.Manager, result.Drawing, opts)
	if err != nil {
		return nil, err
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)
	return result, nil
}

// Layout runs parse → layout, using the cache for the drawing. The
// returned Result has no artifacts.
func (r *Runner) Layout(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, err
	}
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}

	result := &Result{}
	parseStart := time.Now()
	m, canonical, err := Parse(ctx, r.Monomers, opts.Notation)
	if err != nil {
		return nil, err
	}
	result.Manager = m
	result.Canonical = canonical
	result.NotationHash = cache.NotationHash(canonical)
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.NodeCount = m.Graph().NodeCount()
	result.Stats.EdgeCount = m.Graph().EdgeCount()
	result.Stats.ChainCount = m.StartCount()

	r.Logger.Debug("parsed notation",
		"chains", result.Stats.ChainCount,
		"nodes", result.Stats.NodeCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.ParseTime)

	layoutStart := time.Now()
	d, hit, err := r.layoutWithCache(ctx, m, result.NotationHash, opts)
	if err != nil {
		return nil, err
	}
	result.Drawing = d
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"motif", d.Motif,
		"nodes", len(d.Nodes),
		"warnings", len(d.Warnings),
		"cached", hit,
		"duration", result.Stats.LayoutTime)
	return result, nil
}

// layoutWithCache returns the cached drawing for the notation hash, or lays
// out m and stores the drawing. A cached drawing leaves m's coordinates
// untouched; nothing downstream reads them.
func (r *Runner) layoutWithCache(ctx context.Context, m *graph.Manager, notationHash string, opts Options) (diagram.Drawing, bool, error) {
	key := r.Keyer.LayoutKey(notationHash, opts.LayoutKeyOpts())
	hooks := observability.Cache()

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err != nil {
			r.Logger.Warn("cache read failed", "err", err)
		} else if hit {
			if d, err := diagram.Unmarshal(data); err == nil {
				hooks.OnCacheHit(ctx, "layout")
				return d, true, nil
			}
		}
		hooks.OnCacheMiss(ctx, "layout")
	}

	d, err := GenerateLayout(ctx, m, opts)
	if err != nil {
		return diagram.Drawing{}, false, err
	}

	if data, err := diagram.Marshal(d); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.LayoutTTL); err != nil {
			r.Logger.Warn("cache write failed", "err", err)
		} else {
			hooks.OnCacheSet(ctx, "layout", len(data))
		}
	}
	return d, false, nil
}

// RenderWithCacheInfo renders d with caching and reports whether every
// artifact came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, m *graph.Manager, d diagram.Drawing, opts Options) (map[string][]byte, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	data, err := diagram.Marshal(d)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeInternal, err, "serialize drawing for cache key")
	}
	layoutHash := cache.Hash(data)
	hooks := observability.Cache()

	artifacts := make(map[string][]byte, len(opts.Formats))
	if !opts.Refresh {
		for _, format := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				hooks.OnCacheMiss(ctx, "artifact")
				break
			}
			hooks.OnCacheHit(ctx, "artifact")
			artifacts[format] = data
		}
		if len(artifacts) == len(opts.Formats) {
			return artifacts, true, nil
		}
	}

	rendered, err := Render(ctx, m, d, opts)
	if err != nil {
		return nil, false, err
	}
	for format, data := range rendered {
		key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.ArtifactTTL); err == nil {
			hooks.OnCacheSet(ctx, "artifact", len(data))
		}
	}
	return rendered, false, nil
}

// ExecuteAll runs the pipeline for every options value concurrently, at
// most GOMAXPROCS at a time. Results keep the input order. The first
// failure cancels the remaining runs and is returned.
func (r *Runner) ExecuteAll(ctx context.Context, all []Options) ([]*Result, error) {
	results := make([]*Result, len(all))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, opts := range all {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := r.Execute(ctx, opts)
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases the cache.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
