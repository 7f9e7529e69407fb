package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/diagramkit/pkg/cache"
	"github.com/matzehuels/diagramkit/pkg/ir"
	"github.com/matzehuels/diagramkit/pkg/observability"
)

// Cache key types reported to observability hooks.
const (
	keyTypeDiagram = "diagram"
	keyTypeLayout  = "layout"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and server use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete parse → layout pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Parse
	parseStart := time.Now()
	parsed, parseHit, err := r.ParseWithCacheInfo(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	d := parsed.Diagram
	result.Diagram = d
	result.Diagnostics = parsed.Diagnostics
	result.Stats.ParseTime = time.Since(parseStart)
	result.Stats.ElementCount = d.ElementCount()
	result.Stats.ConnectionCount = d.ConnectionCount()
	result.CacheInfo.ParseHit = parseHit

	if hash, err := cache.HashValue(d); err == nil {
		result.DiagramHash = hash
	}

	r.Logger.Info("parsed diagram",
		"kind", d.Kind,
		"elements", result.Stats.ElementCount,
		"connections", result.Stats.ConnectionCount,
		"warnings", len(parsed.Diagnostics),
		"duration", result.Stats.ParseTime)

	if opts.NoLayout {
		return result, nil
	}

	// Stage 2: Layout
	layoutStart := time.Now()
	layout, layoutHit, err := r.LayoutWithCacheInfo(ctx, d, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = layout
	result.Stats.LayoutTime = time.Since(layoutStart)
	result.CacheInfo.LayoutHit = layoutHit

	r.Logger.Info("computed layout",
		"engine", layout.Engine,
		"duration", result.Stats.LayoutTime)

	return result, nil
}

// ParseWithCacheInfo parses with caching and returns cache hit info.
func (r *Runner) ParseWithCacheInfo(ctx context.Context, opts Options) (*ParseResult, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForParse(); err != nil {
		return nil, false, err
	}

	cacheKey := r.Keyer.DiagramKey(cache.Hash([]byte(opts.Source)), opts.DiagramKeyOpts())

	// Try cache first (unless refresh requested)
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached ParseResult
			if err := cache.Unmarshal(data, &cached); err == nil && cached.Diagram != nil {
				cached.Diagram.FillEmpty()
				observability.Cache().OnCacheHit(ctx, keyTypeDiagram)
				return &cached, true, nil // Cache hit
			}
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeDiagram)
	}

	parsed, err := Parse(ctx, opts)
	if err != nil {
		return nil, false, err
	}

	r.store(ctx, cacheKey, keyTypeDiagram, parsed, cache.TTLDiagram)
	return parsed, false, nil // Cache miss
}

// Parse is a convenience wrapper that calls ParseWithCacheInfo and discards the cache hit info.
func (r *Runner) Parse(ctx context.Context, opts Options) (*ParseResult, error) {
	parsed, _, err := r.ParseWithCacheInfo(ctx, opts)
	return parsed, err
}

// LayoutWithCacheInfo computes a layout with caching and returns cache hit info.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, d *ir.Diagram, opts Options) (*LayoutResult, bool, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateForLayout(); err != nil {
		return nil, false, err
	}
	if d == nil {
		return nil, false, fmt.Errorf("nil diagram")
	}

	diagramHash, err := cache.HashValue(d)
	if err != nil {
		return nil, false, fmt.Errorf("hash diagram for cache key: %w", err)
	}
	cacheKey := r.Keyer.LayoutKey(diagramHash, opts.LayoutKeyOpts(resolveEngine(d, opts)))

	// Try cache first
	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, cacheKey); err == nil && hit {
			var cached LayoutResult
			if err := cache.Unmarshal(data, &cached); err == nil {
				observability.Cache().OnCacheHit(ctx, keyTypeLayout)
				return &cached, true, nil // Cache hit
			}
			// If deserialization fails, fall through to recompute
		}
		observability.Cache().OnCacheMiss(ctx, keyTypeLayout)
	}

	layout, err := ComputeLayout(ctx, d, opts)
	if err != nil {
		return nil, false, err
	}

	r.store(ctx, cacheKey, keyTypeLayout, layout, cache.TTLLayout)
	return layout, false, nil // Cache miss
}

// Layout is a convenience wrapper that calls LayoutWithCacheInfo and discards the cache hit info.
func (r *Runner) Layout(ctx context.Context, d *ir.Diagram, opts Options) (*LayoutResult, error) {
	layout, _, err := r.LayoutWithCacheInfo(ctx, d, opts)
	return layout, err
}

// ParseAll parses independent documents concurrently, at most limit at a
// time. A limit <= 0 uses DefaultConcurrency. Results keep the order of docs;
// the first error cancels the remaining parses.
func (r *Runner) ParseAll(ctx context.Context, docs []Options, limit int) ([]*ParseResult, error) {
	if limit <= 0 {
		limit = DefaultConcurrency
	}
	results := make([]*ParseResult, len(docs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i := range docs {
		g.Go(func() error {
			parsed, err := r.Parse(ctx, docs[i])
			if err != nil {
				if docs[i].Name != "" {
					return fmt.Errorf("%s: %w", docs[i].Name, err)
				}
				return fmt.Errorf("document %d: %w", i, err)
			}
			results[i] = parsed
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// store writes v to the cache. Failures only cost a future recompute.
func (r *Runner) store(ctx context.Context, key, keyType string, v any, ttl time.Duration) {
	data, err := cache.Marshal(v)
	if err != nil {
		r.Logger.Debug("cache encode failed", "type", keyType, "error", err)
		return
	}
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Debug("cache write failed", "type", keyType, "error", err)
		return
	}
	observability.Cache().OnCacheSet(ctx, keyType, len(data))
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
