package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/videofonik/vfconsole/pkg/cache"
	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/observability"
	"github.com/videofonik/vfconsole/pkg/render"
	"github.com/videofonik/vfconsole/pkg/tree"
)

// ErrNoFetcher is returned when the fetch stage runs on a runner without a
// backend client.
var ErrNoFetcher = errors.New("pipeline: no project fetcher configured")

// Fetcher loads a project with its tree. *api.Client implements it.
type Fetcher interface {
	GetProject(ctx context.Context, id string) (*tree.Project, error)
}

// Runner encapsulates pipeline execution with caching.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Fetcher Fetcher
	Cache   cache.Cache
	Keyer   cache.Keyer
	Logger  *log.Logger
}

// NewRunner creates a runner.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(f Fetcher, c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
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
		Fetcher: f,
		Cache:   c,
		Keyer:   keyer,
		Logger:  logger,
	}
}

// Execute runs the complete fetch → layout → render pipeline with caching.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{}

	// Stage 1: Fetch
	p := opts.Project
	if p == nil {
		start := time.Now()
		var err error
		if p, err = r.Fetch(ctx, opts.ProjectID); err != nil {
			return nil, err
		}
		result.Stats.FetchTime = time.Since(start)
	}
	result.Project = p
	if root := p.Root(); root != nil {
		result.Stats.TreeNodes = root.Count()
	}

	r.Logger.Info("fetched project",
		"project", p.Name,
		"nodes", result.Stats.TreeNodes,
		"duration", result.Stats.FetchTime)

	// Stage 2: Layout
	start := time.Now()
	l, hash, hit, err := r.LayoutWithCacheInfo(ctx, p, opts)
	if err != nil {
		return nil, fmt.Errorf("layout: %w", err)
	}
	result.Layout = l
	result.TreeHash = hash
	result.Stats.NodeCount = len(l.Nodes)
	result.Stats.EdgeCount = len(l.Edges)
	result.Stats.LayoutTime = time.Since(start)
	result.CacheInfo.LayoutHit = hit

	r.Logger.Info("computed layout",
		"nodes", len(l.Nodes),
		"edges", len(l.Edges),
		"cached", hit,
		"duration", result.Stats.LayoutTime)

	// Stage 3: Render
	start = time.Now()
	artifacts, hit, err := r.RenderWithCacheInfo(ctx, l, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.Stats.RenderTime = time.Since(start)
	result.CacheInfo.RenderHit = hit

	r.Logger.Info("rendered outputs",
		"formats", opts.Formats,
		"cached", hit,
		"duration", result.Stats.RenderTime)

	return result, nil
}

// Fetch loads a project from the backend. Projects are never cached.
func (r *Runner) Fetch(ctx context.Context, id string) (*tree.Project, error) {
	if r.Fetcher == nil {
		return nil, ErrNoFetcher
	}
	span := observability.Start(observability.StageFetch, id)
	p, err := r.Fetcher.GetProject(ctx, id)
	count := 0
	if err == nil && p.Root() != nil {
		count = p.Root().Count()
	}
	span.End(ctx, count, err)
	if err != nil {
		return nil, fmt.Errorf("fetch project %s: %w", id, err)
	}
	return p, nil
}

// LayoutWithCacheInfo computes a layout with caching. It returns the tree
// hash the layout is keyed on and whether the layout came from the cache.
func (r *Runner) LayoutWithCacheInfo(ctx context.Context, p *tree.Project, opts Options) (graph.Layout, string, bool, error) {
	opts.SetLayoutDefaults()

	hash, err := TreeHash(p)
	if err != nil {
		return graph.Layout{}, "", false, err
	}
	key := r.Keyer.LayoutKey(hash, opts.LayoutKeyOpts())

	if !opts.Refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			if cached, err := graph.UnmarshalLayout(data); err == nil {
				observability.Emit(ctx, observability.Event{Stage: observability.StageCacheHit, Subject: "layout"})
				return cached, hash, true, nil
			}
			// Corrupt entries fall through to recompute.
		}
		observability.Emit(ctx, observability.Event{Stage: observability.StageCacheMiss, Subject: "layout"})
	}

	span := observability.Start(observability.StageLayout, p.ID)
	l, err := ComputeLayout(p, opts)
	span.End(ctx, len(l.Nodes), err)
	if err != nil {
		return graph.Layout{}, hash, false, err
	}

	if data, err := graph.MarshalLayout(l); err == nil {
		r.store(ctx, "layout", key, data, opts.TTL)
	}
	return l, hash, false, nil
}

// Layout is a convenience wrapper around LayoutWithCacheInfo.
func (r *Runner) Layout(ctx context.Context, p *tree.Project, opts Options) (graph.Layout, error) {
	l, _, _, err := r.LayoutWithCacheInfo(ctx, p, opts)
	return l, err
}

// RenderWithCacheInfo generates artifacts with caching and reports whether
// every requested format came from the cache.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, l graph.Layout, opts Options) (map[render.Format][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}

	data, err := graph.MarshalLayout(l)
	if err != nil {
		return nil, false, fmt.Errorf("serialize layout for cache key: %w", err)
	}
	layoutHash := cache.Hash(data)

	if !opts.Refresh {
		artifacts := make(map[render.Format][]byte, len(opts.Formats))
		for _, f := range opts.Formats {
			key := r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f))
			data, hit, err := r.Cache.Get(ctx, key)
			if err != nil || !hit {
				break
			}
			artifacts[f] = data
		}
		if len(artifacts) == len(opts.Formats) {
			observability.Emit(ctx, observability.Event{Stage: observability.StageCacheHit, Subject: "artifact"})
			return artifacts, true, nil
		}
		observability.Emit(ctx, observability.Event{Stage: observability.StageCacheMiss, Subject: "artifact"})
	}

	names := make([]string, len(opts.Formats))
	for i, f := range opts.Formats {
		names[i] = string(f)
	}
	span := observability.Start(observability.StageRender, strings.Join(names, ","))
	rendered, err := RenderLayout(ctx, l, opts)
	span.End(ctx, len(rendered), err)
	if err != nil {
		return nil, false, err
	}

	for f, data := range rendered {
		r.store(ctx, "artifact", r.Keyer.ArtifactKey(layoutHash, opts.ArtifactKeyOpts(f)), data, opts.TTL)
	}
	return rendered, false, nil
}

// Render is a convenience wrapper around RenderWithCacheInfo.
func (r *Runner) Render(ctx context.Context, l graph.Layout, opts Options) (map[render.Format][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, l, opts)
	return artifacts, err
}

func (r *Runner) store(ctx context.Context, keyType, key string, data []byte, ttl time.Duration) {
	if err := r.Cache.Set(ctx, key, data, ttl); err != nil {
		r.Logger.Warn("cache write failed", "type", keyType, "err", err)
		return
	}
	observability.Emit(ctx, observability.Event{Stage: observability.StageCacheSet, Subject: keyType, Count: len(data)})
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}
