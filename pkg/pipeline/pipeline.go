// Package pipeline provides the fetch → layout → render pipeline of
// vfconsole.
//
// This package implements the complete pipeline used by the render and
// layout commands, the interactive shell and the preview server. By
// centralizing this logic, every entry point draws the same graph for the
// same project.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Fetch: Load the project and its question/answer tree from the backend
//  2. Layout: Position the tree (pkg/layout) and convert it to the wire
//     format (pkg/graph)
//  3. Render: Generate output in various formats (JSON, DOT, SVG, PDF, PNG)
//
// Layouts and artifacts are cached by content hash; the project itself is
// always fetched fresh because the backend is the source of truth.
//
// # Usage
//
//	runner := pipeline.NewRunner(client, c, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    ProjectID: "p1",
//	    Formats:   []render.Format{render.FormatSVG},
//	})
//	svg := result.Artifacts[render.FormatSVG]
//
// Run individual stages:
//
//	p, err := runner.Fetch(ctx, "p1")
//	l, err := runner.Layout(ctx, p, opts)
//	artifacts, err := runner.Render(ctx, l, opts)
package pipeline

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/videofonik/vfconsole/pkg/cache"
	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/render"
	"github.com/videofonik/vfconsole/pkg/render/nodelink"
	"github.com/videofonik/vfconsole/pkg/tree"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultPNGScale is the PNG resolution multiplier.
	DefaultPNGScale = 2.0

	// DefaultTTL is how long layouts and artifacts stay cached.
	DefaultTTL = 24 * time.Hour
)

// DefaultFormats is used when no output format is requested.
var DefaultFormats = []render.Format{render.FormatSVG}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
type Options struct {
	// Fetch options
	ProjectID string
	Project   *tree.Project // already fetched; skips the fetch stage

	// Layout options
	HorizontalSpacing float64
	VerticalSpacing   float64

	// Render options
	Formats  []render.Format
	Detailed bool    // add media references and commands to diagram labels
	PNGScale float64 // PNG resolution multiplier
	Refresh  bool    // bypass cache reads

	// Runtime options
	TTL    time.Duration
	Logger *log.Logger

	validated bool
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Project is the fetched project.
	Project *tree.Project

	// TreeHash is the content hash of the project the layout was computed from.
	TreeHash string

	// Layout is the positioned graph in wire format.
	Layout graph.Layout

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[render.Format][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	TreeNodes  int // nodes in the fetched tree
	NodeCount  int // positioned nodes, including synthetic ones
	EdgeCount  int
	FetchTime  time.Duration
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	LayoutHit bool // Whether the layout came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateAndSetDefaults checks required fields and applies defaults.
// This method is idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}
	if o.Project == nil && o.ProjectID == "" {
		return fmt.Errorf("project id is required")
	}
	o.SetLayoutDefaults()
	if err := o.ValidateForRender(); err != nil {
		return err
	}
	o.validated = true
	return nil
}

// SetLayoutDefaults applies the default spacing and logger.
func (o *Options) SetLayoutDefaults() {
	if o.HorizontalSpacing <= 0 {
		o.HorizontalSpacing = layout.HorizontalSpacing
	}
	if o.VerticalSpacing <= 0 {
		o.VerticalSpacing = layout.VerticalSpacing
	}
	if o.TTL == 0 {
		o.TTL = DefaultTTL
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForRender applies render defaults and rejects duplicate or unknown
// formats.
func (o *Options) ValidateForRender() error {
	o.SetLayoutDefaults()
	if len(o.Formats) == 0 {
		o.Formats = DefaultFormats
	}
	if o.PNGScale <= 0 {
		o.PNGScale = DefaultPNGScale
	}
	seen := make(map[render.Format]bool, len(o.Formats))
	for _, f := range o.Formats {
		if _, err := render.ParseFormat(string(f)); err != nil {
			return err
		}
		if seen[f] {
			return fmt.Errorf("format %q requested twice", f)
		}
		seen[f] = true
	}
	return nil
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() []layout.Option {
	return []layout.Option{layout.WithSpacing(o.HorizontalSpacing, o.VerticalSpacing)}
}

// LayoutKeyOpts returns cache key options for layout computation.
func (o *Options) LayoutKeyOpts() cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		HorizontalSpacing: o.HorizontalSpacing,
		VerticalSpacing:   o.VerticalSpacing,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
func (o *Options) ArtifactKeyOpts(f render.Format) cache.ArtifactKeyOpts {
	key := cache.ArtifactKeyOpts{Format: string(f), Detailed: o.Detailed}
	if f == render.FormatPNG {
		key.Scale = o.PNGScale
	}
	return key
}

// DOTOptions returns the diagram options.
func (o *Options) DOTOptions() nodelink.Options {
	return nodelink.Options{Detailed: o.Detailed}
}
