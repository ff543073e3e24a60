package pipeline

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/render"
	"github.com/videofonik/vfconsole/pkg/render/nodelink"
)

// RenderLayout generates output artifacts in the requested formats.
//
// The SVG is produced once and shared; PDF and PNG conversions then run
// concurrently.
func RenderLayout(ctx context.Context, l graph.Layout, opts Options) (map[render.Format][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	dot := nodelink.ToDOT(l, opts.DOTOptions())

	var svg []byte
	if slices.ContainsFunc(opts.Formats, needsSVG) {
		var err error
		if svg, err = nodelink.RenderSVG(ctx, dot); err != nil {
			return nil, fmt.Errorf("render svg: %w", err)
		}
	}

	var (
		mu        sync.Mutex
		artifacts = make(map[render.Format][]byte, len(opts.Formats))
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, f := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(gctx, f, l, dot, svg, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", f, err)
			}
			mu.Lock()
			artifacts[f] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func needsSVG(f render.Format) bool {
	return f == render.FormatSVG || f.NeedsRSVG()
}

func renderFormat(ctx context.Context, f render.Format, l graph.Layout, dot string, svg []byte, opts Options) ([]byte, error) {
	switch f {
	case render.FormatJSON:
		return graph.MarshalLayout(l)
	case render.FormatDOT:
		return []byte(dot), nil
	case render.FormatSVG:
		return svg, nil
	case render.FormatPDF:
		return render.ToPDF(ctx, svg)
	case render.FormatPNG:
		return render.ToPNG(ctx, svg, opts.PNGScale)
	default:
		return nil, fmt.Errorf("unsupported format: %s", f)
	}
}
