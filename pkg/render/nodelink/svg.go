package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"sync"

	"github.com/goccy/go-graphviz"
)

// Renderer draws DOT as SVG with an embedded Graphviz. Starting Graphviz is
// expensive, so one instance is created on first use and kept. Renders are
// serialised; a Renderer is safe for concurrent use.
type Renderer struct {
	mu sync.Mutex
	gv *graphviz.Graphviz
}

var defaultRenderer Renderer

// RenderSVG renders dot with the shared Renderer.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	return defaultRenderer.SVG(ctx, dot)
}

// SVG renders dot. Positions pinned in the DOT source are kept; the root
// element loses its fixed size so the drawing scales with its container.
func (r *Renderer) SVG(ctx context.Context, dot string) ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.gv == nil {
		gv, err := graphviz.New(ctx)
		if err != nil {
			return nil, fmt.Errorf("init graphviz: %w", err)
		}
		r.gv = gv
	}

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := r.gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("graphviz: %w", err)
	}
	return scalable(buf.Bytes()), nil
}

// Close releases the Graphviz instance. The Renderer can be used again
// afterwards and starts a new one.
func (r *Renderer) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.gv == nil {
		return nil
	}
	err := r.gv.Close()
	r.gv = nil
	return err
}

var fixedSizeRe = regexp.MustCompile(`\s(?:width|height)="[0-9.]+(?:pt|px)?"`)

// scalable drops width and height from the root <svg> element, leaving the
// viewBox to define the aspect ratio.
func scalable(svg []byte) []byte {
	start := bytes.Index(svg, []byte("<svg"))
	if start < 0 {
		return svg
	}
	end := bytes.IndexByte(svg[start:], '>')
	if end < 0 || !bytes.Contains(svg[start:start+end], []byte("viewBox")) {
		return svg
	}
	end += start

	out := make([]byte, 0, len(svg))
	out = append(out, svg[:start]...)
	out = append(out, fixedSizeRe.ReplaceAll(svg[start:end], nil)...)
	return append(out, svg[end:]...)
}
