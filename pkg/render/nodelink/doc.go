// Package nodelink renders positioned question/answer graphs as node-link
// diagrams.
//
// # Overview
//
// Unlike a typical Graphviz pipeline, Graphviz does not choose positions
// here: the layout engine has already placed every node, so [ToDOT] pins
// each node with pos="x,y!" and selects the neato engine, which honors
// pinned positions and only routes the edges.
//
// # Usage
//
//	dot := nodelink.ToDOT(l, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// RenderSVG shares one Graphviz instance per process. Long-running callers
// that want to release it can use their own [Renderer] and Close it. PDF and
// PNG are converted from the SVG with render.ToPDF and render.ToPNG.
//
// # Styling
//
// Node outlines and edge strokes use the colours of the wire format (see
// pkg/graph): main nodes indigo, answers blue, questions green. The empty
// main video slot is drawn dashed.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
