// Package render provides output rendering for positioned graphs.
//
// # Overview
//
// This package contains the final stage of the rendering pipeline. It
// provides:
//
//   - The set of supported output [Format] values
//   - Generic format conversion (SVG to PDF/PNG)
//   - Node-link diagrams (in [nodelink] subpackage)
//
// # Format Conversion
//
// The [ToPDF] and [ToPNG] functions convert any SVG to other formats using
// the external rsvg-convert tool (from librsvg).
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// # Node-Link Diagrams
//
// The [nodelink] subpackage draws the question/answer graph with Graphviz,
// pinning every node to the coordinates computed by the layout engine.
//
// [nodelink]: github.com/videofonik/vfconsole/pkg/render/nodelink
package render
