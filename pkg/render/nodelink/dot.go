package nodelink

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/videofonik/vfconsole/pkg/graph"
)

// DefaultScale maps layout units to Graphviz points.
const DefaultScale = 1.0

// maxLineLength is the column at which node captions are wrapped.
const maxLineLength = 28

// Options configures node-link diagram rendering.
type Options struct {
	// Detailed adds the media reference and supported commands to node
	// labels. When false, only the caption is shown.
	Detailed bool

	// Scale multiplies layout coordinates before pinning. Zero means
	// DefaultScale.
	Scale float64
}

// ToDOT converts a layout to Graphviz DOT format with every node pinned to
// its computed position. The y axis is flipped: layout coordinates grow
// downwards, Graphviz coordinates upwards.
func ToDOT(l graph.Layout, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = DefaultScale
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\", width=3];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=11, style=dashed];\n")
	buf.WriteString("\n")

	for _, n := range l.Nodes {
		attrs := fmtAttrs(n, fmtLabel(n, opts.Detailed))
		x, y := n.Position.X*scale, 0-n.Position.Y*scale
		attrs = append(attrs, fmt.Sprintf("pos=\"%.2f,%.2f!\"", x, y))
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range l.Edges {
		fmt.Fprintf(&buf, "  %q -> %q [label=%q, color=%q, fontcolor=%q];\n",
			e.Source, e.Target, e.Label, e.Style.Stroke, e.Style.Stroke)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtLabel(n graph.Node, detailed bool) string {
	label := wrap(n.Data.Label, maxLineLength)
	if !detailed {
		return label
	}

	var parts []string
	if url := n.Data.VideoURL; url != "" {
		parts = append(parts, "video: "+url)
	} else if n.Data.URL != "" {
		parts = append(parts, "video: "+n.Data.URL)
	}
	if len(n.Data.Commands) > 0 {
		parts = append(parts, strings.Join(n.Data.Commands, ", "))
	}
	if len(parts) == 0 {
		return label
	}
	return label + "\n" + strings.Join(parts, "\n")
}

func fmtAttrs(n graph.Node, label string) []string {
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("color=%q", borderColor(n)),
		"penwidth=2",
	}
	if n.Data.Placeholder {
		attrs = append(attrs, "style=\"rounded,filled,dashed\"", "fontcolor=grey40")
	}
	return attrs
}

// borderColor extracts the colour from a CSS border shorthand such as
// "2px solid #6366f1".
func borderColor(n graph.Node) string {
	fields := strings.Fields(n.Style.Border)
	if len(fields) > 0 && strings.HasPrefix(fields[len(fields)-1], "#") {
		return fields[len(fields)-1]
	}
	return "black"
}

// wrap breaks s into lines of at most width runes at word boundaries.
// Words longer than width are kept whole.
func wrap(s string, width int) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	var lines []string
	line := words[0]
	for _, w := range words[1:] {
		if len([]rune(line))+1+len([]rune(w)) > width {
			lines = append(lines, line)
			line = w
			continue
		}
		line += " " + w
	}
	return strings.Join(append(lines, line), "\n")
}
