package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/videofonik/vfconsole/pkg/layout"
)

// ErrInvalidLayout is returned when decoded layout data is inconsistent.
var ErrInvalidLayout = errors.New("invalid layout")

// =============================================================================
// Layout - Flow Graph Format
// =============================================================================

// Layout is the serialized form of a positioned question/answer graph.
//
// Nodes and Edges are in the layout engine's traversal order. Width and
// Height cover all node positions plus one cell of spacing.
type Layout struct {
	ProjectID   string `json:"project_id,omitempty" bson:"project_id,omitempty"`
	ProjectName string `json:"project_name,omitempty" bson:"project_name,omitempty"`

	Width             float64 `json:"width" bson:"width"`
	Height            float64 `json:"height" bson:"height"`
	HorizontalSpacing float64 `json:"horizontal_spacing" bson:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing" bson:"vertical_spacing"`

	Nodes []Node `json:"nodes" bson:"nodes"`
	Edges []Edge `json:"edges" bson:"edges"`
}

// Node returns the node with the given id.
func (l *Layout) Node(id string) (Node, bool) {
	for _, n := range l.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// FromResult converts layout engine output to the wire format, attaching
// kind-dependent styling and the commands each node supports.
func FromResult(res *layout.Result) Layout {
	w, h := res.Extent()
	l := Layout{
		Width:             w,
		Height:            h,
		HorizontalSpacing: res.HorizontalSpacing,
		VerticalSpacing:   res.VerticalSpacing,
		Nodes:             make([]Node, 0, len(res.Nodes)),
		Edges:             make([]Edge, 0, len(res.Edges)),
	}
	for _, n := range res.Nodes {
		l.Nodes = append(l.Nodes, exportNode(n))
	}
	for _, e := range res.Edges {
		l.Edges = append(l.Edges, exportEdge(e))
	}
	return l
}

func exportNode(n layout.Node) Node {
	var cmds []string
	for _, c := range n.Commands() {
		cmds = append(cmds, c.Action.String())
	}
	return Node{
		ID:       n.ID,
		Type:     string(n.Kind),
		Position: Position{X: n.X, Y: n.Y},
		Data: NodeData{
			Label:         NodeLabel(n),
			Level:         n.Level,
			ParentID:      n.ParentID,
			SourceID:      n.Data.SourceID,
			Question:      n.Data.Question,
			Text:          n.Data.Text,
			URL:           n.Data.URL,
			VideoURL:      n.Data.VideoURL,
			IsSubQuestion: n.Data.IsSubQuestion,
			Synthetic:     n.Data.Synthetic,
			Placeholder:   n.Data.Placeholder,
			Commands:      cmds,
		},
		Style: NodeStyle{
			Border:       fmt.Sprintf("%dpx solid %s", defaultBorderWidth, BorderColor(n.Kind)),
			BorderRadius: defaultBorderRadius,
			Width:        defaultNodeWidth,
		},
		SourcePosition: HandleRight,
		TargetPosition: HandleLeft,
	}
}

func exportEdge(e layout.Edge) Edge {
	color := EdgeColor(e.Label)
	return Edge{
		ID:       e.ID,
		Source:   e.Source,
		Target:   e.Target,
		Label:    string(e.Label),
		Type:     EdgeTypeSmoothStep,
		Animated: true,
		Style: EdgeStyle{
			Stroke:          color,
			StrokeWidth:     defaultBorderWidth,
			StrokeDasharray: defaultDashPattern,
		},
		MarkerEnd: Marker{Type: MarkerArrowClosed, Color: color},
	}
}

// NodeLabel returns the caption drawn for a node: the question for question
// nodes and a main node that poses one, the answer text for answers.
func NodeLabel(n layout.Node) string {
	switch {
	case n.Data.Placeholder:
		return "Main video (empty)"
	case n.IsAnswer():
		return n.Data.Text
	case n.Data.Question != "":
		return n.Data.Question
	case n.IsMain():
		return "Main video"
	}
	return n.ID
}

// Result converts the wire format back to layout engine output, e.g. to
// render a layout file written earlier.
func (l *Layout) Result() *layout.Result {
	res := &layout.Result{
		HorizontalSpacing: l.HorizontalSpacing,
		VerticalSpacing:   l.VerticalSpacing,
		Nodes:             make([]layout.Node, 0, len(l.Nodes)),
		Edges:             make([]layout.Edge, 0, len(l.Edges)),
	}
	for _, n := range l.Nodes {
		res.Nodes = append(res.Nodes, layout.Node{
			ID:       n.ID,
			X:        n.Position.X,
			Y:        n.Position.Y,
			Kind:     layout.Kind(n.Type),
			Level:    n.Data.Level,
			ParentID: n.Data.ParentID,
			Data: layout.Data{
				SourceID:      n.Data.SourceID,
				Question:      n.Data.Question,
				Text:          n.Data.Text,
				URL:           n.Data.URL,
				VideoURL:      n.Data.VideoURL,
				IsSubQuestion: n.Data.IsSubQuestion,
				Synthetic:     n.Data.Synthetic,
				Placeholder:   n.Data.Placeholder,
			},
		})
	}
	for _, e := range l.Edges {
		res.Edges = append(res.Edges, layout.Edge{
			ID:     e.ID,
			Source: e.Source,
			Target: e.Target,
			Label:  layout.Label(e.Label),
		})
	}
	return res
}

// Validate checks node kinds, id uniqueness and that every edge connects two
// known nodes.
func (l *Layout) Validate() error {
	seen := make(map[string]bool, len(l.Nodes))
	for _, n := range l.Nodes {
		if n.ID == "" {
			return fmt.Errorf("%w: node without id", ErrInvalidLayout)
		}
		if seen[n.ID] {
			return fmt.Errorf("%w: duplicate node %q", ErrInvalidLayout, n.ID)
		}
		seen[n.ID] = true
		switch layout.Kind(n.Type) {
		case layout.KindMain, layout.KindQuestion, layout.KindAnswer:
		default:
			return fmt.Errorf("%w: node %q has unknown type %q", ErrInvalidLayout, n.ID, n.Type)
		}
	}
	for _, e := range l.Edges {
		if !seen[e.Source] || !seen[e.Target] {
			return fmt.Errorf("%w: edge %q references unknown node", ErrInvalidLayout, e.ID)
		}
	}
	return nil
}

// =============================================================================
// Layout Serialization API
// =============================================================================

// MarshalLayout serializes a Layout to pretty-printed JSON bytes.
func MarshalLayout(l Layout) ([]byte, error) {
	return json.MarshalIndent(l, "", "  ")
}

// UnmarshalLayout deserializes JSON bytes into a Layout and validates it.
func UnmarshalLayout(data []byte) (Layout, error) {
	var l Layout
	if err := json.Unmarshal(data, &l); err != nil {
		return Layout{}, fmt.Errorf("unmarshal layout: %w", err)
	}
	if len(l.Nodes) == 0 {
		return Layout{}, fmt.Errorf("%w: layout must contain nodes", ErrInvalidLayout)
	}
	if err := l.Validate(); err != nil {
		return Layout{}, err
	}
	return l, nil
}

// WriteLayoutFile writes a Layout to a JSON file.
func WriteLayoutFile(l Layout, path string) error {
	data, err := MarshalLayout(l)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadLayoutFile reads a Layout from a JSON file.
func ReadLayoutFile(path string) (Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Layout{}, fmt.Errorf("read %s: %w", path, err)
	}
	return UnmarshalLayout(data)
}
