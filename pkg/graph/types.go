package graph

import "github.com/videofonik/vfconsole/pkg/layout"

// =============================================================================
// Visual Constants
// =============================================================================

// Edge stroke colours by label.
const (
	ColorAnswerEdge   = "#6366f1"
	ColorQuestionEdge = "#10B981"
)

// Node border colours by kind.
const (
	ColorMainBorder     = "#6366f1" // indigo-500
	ColorAnswerBorder   = "#60a5fa" // blue-400
	ColorQuestionBorder = "#4ade80" // green-400
)

// Edge and marker types understood by flow-graph widgets.
const (
	EdgeTypeSmoothStep  = "smoothstep"
	MarkerArrowClosed   = "arrowclosed"
	HandleRight         = "right"
	HandleLeft          = "left"
	defaultDashPattern  = "5,5"
	defaultBorderWidth  = 2
	defaultNodeWidth    = 260
	defaultBorderRadius = 8
)

// BorderColor returns the border colour for a node kind.
func BorderColor(k layout.Kind) string {
	switch k {
	case layout.KindMain:
		return ColorMainBorder
	case layout.KindQuestion:
		return ColorQuestionBorder
	default:
		return ColorAnswerBorder
	}
}

// EdgeColor returns the stroke colour for an edge label.
func EdgeColor(l layout.Label) string {
	if l == layout.LabelQuestion {
		return ColorQuestionEdge
	}
	return ColorAnswerEdge
}

// =============================================================================
// Node
// =============================================================================

// Position is a node's top-left corner in layout coordinates.
type Position struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
}

// NodeData is the content drawn inside a node.
type NodeData struct {
	Label         string   `json:"label" bson:"label"`
	Level         int      `json:"level" bson:"level"`
	ParentID      string   `json:"parent_id,omitempty" bson:"parent_id,omitempty"`
	SourceID      string   `json:"source_id,omitempty" bson:"source_id,omitempty"`
	Question      string   `json:"question,omitempty" bson:"question,omitempty"`
	Text          string   `json:"text,omitempty" bson:"text,omitempty"`
	URL           string   `json:"url,omitempty" bson:"url,omitempty"`
	VideoURL      string   `json:"video_url,omitempty" bson:"video_url,omitempty"`
	IsSubQuestion bool     `json:"is_sub_question,omitempty" bson:"is_sub_question,omitempty"`
	Synthetic     bool     `json:"synthetic,omitempty" bson:"synthetic,omitempty"`
	Placeholder   bool     `json:"placeholder,omitempty" bson:"placeholder,omitempty"`
	Commands      []string `json:"commands,omitempty" bson:"commands,omitempty"`
}

// NodeStyle holds the CSS-like attributes of a node box.
type NodeStyle struct {
	Border       string `json:"border" bson:"border"`
	BorderRadius int    `json:"borderRadius" bson:"border_radius"`
	Width        int    `json:"width" bson:"width"`
}

// Node is a positioned node in flow-graph form.
type Node struct {
	ID             string    `json:"id" bson:"id"`
	Type           string    `json:"type" bson:"type"` // layout.Kind
	Position       Position  `json:"position" bson:"position"`
	Data           NodeData  `json:"data" bson:"data"`
	Style          NodeStyle `json:"style" bson:"style"`
	SourcePosition string    `json:"sourcePosition,omitempty" bson:"source_position,omitempty"`
	TargetPosition string    `json:"targetPosition,omitempty" bson:"target_position,omitempty"`
}

// =============================================================================
// Edge
// =============================================================================

// EdgeStyle holds the stroke attributes of an edge.
type EdgeStyle struct {
	Stroke          string `json:"stroke" bson:"stroke"`
	StrokeWidth     int    `json:"strokeWidth" bson:"stroke_width"`
	StrokeDasharray string `json:"strokeDasharray,omitempty" bson:"stroke_dasharray,omitempty"`
}

// Marker is an edge end marker.
type Marker struct {
	Type  string `json:"type" bson:"type"`
	Color string `json:"color" bson:"color"`
}

// Edge is a directed, labeled edge in flow-graph form.
type Edge struct {
	ID        string    `json:"id" bson:"id"`
	Source    string    `json:"source" bson:"source"`
	Target    string    `json:"target" bson:"target"`
	Label     string    `json:"label" bson:"label"`
	Type      string    `json:"type" bson:"type"`
	Animated  bool      `json:"animated" bson:"animated"`
	Style     EdgeStyle `json:"style" bson:"style"`
	MarkerEnd Marker    `json:"markerEnd" bson:"marker_end"`
}
