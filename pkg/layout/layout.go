package layout

import (
	"errors"
	"fmt"

	"github.com/videofonik/vfconsole/pkg/tree"
)

// Fixed spacing between columns (tree depth) and rows (visit order).
const (
	HorizontalSpacing = 400.0
	VerticalSpacing   = 250.0
)

// MainNodeID is the id of the placeholder node emitted for an empty project.
const MainNodeID = "main"

// SyntheticQuestionPrefix prefixes the id of a question node materialized
// from an answer's follow-up question text.
const SyntheticQuestionPrefix = "question-"

var (
	// ErrNilTree is returned when Compute is called without a root node.
	ErrNilTree = errors.New("tree has no root node")

	// ErrMissingID is returned when a node (or a child slot) has no id.
	ErrMissingID = errors.New("node id must not be empty")

	// ErrDuplicateID is returned when two emitted nodes share an id. A cyclic
	// tree is reported this way as well.
	ErrDuplicateID = errors.New("duplicate node id")
)

// Kind classifies a positioned node.
type Kind string

const (
	KindMain     Kind = "main"
	KindQuestion Kind = "question"
	KindAnswer   Kind = "answer"
)

// Label is the text drawn on an edge.
type Label string

const (
	LabelQuestion Label = "Question"
	LabelAnswer   Label = "Answer"
)

// Data carries the tree content a renderer needs to draw a node.
type Data struct {
	SourceID      string `json:"source_id,omitempty"` // backend node the visual node derives from
	Question      string `json:"question,omitempty"`
	Text          string `json:"text,omitempty"`
	URL           string `json:"url,omitempty"`
	VideoURL      string `json:"video_url,omitempty"`
	IsSubQuestion bool   `json:"is_sub_question,omitempty"`
	Synthetic     bool   `json:"synthetic,omitempty"`   // no backend identity of its own
	Placeholder   bool   `json:"placeholder,omitempty"` // empty main video slot
}

// Node is a positioned visual node.
type Node struct {
	ID       string  `json:"id"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Kind     Kind    `json:"kind"`
	Level    int     `json:"level"`
	ParentID string  `json:"parent_id,omitempty"`
	Data     Data    `json:"data"`
}

// IsMain reports whether n is the project's entry video.
func (n Node) IsMain() bool { return n.Kind == KindMain }

// IsAnswer reports whether n is an answer node.
func (n Node) IsAnswer() bool { return n.Kind == KindAnswer }

// Edge is a directed, labeled connection from a parent to a child node.
type Edge struct {
	ID     string `json:"id"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  Label  `json:"label"`
}

// EdgeID returns the id of the edge from source to target.
func EdgeID(source, target string) string { return source + "-" + target }

// Result holds the output of a layout pass in traversal order.
type Result struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`

	HorizontalSpacing float64 `json:"horizontal_spacing"`
	VerticalSpacing   float64 `json:"vertical_spacing"`
}

// Node returns the node with the given id.
func (r *Result) Node(id string) (Node, bool) {
	for _, n := range r.Nodes {
		if n.ID == id {
			return n, true
		}
	}
	return Node{}, false
}

// Extent returns the width and height covered by the layout, including one
// cell of spacing past the last column and row.
func (r *Result) Extent() (width, height float64) {
	for _, n := range r.Nodes {
		width = max(width, n.X)
		height = max(height, n.Y)
	}
	return width + r.HorizontalSpacing, height + r.VerticalSpacing
}

// Option configures a layout pass.
type Option func(*config)

type config struct {
	h, v    float64
	mainURL string
}

// WithSpacing overrides the column and row spacing. Non-positive values keep
// the defaults.
func WithSpacing(horizontal, vertical float64) Option {
	return func(c *config) {
		if horizontal > 0 {
			c.h = horizontal
		}
		if vertical > 0 {
			c.v = vertical
		}
	}
}

// WithMainVideo sets the media reference shown on the main node when the
// root node has no url of its own.
func WithMainVideo(url string) Option { return func(c *config) { c.mainURL = url } }

func newConfig(opts []Option) config {
	c := config{h: HorizontalSpacing, v: VerticalSpacing}
	for _, o := range opts {
		o(&c)
	}
	return c
}

// ComputeProject lays out a whole project. The root is the node without a
// parent, or the first node if none qualifies. An empty project yields a
// single placeholder main node at the origin.
func ComputeProject(p *tree.Project, opts ...Option) (*Result, error) {
	if p != nil && p.MainVideoURL != "" {
		opts = append([]Option{WithMainVideo(p.MainVideoURL)}, opts...)
	}
	if p.IsEmpty() {
		c := newConfig(opts)
		return &Result{
			Nodes: []Node{{
				ID:   MainNodeID,
				Kind: KindMain,
				Data: Data{URL: c.mainURL, Placeholder: true},
			}},
			Edges:             []Edge{},
			HorizontalSpacing: c.h,
			VerticalSpacing:   c.v,
		}, nil
	}
	return Compute(p.Root(), opts...)
}

// frame is one pending visit on the traversal stack.
type frame struct {
	node      *tree.Node
	id        string
	parentID  string
	kind      Kind
	level     int
	synthetic bool
	sourceID  string
	sub       bool
}

// Compute lays out the tree rooted at root.
func Compute(root *tree.Node, opts ...Option) (*Result, error) {
	if root == nil {
		return nil, ErrNilTree
	}
	c := newConfig(opts)

	res := &Result{
		Nodes:             make([]Node, 0, root.Count()),
		Edges:             make([]Edge, 0, root.Count()),
		HorizontalSpacing: c.h,
		VerticalSpacing:   c.v,
	}
	seen := make(map[string]bool)
	cursor := 0.0

	stack := []frame{{node: root, id: root.ID, kind: KindMain, sourceID: root.ID}}
	for len(stack) > 0 {
		f := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if f.node == nil {
			return nil, fmt.Errorf("%w: nil child under %q", ErrMissingID, f.parentID)
		}
		if f.id == "" {
			return nil, fmt.Errorf("%w: child of %q at level %d", ErrMissingID, f.parentID, f.level)
		}
		if seen[f.id] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateID, f.id)
		}
		seen[f.id] = true

		res.Nodes = append(res.Nodes, c.position(f, cursor))
		cursor += c.v

		if f.parentID != "" {
			label := LabelQuestion
			if f.kind == KindAnswer {
				label = LabelAnswer
			}
			res.Edges = append(res.Edges, Edge{
				ID:     EdgeID(f.parentID, f.id),
				Source: f.parentID,
				Target: f.id,
				Label:  label,
			})
		}

		if f.kind == KindAnswer {
			continue
		}
		children := expand(f)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	return res, nil
}

func (c config) position(f frame, y float64) Node {
	n := f.node
	data := Data{
		SourceID:      f.sourceID,
		Question:      n.Question,
		Text:          n.Text,
		URL:           n.URL,
		VideoURL:      n.VideoURL,
		IsSubQuestion: n.IsSubQuestion || f.sub,
		Synthetic:     f.synthetic,
	}
	if f.kind == KindMain && data.URL == "" {
		data.URL = c.mainURL
	}
	return Node{
		ID:       f.id,
		X:        float64(f.level) * c.h,
		Y:        y,
		Kind:     f.kind,
		Level:    f.level,
		ParentID: f.parentID,
		Data:     data,
	}
}

// expand returns the frames below a main or question node in visit order.
func expand(f frame) []frame {
	var out []frame
	for _, a := range f.node.Answers {
		if a == nil {
			out = append(out, frame{parentID: f.id, kind: KindAnswer, level: f.level + 1})
			continue
		}
		out = append(out, frame{
			node:     a,
			id:       a.ID,
			parentID: f.id,
			kind:     KindAnswer,
			level:    f.level + 1,
			sourceID: a.ID,
		})

		parent := a.ID
		if a.HasQuestion() {
			qid := SyntheticQuestionPrefix + a.ID
			out = append(out, frame{
				node: &tree.Node{
					ID:            qid,
					Question:      a.Question,
					ParentID:      a.ID,
					IsSubQuestion: true,
				},
				id:        qid,
				parentID:  a.ID,
				kind:      KindQuestion,
				level:     f.level + 2,
				synthetic: true,
				sourceID:  a.ID,
				sub:       true,
			})
			parent = qid
		}

		for _, sa := range a.SubAnswers {
			sf := frame{parentID: parent, kind: KindAnswer, level: f.level + 3, sub: true}
			if sa != nil {
				sf.node, sf.id, sf.sourceID = sa, sa.ID, sa.ID
			}
			out = append(out, sf)
		}
	}
	return out
}
