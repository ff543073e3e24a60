package graph

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/tree"
)

func sampleResult(t *testing.T) *layout.Result {
	t.Helper()
	res, err := layout.Compute(&tree.Node{
		ID:       "R",
		Question: "Which way?",
		Answers: []*tree.Node{{
			ID:         "A1",
			Text:       "Left",
			Question:   "How far?",
			SubAnswers: []*tree.Node{{ID: "SA1", Text: "Far", VideoURL: "https://cdn.example.com/far.mp4"}},
		}},
	})
	if err != nil {
		t.Fatalf("Compute: %v", err)
	}
	return res
}

func TestFromResult(t *testing.T) {
	l := FromResult(sampleResult(t))

	if len(l.Nodes) != 4 || len(l.Edges) != 3 {
		t.Fatalf("got %d nodes, %d edges, want 4, 3", len(l.Nodes), len(l.Edges))
	}
	if l.Width != 1600 || l.Height != 1000 {
		t.Errorf("extent = %vx%v, want 1600x1000", l.Width, l.Height)
	}

	tests := []struct {
		id     string
		typ    string
		label  string
		border string
		x, y   float64
	}{
		{"R", "main", "Which way?", ColorMainBorder, 0, 0},
		{"A1", "answer", "Left", ColorAnswerBorder, 400, 250},
		{"question-A1", "question", "How far?", ColorQuestionBorder, 800, 500},
		{"SA1", "answer", "Far", ColorAnswerBorder, 1200, 750},
	}
	for i, tt := range tests {
		n := l.Nodes[i]
		if n.ID != tt.id || n.Type != tt.typ {
			t.Errorf("node[%d] = %s/%s, want %s/%s", i, n.ID, n.Type, tt.id, tt.typ)
		}
		if n.Data.Label != tt.label {
			t.Errorf("%s label = %q, want %q", n.ID, n.Data.Label, tt.label)
		}
		if !strings.Contains(n.Style.Border, tt.border) {
			t.Errorf("%s border = %q, want colour %s", n.ID, n.Style.Border, tt.border)
		}
		if n.Position != (Position{tt.x, tt.y}) {
			t.Errorf("%s position = %+v", n.ID, n.Position)
		}
	}

	if got := l.Nodes[3].Data.VideoURL; got == "" {
		t.Error("video url not carried")
	}
	if got := l.Nodes[1].Data.Commands; len(got) != 2 || got[0] != "edit-answer" {
		t.Errorf("A1 commands = %v", got)
	}
}

func TestFromResultEdges(t *testing.T) {
	l := FromResult(sampleResult(t))

	want := map[string]string{
		"R-A1":            ColorAnswerEdge,
		"A1-question-A1":  ColorQuestionEdge,
		"question-A1-SA1": ColorAnswerEdge,
	}
	for _, e := range l.Edges {
		color, ok := want[e.ID]
		if !ok {
			t.Errorf("unexpected edge %s", e.ID)
			continue
		}
		if e.Style.Stroke != color || e.MarkerEnd.Color != color {
			t.Errorf("%s colours = %s/%s, want %s", e.ID, e.Style.Stroke, e.MarkerEnd.Color, color)
		}
		if e.Type != EdgeTypeSmoothStep || !e.Animated || e.MarkerEnd.Type != MarkerArrowClosed {
			t.Errorf("%s = %+v, want animated smoothstep with arrow", e.ID, e)
		}
	}
}

func TestPlaceholderLabel(t *testing.T) {
	res, err := layout.ComputeProject(&tree.Project{Name: "Empty"})
	if err != nil {
		t.Fatal(err)
	}
	l := FromResult(res)
	n := l.Nodes[0]
	if !n.Data.Placeholder || n.Data.Label != "Main video (empty)" {
		t.Errorf("placeholder node = %+v", n.Data)
	}
	if len(n.Data.Commands) != 1 || n.Data.Commands[0] != "add-question" {
		t.Errorf("placeholder commands = %v", n.Data.Commands)
	}
}

func TestLayoutRoundTripResult(t *testing.T) {
	res := sampleResult(t)
	l := FromResult(res)
	back := l.Result()

	if len(back.Nodes) != len(res.Nodes) || len(back.Edges) != len(res.Edges) {
		t.Fatalf("sizes differ: %d/%d vs %d/%d", len(back.Nodes), len(back.Edges), len(res.Nodes), len(res.Edges))
	}
	for i := range res.Nodes {
		if back.Nodes[i] != res.Nodes[i] {
			t.Errorf("node %d = %+v, want %+v", i, back.Nodes[i], res.Nodes[i])
		}
	}
	for i := range res.Edges {
		if back.Edges[i] != res.Edges[i] {
			t.Errorf("edge %d = %+v, want %+v", i, back.Edges[i], res.Edges[i])
		}
	}
}

func TestUnmarshalLayoutErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		invalid bool
	}{
		{"not json", `{`, false},
		{"no nodes", `{"nodes": []}`, true},
		{"unknown type", `{"nodes": [{"id": "a", "type": "video"}]}`, true},
		{"duplicate", `{"nodes": [{"id": "a", "type": "main"}, {"id": "a", "type": "answer"}]}`, true},
		{"dangling edge", `{"nodes": [{"id": "a", "type": "main"}], "edges": [{"id": "a-b", "source": "a", "target": "b"}]}`, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalLayout([]byte(tt.data))
			if err == nil {
				t.Fatal("expected error")
			}
			if errors.Is(err, ErrInvalidLayout) != tt.invalid {
				t.Errorf("errors.Is(ErrInvalidLayout) = %v, want %v (err: %v)", !tt.invalid, tt.invalid, err)
			}
		})
	}
}

func TestLayoutFile(t *testing.T) {
	l := FromResult(sampleResult(t))
	l.ProjectID = "p1"
	l.ProjectName = "Demo"

	path := filepath.Join(t.TempDir(), "layout.json")
	if err := WriteLayoutFile(l, path); err != nil {
		t.Fatalf("WriteLayoutFile: %v", err)
	}
	got, err := ReadLayoutFile(path)
	if err != nil {
		t.Fatalf("ReadLayoutFile: %v", err)
	}
	if got.ProjectID != "p1" || got.ProjectName != "Demo" {
		t.Errorf("project = %q/%q", got.ProjectID, got.ProjectName)
	}
	if n, ok := got.Node("question-A1"); !ok || !n.Data.Synthetic || n.Data.SourceID != "A1" {
		t.Errorf("synthetic node = %+v, %v", n, ok)
	}

	if _, err := ReadLayoutFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
