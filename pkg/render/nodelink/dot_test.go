package nodelink

import (
	"strings"
	"testing"

	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/tree"
)

func sampleLayout(t *testing.T) graph.Layout {
	t.Helper()
	res, err := layout.Compute(&tree.Node{
		ID:       "R",
		Question: "Which way?",
		VideoURL: "https://cdn.example.com/intro.mp4",
		Answers: []*tree.Node{{
			ID:         "A1",
			Text:       "Left",
			Question:   "How far?",
			SubAnswers: []*tree.Node{{ID: "SA1", Text: "Far"}},
		}},
	})
	if err != nil {
		t.Fatal(err)
	}
	return graph.FromResult(res)
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleLayout(t), Options{})

	for _, want := range []string{
		"digraph G",
		"layout=neato",
		`"R" [label="Which way?"`,
		`pos="0.00,0.00!"`,
		`pos="800.00,-500.00!"`,
		`"A1" -> "question-A1" [label="Question", color="#10B981"`,
		`"R" -> "A1" [label="Answer", color="#6366f1"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %q\n%s", want, dot)
		}
	}
}

func TestToDOT_Scale(t *testing.T) {
	dot := ToDOT(sampleLayout(t), Options{Scale: 0.5})
	if !strings.Contains(dot, `pos="600.00,-375.00!"`) {
		t.Errorf("scaled position missing:\n%s", dot)
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleLayout(t), Options{Detailed: true})

	if !strings.Contains(dot, "video: https://cdn.example.com/intro.mp4") {
		t.Error("detailed output missing video reference")
	}
	if !strings.Contains(dot, "edit-question, add-answer") {
		t.Error("detailed output missing commands")
	}
}

func TestToDOT_Placeholder(t *testing.T) {
	res, err := layout.ComputeProject(&tree.Project{Name: "Empty"})
	if err != nil {
		t.Fatal(err)
	}
	dot := ToDOT(graph.FromResult(res), Options{})

	if !strings.Contains(dot, "dashed") {
		t.Error("placeholder missing dashed style")
	}
	if strings.Contains(dot, "->") {
		t.Error("placeholder layout should have no edges")
	}
}

func TestBorderColor(t *testing.T) {
	tests := []struct {
		border string
		want   string
	}{
		{"2px solid #4ade80", "#4ade80"},
		{"", "black"},
		{"1px solid red", "black"},
	}
	for _, tt := range tests {
		got := borderColor(graph.Node{Style: graph.NodeStyle{Border: tt.border}})
		if got != tt.want {
			t.Errorf("borderColor(%q) = %q, want %q", tt.border, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"one two three", 7, "one two\nthree"},
		{"averyveryverylongword x", 5, "averyveryverylongword\nx"},
		{"  spaced   out  ", 20, "spaced out"},
		{"", 10, ""},
	}
	for _, tt := range tests {
		if got := wrap(tt.in, tt.width); got != tt.want {
			t.Errorf("wrap(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestScalable(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "fixed size dropped",
			svg:  `<?xml version="1.0"?><svg width="800pt" height="600pt" viewBox="0.00 0.00 800.00 600.00" xmlns="http://www.w3.org/2000/svg"><g width="10"/></svg>`,
			want: `<?xml version="1.0"?><svg viewBox="0.00 0.00 800.00 600.00" xmlns="http://www.w3.org/2000/svg"><g width="10"/></svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg width="800pt" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg width="800pt" xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "not svg",
			svg:  `<html></html>`,
			want: `<html></html>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(scalable([]byte(tt.svg))); got != tt.want {
				t.Errorf("scalable() = %q, want %q", got, tt.want)
			}
		})
	}
}
