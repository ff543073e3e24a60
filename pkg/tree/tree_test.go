package tree

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestProjectRoot(t *testing.T) {
	tests := []struct {
		name    string
		project *Project
		want    string
	}{
		{
			name:    "nil project",
			project: nil,
			want:    "",
		},
		{
			name:    "empty project",
			project: &Project{},
			want:    "",
		},
		{
			name: "root first",
			project: &Project{Nodes: []*Node{
				{ID: "r"},
				{ID: "a", ParentID: "r"},
			}},
			want: "r",
		},
		{
			name: "root not first",
			project: &Project{Nodes: []*Node{
				{ID: "a", ParentID: "r"},
				{ID: "b", ParentID: "r"},
				{ID: "r"},
			}},
			want: "r",
		},
		{
			name: "no parentless node falls back to first",
			project: &Project{Nodes: []*Node{
				{ID: "x", ParentID: "gone"},
				{ID: "y", ParentID: "x"},
			}},
			want: "x",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.project.Root()
			if tt.want == "" {
				if got != nil {
					t.Fatalf("Root() = %q, want nil", got.ID)
				}
				return
			}
			if got == nil || got.ID != tt.want {
				t.Fatalf("Root() = %v, want %q", got, tt.want)
			}
		})
	}
}

func TestNodeCount(t *testing.T) {
	n := &Node{
		ID: "r",
		Answers: []*Node{
			{ID: "a1", SubAnswers: []*Node{{ID: "s1"}, {ID: "s2"}}},
			{ID: "a2"},
		},
	}
	if got := n.Count(); got != 5 {
		t.Errorf("Count() = %d, want 5", got)
	}

	var nilNode *Node
	if got := nilNode.Count(); got != 0 {
		t.Errorf("nil Count() = %d, want 0", got)
	}
}

func TestNodeIsLeaf(t *testing.T) {
	if !(&Node{ID: "x"}).IsLeaf() {
		t.Error("node without children should be a leaf")
	}
	if (&Node{ID: "x", SubAnswers: []*Node{{ID: "y"}}}).IsLeaf() {
		t.Error("node with sub-answers should not be a leaf")
	}
}

func TestDecode(t *testing.T) {
	input := `{
		"id": "p1",
		"name": "Demo",
		"main_video_url": "https://cdn.example.com/main.mp4",
		"nodes": [
			{"id": "r", "question": "Ready?", "parent_id": null,
			 "answers": [{"id": "a1", "text": "Yes", "video_url": "https://cdn.example.com/a1.mp4",
			              "question": "Sure?", "sub_answers": [{"id": "s1", "text": "Very"}]}]}
		]
	}`

	p, err := Decode(strings.NewReader(input))
	if err != nil {
		t.Fatalf("Decode() error: %v", err)
	}
	if p.Name != "Demo" {
		t.Errorf("Name = %q, want Demo", p.Name)
	}
	root := p.Root()
	if root == nil || root.ID != "r" {
		t.Fatalf("Root() = %v, want r", root)
	}
	a1 := root.Answers[0]
	if !a1.HasQuestion() {
		t.Error("a1 should carry a follow-up question")
	}
	if len(a1.SubAnswers) != 1 || a1.SubAnswers[0].ID != "s1" {
		t.Errorf("a1.SubAnswers = %v", a1.SubAnswers)
	}
}

func TestWriteReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.json")
	in := &Project{ID: "p1", Name: "Demo", Nodes: []*Node{{ID: "r", Question: "Q"}}}

	if err := WriteFile(in, path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
	out, err := ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error: %v", err)
	}
	if out.ID != "p1" || out.Root().Question != "Q" {
		t.Errorf("ReadFile() = %+v", out)
	}
}
