// Package tree defines the question/answer tree of an interactive video
// project as it is returned by the backend.
//
// A project owns a flat slice of [Node] values. Exactly one of them has no
// parent and acts as the main (root) video; every other node hangs below it
// through the Answers and SubAnswers slices. The package does not enforce
// that invariant on decode: the backend owns it. [Project.Root] locates the
// root without assuming any particular order.
//
// # Wire Format
//
//	{
//	  "id": "p1",
//	  "name": "Onboarding",
//	  "main_video_url": "https://cdn.example.com/main.mp4",
//	  "nodes": [
//	    {"id": "r", "question": "Ready?", "answers": [{"id": "a1", "text": "Yes"}]}
//	  ]
//	}
package tree

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Node is one question or answer unit of the branching video tree.
type Node struct {
	ID            string  `json:"id"`
	URL           string  `json:"url,omitempty"`
	Question      string  `json:"question,omitempty"`
	Text          string  `json:"text,omitempty"`
	VideoURL      string  `json:"video_url,omitempty"`
	Answers       []*Node `json:"answers,omitempty"`
	SubAnswers    []*Node `json:"sub_answers,omitempty"`
	ParentID      string  `json:"parent_id,omitempty"`
	IsSubQuestion bool    `json:"is_sub_question,omitempty"`
}

// HasQuestion reports whether the node carries question text.
func (n *Node) HasQuestion() bool { return n != nil && n.Question != "" }

// IsLeaf reports whether the node has neither answers nor sub-answers.
func (n *Node) IsLeaf() bool {
	return n == nil || (len(n.Answers) == 0 && len(n.SubAnswers) == 0)
}

// Count returns the number of distinct nodes reachable from n, n included.
// Children are followed through both Answers and SubAnswers.
func (n *Node) Count() int {
	if n == nil {
		return 0
	}
	seen := make(map[*Node]bool)
	stack := []*Node{n}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if cur == nil || seen[cur] {
			continue
		}
		seen[cur] = true
		stack = append(stack, cur.Answers...)
		stack = append(stack, cur.SubAnswers...)
	}
	return len(seen)
}

// Project is the envelope the backend returns for a single project.
type Project struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MainVideoURL   string   `json:"main_video_url"`
	UserID         string   `json:"user_id,omitempty"`
	Nodes          []*Node  `json:"nodes"`
	AllowedDomains []string `json:"allowed_domains,omitempty"`
}

// IsEmpty reports whether the project has no question yet.
func (p *Project) IsEmpty() bool { return p == nil || len(p.Nodes) == 0 }

// Root returns the node without a parent. If every node claims a parent the
// first node is returned. Root returns nil only for an empty project.
func (p *Project) Root() *Node {
	if p.IsEmpty() {
		return nil
	}
	for _, n := range p.Nodes {
		if n != nil && n.ParentID == "" {
			return n
		}
	}
	return p.Nodes[0]
}

// Decode reads a single project from r.
func Decode(r io.Reader) (*Project, error) {
	var p Project
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decode project: %w", err)
	}
	return &p, nil
}

// ReadFile reads a project JSON file, as saved by "vfconsole projects show -o".
func ReadFile(path string) (*Project, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile writes p as indented JSON.
func WriteFile(p *Project, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
