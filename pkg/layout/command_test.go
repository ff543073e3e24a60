package layout

import "testing"

func TestCommands(t *testing.T) {
	tests := []struct {
		name string
		node Node
		want []Action
	}{
		{"placeholder", Node{ID: MainNodeID, Kind: KindMain, Data: Data{Placeholder: true}}, []Action{AddQuestion}},
		{"main without question", Node{ID: "r", Kind: KindMain}, []Action{AddQuestion}},
		{"main with question", Node{ID: "r", Kind: KindMain, Data: Data{Question: "?"}}, []Action{EditQuestion, AddAnswer}},
		{"answer", Node{ID: "a", Kind: KindAnswer, ParentID: "r"}, []Action{EditAnswer, AddQuestion}},
		{"question", Node{ID: "question-a", Kind: KindQuestion, ParentID: "a"}, []Action{EditQuestion, AddAnswer}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.node.Commands()
			if len(got) != len(tt.want) {
				t.Fatalf("Commands() = %v, want actions %v", got, tt.want)
			}
			for i, a := range tt.want {
				if got[i].Action != a {
					t.Errorf("Commands()[%d].Action = %s, want %s", i, got[i].Action, a)
				}
				if !tt.node.Supports(a) {
					t.Errorf("Supports(%s) = false", a)
				}
			}
		})
	}
}

func TestCommandTargets(t *testing.T) {
	n := Node{ID: "a", Kind: KindAnswer, ParentID: "r"}
	for _, c := range n.Commands() {
		if c.NodeID != "a" || c.ParentID != "r" {
			t.Errorf("%s targets %q/%q, want a/r", c.Action, c.NodeID, c.ParentID)
		}
	}

	placeholder := Node{ID: MainNodeID, Kind: KindMain, Data: Data{Placeholder: true}}
	if c := placeholder.Commands()[0]; c.NodeID != "" {
		t.Errorf("placeholder command NodeID = %q, want empty", c.NodeID)
	}
}

func TestParseAction(t *testing.T) {
	for _, a := range []Action{AddQuestion, EditQuestion, AddAnswer, EditAnswer} {
		got, ok := ParseAction(a.String())
		if !ok || got != a {
			t.Errorf("ParseAction(%q) = %v, %v", a.String(), got, ok)
		}
	}
	if _, ok := ParseAction("delete"); ok {
		t.Error("ParseAction(delete) should fail")
	}
	if Action(0).String() != "unknown" {
		t.Errorf("zero Action = %q", Action(0).String())
	}
}
