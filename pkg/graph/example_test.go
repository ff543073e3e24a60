package graph_test

import (
	"fmt"

	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/tree"
)

func ExampleFromResult() {
	res, err := layout.Compute(&tree.Node{
		ID:       "R",
		Question: "Ready?",
		Answers:  []*tree.Node{{ID: "A", Text: "Yes"}},
	})
	if err != nil {
		panic(err)
	}

	l := graph.FromResult(res)
	for _, n := range l.Nodes {
		fmt.Printf("%s %q at (%.0f,%.0f)\n", n.ID, n.Data.Label, n.Position.X, n.Position.Y)
	}
	for _, e := range l.Edges {
		fmt.Println(e.Source, "->", e.Target, e.Label, e.Style.Stroke)
	}
	// Output:
	// R "Ready?" at (0,0)
	// A "Yes" at (400,250)
	// R -> A Answer #6366f1
}
