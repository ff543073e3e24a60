package nodelink_test

import (
	"fmt"
	"strings"

	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/render/nodelink"
	"github.com/videofonik/vfconsole/pkg/tree"
)

func ExampleToDOT() {
	res, _ := layout.Compute(&tree.Node{
		ID:       "intro",
		Question: "Ready?",
		Answers:  []*tree.Node{{ID: "yes", Text: "Yes"}},
	})

	dot := nodelink.ToDOT(graph.FromResult(res), nodelink.Options{})
	for _, line := range strings.Split(dot, "\n") {
		if strings.Contains(line, "->") {
			fmt.Println(strings.TrimSpace(line))
		}
	}
	// Output:
	// "intro" -> "yes" [label="Answer", color="#6366f1", fontcolor="#6366f1"];
}
