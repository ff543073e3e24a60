// Package layout converts a question/answer tree into positioned graph nodes
// and labeled edges.
//
// # Algorithm
//
// The layout is a single pre-order, depth-first pass. Horizontal position is
// the node's depth times a fixed spacing; vertical position is a cursor shared
// by the whole traversal, so every node gets its own row and no two nodes
// overlap regardless of subtree size:
//
//	x = level * HorizontalSpacing
//	y = (visit index) * VerticalSpacing
//
// Only non-answer nodes (the main node and question nodes) expand their
// answers. For every answer the traversal emits, in order:
//
//  1. the answer itself at level+1
//  2. a synthetic question "question-<answer id>" at level+2 when the answer
//     carries follow-up question text
//  3. the answer's sub-answers at level+3, attached to the synthetic question
//     when one exists and to the answer otherwise
//
// The traversal runs on an explicit stack and links children to parents by
// id, so deep trees cannot exhaust the goroutine stack.
//
// # Usage
//
//	res, err := layout.ComputeProject(project)
//	if err != nil {
//	    return err // malformed tree: missing or duplicate ids
//	}
//	for _, n := range res.Nodes {
//	    fmt.Println(n.ID, n.X, n.Y, n.Kind)
//	}
//
// # Commands
//
// Each [Node] reports the user actions it supports through [Node.Commands].
// Commands are plain values that a presentation layer dispatches; the
// layout package itself has no UI dependency.
package layout
