// Package graph provides the serialization format for positioned
// question/answer graphs.
//
// This package defines the canonical wire format for vfconsole's layout
// output, used for JSON files, preview-server responses, caching, and the
// flow-graph widget that draws the graph in a browser.
//
// # Architecture
//
// The package sits at the serialization boundary between the layout engine
// and external consumers:
//
//   - [Layout]: Serialization type (this package)
//   - pkg/layout.Result: Internal layout (positions, kinds, edge labels)
//
// Use [FromResult] and [Layout.Result] to convert between them.
//
// # Layout Format
//
// Nodes and edges are shaped the way flow-graph widgets expect them: nodes
// carry a "position", edges a "source" and "target" plus their visual
// attributes.
//
//	{
//	  "nodes": [{"id": "R", "type": "main", "position": {"x": 0, "y": 0}, ...}],
//	  "edges": [{"id": "R-A", "source": "R", "target": "A", "label": "Answer", ...}]
//	}
//
// # Styling
//
// Node borders follow the node kind (main indigo, answer blue, question
// green). Answer edges are drawn in [ColorAnswerEdge], question edges in
// [ColorQuestionEdge]; all edges are animated smoothstep curves with a closed
// arrow marker.
package graph
