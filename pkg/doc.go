// Package pkg provides the core libraries of vfconsole, the administration
// console for interactive question/answer videos.
//
// # Overview
//
// A project is a root video with a tree of questions and answers attached
// to it. The backend stores projects and serves the embeddable widget; the
// pkg directory holds everything the console needs around it:
//
//  1. [tree] - The question/answer tree as the backend returns it
//  2. [layout] - Positions the tree as nodes and labeled edges
//  3. [graph] - Wire format of a positioned graph
//  4. [render] - DOT, SVG, PDF and PNG output
//  5. [pipeline] - Orchestration (fetch → layout → render)
//  6. [shell] - Render state, node commands and dialogs
//  7. [api] - Backend HTTP client
//
// Supporting packages: [cache], [session], [config], [errors], [httputil],
// [observability] and [buildinfo].
//
// # Architecture
//
// The typical data flow through vfconsole:
//
//	Backend (GET /api/v1/projects/{id})
//	         ↓
//	    [tree] package (project + recursive nodes)
//	         ↓
//	    [layout] package (positioned nodes + edges)
//	         ↓
//	    [graph] / [render] packages
//	         ↓
//	    JSON/DOT/SVG/PDF/PNG output, interactive shell, preview server
//
// A node command chosen in the shell opens a dialog; submitting it calls the
// backend and the whole chain above runs again.
//
// [tree]: github.com/videofonik/vfconsole/pkg/tree
// [layout]: github.com/videofonik/vfconsole/pkg/layout
// [graph]: github.com/videofonik/vfconsole/pkg/graph
// [render]: github.com/videofonik/vfconsole/pkg/render
// [pipeline]: github.com/videofonik/vfconsole/pkg/pipeline
// [shell]: github.com/videofonik/vfconsole/pkg/shell
// [api]: github.com/videofonik/vfconsole/pkg/api
// [cache]: github.com/videofonik/vfconsole/pkg/cache
// [session]: github.com/videofonik/vfconsole/pkg/session
// [config]: github.com/videofonik/vfconsole/pkg/config
// [errors]: github.com/videofonik/vfconsole/pkg/errors
// [httputil]: github.com/videofonik/vfconsole/pkg/httputil
// [observability]: github.com/videofonik/vfconsole/pkg/observability
// [buildinfo]: github.com/videofonik/vfconsole/pkg/buildinfo
package pkg
