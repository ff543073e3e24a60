package server

import (
	"html/template"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/videofonik/vfconsole/pkg/graph"
)

var pageTemplate = template.Must(template.New("project").Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Name}} · vfconsole</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem; color: #1f2937; }
h1 { font-size: 1.4rem; }
.diagram { border: 1px solid #e5e7eb; border-radius: 8px; overflow: auto; max-height: 70vh; }
table { border-collapse: collapse; margin-top: 1.5rem; }
td, th { padding: .3rem .8rem; text-align: left; border-bottom: 1px solid #f3f4f6; }
.main { color: #6366f1; } .question { color: #16a34a; } .answer { color: #2563eb; }
code { color: #6b7280; }
</style>
</head>
<body>
<h1>{{.Name}}</h1>
<p><a href="/projects/{{.ID}}/layout">layout.json</a> · <a href="/projects/{{.ID}}/layout.dot">layout.dot</a> · <a href="/projects/{{.ID}}/render/svg?detailed">detailed svg</a></p>
<div class="diagram"><img src="/projects/{{.ID}}/render/svg" alt="{{.Name}}"></div>
<table>
<tr><th>Kind</th><th>Content</th><th>Actions</th><th>ID</th></tr>
{{range .Nodes}}<tr>
<td class="{{.Type}}">{{.Type}}</td>
<td>{{.Data.Label}}</td>
<td>{{range .Data.Commands}}<code>{{.}}</code> {{end}}</td>
<td><code>{{.ID}}</code></td>
</tr>
{{end}}</table>
</body>
</html>
`))

type pageData struct {
	ID    string
	Name  string
	Nodes []graph.Node
}

// projectPage serves a static preview of the project: the rendered
// diagram and its node table.
func (s *Server) projectPage(w http.ResponseWriter, r *http.Request) {
	_, st, _, err := s.loaded(r)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	l := st.Graph()
	data := pageData{ID: chi.URLParam(r, "projectID"), Name: l.ProjectName, Nodes: l.Nodes}
	if data.Name == "" {
		data.Name = l.ProjectID
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Warn("render page", "err", err)
	}
}
