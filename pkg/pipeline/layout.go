package pipeline

import (
	"github.com/videofonik/vfconsole/pkg/cache"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/graph"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/tree"
)

// ComputeLayout positions the project's tree and converts the result to the
// wire format. An empty project yields the placeholder layout.
func ComputeLayout(p *tree.Project, opts Options) (graph.Layout, error) {
	opts.SetLayoutDefaults()

	res, err := layout.ComputeProject(p, opts.LayoutOptions()...)
	if err != nil {
		return graph.Layout{}, vferrors.Wrap(vferrors.ErrCodeInvalidTree, err, "layout project %q", projectID(p))
	}
	l := graph.FromResult(res)
	if p != nil {
		l.ProjectID, l.ProjectName = p.ID, p.Name
	}
	return l, nil
}

// TreeHash returns the content hash a project's layout is cached under.
func TreeHash(p *tree.Project) (string, error) {
	return cache.HashJSON(p)
}

func projectID(p *tree.Project) string {
	if p == nil {
		return ""
	}
	return p.ID
}
