package api

import (
	"context"
	"net/http"
	"strconv"

	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/tree"
)

// ListProjects returns the projects owned by the current user.
func (c *Client) ListProjects(ctx context.Context) ([]*tree.Project, error) {
	var projects []*tree.Project
	if err := c.get(ctx, "/projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// GetProject returns a project with its full question/answer tree.
func (c *Client) GetProject(ctx context.Context, id string) (*tree.Project, error) {
	if id == "" {
		return nil, vferrors.New(vferrors.ErrCodeInvalidInput, "project id is required")
	}
	var p tree.Project
	if err := c.get(ctx, "/projects/"+escape(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProject uploads the main video and creates a project around it.
func (c *Client) CreateProject(ctx context.Context, name string, video *Upload) (*tree.Project, error) {
	if err := vferrors.ValidateProjectName(name); err != nil {
		return nil, err
	}
	if video == nil {
		return nil, vferrors.ValidateVideoFile("", "")
	}
	if err := vferrors.ValidateVideoFile(video.Filename, video.ContentType); err != nil {
		return nil, err
	}
	body, contentType := newForm().field("name", name).file("video", video).encode()

	var p tree.Project
	err := c.send(ctx, request{method: http.MethodPost, path: "/projects", body: body, contentType: contentType}, &p)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteProject deletes a project and everything below it.
func (c *Client) DeleteProject(ctx context.Context, id string) error {
	if id == "" {
		return vferrors.New(vferrors.ErrCodeInvalidInput, "project id is required")
	}
	return c.send(ctx, request{method: http.MethodDelete, path: "/projects/" + escape(id)}, nil)
}

// AddNode posts a question. With an empty ParentID the question becomes the
// root question of the main video. The backend also uses this endpoint to
// replace an existing question.
func (c *Client) AddNode(ctx context.Context, projectID string, in NodeInput) (*tree.Node, error) {
	if projectID == "" {
		return nil, vferrors.New(vferrors.ErrCodeInvalidInput, "project id is required")
	}
	if err := vferrors.ValidateText("question", in.Question); err != nil {
		return nil, err
	}
	body, contentType := newForm().
		field("question", vferrors.NormalizeText(in.Question)).
		field("parent_id", in.ParentID).
		field("is_sub_question", strconv.FormatBool(in.IsSubQuestion)).
		encode()

	var n tree.Node
	err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/projects/" + escape(projectID) + "/nodes",
		body:        body,
		contentType: contentType,
	}, &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// AddAnswer posts an answer to the question node nodeID, with an optional
// answer video.
func (c *Client) AddAnswer(ctx context.Context, projectID, nodeID string, in AnswerInput) (*tree.Node, error) {
	if projectID == "" || nodeID == "" {
		return nil, vferrors.New(vferrors.ErrCodeInvalidInput, "project and node id are required")
	}
	if err := vferrors.ValidateText("text", in.Text); err != nil {
		return nil, err
	}
	if in.Video != nil {
		if err := vferrors.ValidateVideoFile(in.Video.Filename, in.Video.ContentType); err != nil {
			return nil, err
		}
	}
	body, contentType := newForm().field("text", vferrors.NormalizeText(in.Text)).file("video", in.Video).encode()

	var n tree.Node
	err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/projects/" + escape(projectID) + "/nodes/" + escape(nodeID) + "/answers",
		body:        body,
		contentType: contentType,
	}, &n)
	if err != nil {
		return nil, err
	}
	return &n, nil
}
