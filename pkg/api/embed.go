package api

import (
	"context"
	"net/http"
	"strings"

	vferrors "github.com/videofonik/vfconsole/pkg/errors"
)

// GetEmbedCode returns the widget snippet and the allowed domains.
func (c *Client) GetEmbedCode(ctx context.Context, projectID string) (*EmbedInfo, error) {
	if projectID == "" {
		return nil, vferrors.New(vferrors.ErrCodeInvalidInput, "project id is required")
	}
	var info EmbedInfo
	if err := c.get(ctx, "/projects/"+escape(projectID)+"/embed", &info); err != nil {
		return nil, err
	}
	return &info, nil
}

// AddAllowedDomain allows the widget to be embedded on domain.
func (c *Client) AddAllowedDomain(ctx context.Context, projectID, domain string) error {
	domain = strings.TrimSpace(domain)
	if err := vferrors.ValidateDomain(domain); err != nil {
		return err
	}
	body, contentType := newForm().field("domain", domain).encode()
	return c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/projects/" + escape(projectID) + "/domains",
		body:        body,
		contentType: contentType,
	}, nil)
}

// RemoveAllowedDomain revokes domain.
func (c *Client) RemoveAllowedDomain(ctx context.Context, projectID, domain string) error {
	if domain == "" {
		return vferrors.ValidateDomain(domain)
	}
	return c.send(ctx, request{
		method: http.MethodDelete,
		path:   "/projects/" + escape(projectID) + "/domains/" + escape(domain),
	}, nil)
}
