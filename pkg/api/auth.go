package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/url"

	vferrors "github.com/videofonik/vfconsole/pkg/errors"
)

// Login exchanges an email and password for an access token. The backend
// expects an OAuth2 password form, so the email travels as "username".
func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	if err := vferrors.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := vferrors.ValidatePassword(password); err != nil {
		return nil, err
	}
	body, contentType := urlencoded(url.Values{
		"username": {email},
		"password": {password},
	})

	var tok Token
	err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/login",
		body:        body,
		contentType: contentType,
		anonymous:   true,
	}, &tok)
	if err != nil {
		return nil, err
	}
	if tok.AccessToken == "" {
		return nil, vferrors.New(vferrors.ErrCodeInvalidFormat, "login response has no access token")
	}
	return &tok, nil
}

// Register creates an account. It does not log the user in.
func (c *Client) Register(ctx context.Context, reg Registration) (*User, error) {
	if err := vferrors.ValidateEmail(reg.Email); err != nil {
		return nil, err
	}
	if err := vferrors.ValidatePassword(reg.Password); err != nil {
		return nil, err
	}
	if err := vferrors.ValidateText("full_name", reg.FullName); err != nil {
		return nil, err
	}
	if err := vferrors.ValidateText("registration_code", reg.RegistrationCode); err != nil {
		return nil, err
	}
	body, err := json.Marshal(reg)
	if err != nil {
		return nil, err
	}

	var u User
	err = c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/auth/register",
		body:        bytes.NewReader(body),
		contentType: "application/json",
		anonymous:   true,
	}, &u)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CurrentUser returns the user the credentials belong to.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.get(ctx, "/auth/me", &u); err != nil {
		return nil, err
	}
	return &u, nil
}
