package api

import (
	"context"
	"errors"
)

// ErrNoCredentials is returned by a Credentials implementation that has no
// token to offer. Requests are then sent unauthenticated.
var ErrNoCredentials = errors.New("no credentials")

// Credentials supplies the bearer token for authenticated requests.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// StaticToken is a fixed bearer token, e.g. from VFCONSOLE_TOKEN.
type StaticToken string

// Token implements Credentials.
func (t StaticToken) Token(context.Context) (string, error) {
	if t == "" {
		return "", ErrNoCredentials
	}
	return string(t), nil
}

// CredentialsFunc adapts a function to Credentials.
type CredentialsFunc func(ctx context.Context) (string, error)

// Token implements Credentials.
func (f CredentialsFunc) Token(ctx context.Context) (string, error) { return f(ctx) }
