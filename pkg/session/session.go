// Package session stores the credentials of logged-in console users.
//
// This package defines the [Store] interface with implementations for
// different deployments:
//   - [FileStore]: JSON files under ~/.config/vfconsole/sessions (CLI)
//   - [RedisStore]: shared storage for preview servers running on several
//     instances
//
// # Architecture
//
// A [Session] wraps the backend access token together with the user it
// belongs to and an expiry. A Session satisfies [api.Credentials], so it can
// be handed straight to the API client:
//
//	sess, err := session.New(tok.AccessToken, user, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//	client := api.NewClient(baseURL, api.WithCredentials(sess))
//
// [CLIStore] keeps the single session of the command line user and loads it
// lazily on every request, so "vfconsole auth logout" in one terminal takes
// effect in another.
//
// [api.Credentials]: github.com/videofonik/vfconsole/pkg/api.Credentials
package session

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"time"

	"github.com/videofonik/vfconsole/pkg/api"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("expired")
)

// Session stores user session data.
type Session struct {
	ID          string    `json:"id"`
	AccessToken string    `json:"access_token"`
	User        *api.User `json:"user,omitempty"`
	APIURL      string    `json:"api_url,omitempty"` // backend the token was issued by
	ExpiresAt   time.Time `json:"expires_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// UserID returns the backend user id, or "" when unknown.
func (s *Session) UserID() string {
	if s == nil || s.User == nil {
		return ""
	}
	return s.User.ID
}

// Token implements api.Credentials.
func (s *Session) Token(context.Context) (string, error) {
	if s == nil || s.AccessToken == "" {
		return "", api.ErrNoCredentials
	}
	if s.IsExpired() {
		return "", ErrExpired
	}
	return s.AccessToken, nil
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// Cleanup removes expired sessions (may be a no-op).
	Cleanup(ctx context.Context) error
}

// DefaultTTL is the default session duration.
const DefaultTTL = 24 * time.Hour

// GenerateID creates a cryptographically secure random session ID.
func GenerateID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// New creates a new session with the given token and user.
func New(accessToken string, user *api.User, ttl time.Duration) (*Session, error) {
	id, err := GenerateID()
	if err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now()
	return &Session{
		ID:          id,
		AccessToken: accessToken,
		User:        user,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}, nil
}

var _ api.Credentials = (*Session)(nil)
