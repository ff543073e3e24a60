// Package server implements the local preview server behind "vfconsole serve".
//
// The server signs users in against the backend, keeps one presentation
// shell per session and project, and exposes the laid-out tree as flow-graph
// JSON, DOT and rendered diagrams. Node commands posted to it go through the
// same dialogs as the terminal shell.
//
// Routes:
//
//	GET  /healthz
//	POST /auth/login                        email, password (form or JSON)
//	POST /auth/logout
//	GET  /auth/me
//	GET  /projects
//	GET  /projects/{projectID}              HTML preview
//	GET  /projects/{projectID}/layout       flow-graph JSON
//	GET  /projects/{projectID}/layout.dot
//	GET  /projects/{projectID}/render/{format}
//	POST /projects/{projectID}/refresh
//	GET  /projects/{projectID}/nodes/{nodeID}/dialog?action=add-answer
//	POST /projects/{projectID}/commands     node_id, action, question | text, video
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/videofonik/vfconsole/pkg/api"
	"github.com/videofonik/vfconsole/pkg/cache"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/pipeline"
	"github.com/videofonik/vfconsole/pkg/session"
	"github.com/videofonik/vfconsole/pkg/shell"
)

// SessionCookie names the cookie holding the session id.
const SessionCookie = "vfconsole_session"

// localSession is the session id used for requests served with the
// fallback credentials.
const localSession = "local"

// shellSweepInterval is how often shells of expired sessions are released.
const shellSweepInterval = time.Minute

// Config configures a Server.
type Config struct {
	// APIURL is the backend base URL.
	APIURL string

	// ClientOptions are applied to every backend client the server creates.
	ClientOptions []api.Option

	// Sessions stores browser logins. Required.
	Sessions   session.Store
	SessionTTL time.Duration

	// Fallback, when set, authenticates requests that carry no session
	// cookie. The CLI passes its own login here.
	Fallback api.Credentials

	// Cache holds rendered artifacts. nil disables caching.
	Cache cache.Cache

	// Pipeline is the template for render options (spacing, TTL).
	Pipeline pipeline.Options

	AllowedOrigins []string
	Logger         *log.Logger
}

// Server is the preview server.
type Server struct {
	cfg    Config
	logger *log.Logger
	cache  cache.Cache

	mu     sync.Mutex
	shells map[string]*shell.Shell // by session id + "/" + project id
}

// New returns a server. It does not start listening.
func New(cfg Config) (*Server, error) {
	if cfg.Sessions == nil {
		return nil, errors.New("server: session store is required")
	}
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = session.DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	c := cfg.Cache
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Server{
		cfg:    cfg,
		logger: logger,
		cache:  c,
		shells: make(map[string]*shell.Shell),
	}, nil
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully. ready, if non-nil, receives the bound address.
func (s *Server) ListenAndServe(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(ln) }()
	go s.sweepShellsEvery(ctx, shellSweepInterval)
	if ready != nil {
		ready(ln.Addr())
	}
	s.logger.Info("preview server listening", "addr", ln.Addr().String(), "api", s.cfg.APIURL)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("preview server stopped")
	return nil
}

// Close releases the cache.
func (s *Server) Close() error {
	return s.cache.Close()
}

// =============================================================================
// Per-session state
// =============================================================================

// client returns a backend client authenticated with creds.
func (s *Server) client(creds api.Credentials) *api.Client {
	opts := append([]api.Option{api.WithCredentials(creds)}, s.cfg.ClientOptions...)
	return api.NewClient(s.cfg.APIURL, opts...)
}

// shell returns the loaded shell of a project, creating and refreshing it
// on first use.
func (s *Server) shell(ctx context.Context, id identity, projectID string) (*shell.Shell, shell.State, error) {
	key := id.sessionID + "/" + projectID

	s.mu.Lock()
	sh, ok := s.shells[key]
	if !ok {
		opts := s.cfg.Pipeline
		opts.SetLayoutDefaults()
		sh = shell.New(s.client(id.creds), projectID,
			shell.WithLogger(s.logger.With("project", projectID)),
			shell.WithLayoutOptions(layout.WithSpacing(opts.HorizontalSpacing, opts.VerticalSpacing)))
		s.shells[key] = sh
	}
	s.mu.Unlock()

	if st := sh.State(); st.Loaded() {
		return sh, st, nil
	}
	st, err := sh.Refresh(ctx)
	if errors.Is(err, shell.ErrStale) {
		err = nil
	}
	if err != nil {
		return nil, st, err
	}
	return sh, st, nil
}

// dropShells forgets every shell of a session.
func (s *Server) dropShells(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.shells {
		if strings.HasPrefix(key, sessionID+"/") {
			delete(s.shells, key)
		}
	}
}

// sweepShells drops the shells of sessions that are no longer in the store
// and returns how many sessions were released.
func (s *Server) sweepShells(ctx context.Context) int {
	s.mu.Lock()
	sids := make(map[string]struct{})
	for key := range s.shells {
		sid, _, _ := strings.Cut(key, "/")
		if sid != localSession {
			sids[sid] = struct{}{}
		}
	}
	s.mu.Unlock()

	released := 0
	for sid := range sids {
		sess, err := s.cfg.Sessions.Get(ctx, sid)
		if err != nil {
			s.logger.Warn("shell sweep: load session", "err", err)
			continue
		}
		if sess == nil {
			s.dropShells(sid)
			released++
		}
	}
	return released
}

func (s *Server) sweepShellsEvery(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n := s.sweepShells(ctx); n > 0 {
				s.logger.Debug("released expired sessions", "count", n)
			}
		}
	}
}

// runner returns a pipeline runner whose cache entries are scoped to the
// user.
func (s *Server) runner(id identity) *pipeline.Runner {
	keyer := cache.NewScopedKeyer(nil, "user:"+id.userID+":")
	return pipeline.NewRunner(s.client(id.creds), s.cache, keyer, s.logger)
}
