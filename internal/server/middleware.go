package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/videofonik/vfconsole/pkg/api"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/httputil"
	"github.com/videofonik/vfconsole/pkg/session"
)

// requestID propagates the request id assigned by chi to outgoing backend
// calls and echoes it in the response.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(httputil.RequestIDHeader)
		if id == "" {
			id = chimiddleware.GetReqID(r.Context())
		}
		if id == "" {
			id = httputil.NewRequestID()
		}
		w.Header().Set(httputil.RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(httputil.WithRequestID(r.Context(), id)))
	})
}

// requestLogger logs one line per request.
func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			level := log.InfoLevel
			if status >= http.StatusInternalServerError {
				level = log.ErrorLevel
			}
			logger.Log(level, "http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", httputil.RequestID(r.Context()))
		})
	}
}

// =============================================================================
// Authentication
// =============================================================================

// identity is the authenticated caller of a request.
type identity struct {
	sessionID string
	userID    string
	creds     api.Credentials
}

type identityKey struct{}

func identityFrom(ctx context.Context) (identity, bool) {
	id, ok := ctx.Value(identityKey{}).(identity)
	return id, ok
}

// authenticate resolves the session cookie, or a bearer session id, to an
// identity. Without either, the fallback credentials are used if configured.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, err := s.identify(r)
		if err != nil {
			respondError(w, r, s.logger, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), identityKey{}, id)))
	})
}

func (s *Server) identify(r *http.Request) (identity, error) {
	sid := sessionID(r)
	if sid == "" {
		if s.cfg.Fallback == nil {
			return identity{}, vferrors.New(vferrors.ErrCodeUnauthorized, "sign in first")
		}
		return identity{sessionID: localSession, userID: localSession, creds: s.cfg.Fallback}, nil
	}

	sess, err := s.cfg.Sessions.Get(r.Context(), sid)
	if err != nil {
		return identity{}, vferrors.Wrap(vferrors.ErrCodeInternal, err, "load session")
	}
	if sess == nil {
		s.dropShells(sid)
		return identity{}, vferrors.New(vferrors.ErrCodeSessionExpired, "session expired, sign in again")
	}
	uid := sess.UserID()
	if uid == "" {
		uid = sess.ID
	}
	return identity{sessionID: sess.ID, userID: uid, creds: sess}, nil
}

// sessionID reads the session id from the cookie or an
// "Authorization: Session <id>" header.
func sessionID(r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	if v, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Session "); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

var _ api.Credentials = (*session.Session)(nil)
