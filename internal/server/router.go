package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/videofonik/vfconsole/pkg/httputil"
)

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(requestID)
	r.Use(requestLogger(s.logger))
	r.Use(chimiddleware.Recoverer)

	if len(s.cfg.AllowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", httputil.RequestIDHeader},
			ExposedHeaders:   []string{httputil.RequestIDHeader, "X-Cache"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	r.Get("/healthz", s.healthCheck)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.login)
		r.Post("/logout", s.logout)
		r.With(s.authenticate).Get("/me", s.me)
	})

	r.Route("/projects", func(r chi.Router) {
		r.Use(s.authenticate)
		r.Get("/", s.listProjects)

		r.Route("/{projectID}", func(r chi.Router) {
			r.Get("/", s.projectPage)
			r.Get("/layout", s.getLayout)
			r.Get("/layout.dot", s.getDOT)
			r.Get("/render/{format}", s.renderDiagram)
			r.Post("/refresh", s.refresh)
			r.Get("/nodes/{nodeID}/dialog", s.dialog)
			r.Post("/commands", s.submitCommand)
		})
	})

	return r
}

func (s *Server) healthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
