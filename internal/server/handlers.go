package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/videofonik/vfconsole/pkg/api"
	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/layout"
	"github.com/videofonik/vfconsole/pkg/render"
	"github.com/videofonik/vfconsole/pkg/render/nodelink"
	"github.com/videofonik/vfconsole/pkg/session"
	"github.com/videofonik/vfconsole/pkg/shell"
)

// maxUploadSize bounds multipart command bodies held in memory; larger
// videos spill to temporary files.
const maxUploadSize = 32 << 20

// =============================================================================
// Auth
// =============================================================================

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User      *api.User `json:"user"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if isJSON(r) {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, r, s.logger, vferrors.Wrap(vferrors.ErrCodeInvalidFormat, err, "decode login request"))
			return
		}
	} else {
		req.Email, req.Password = r.FormValue("email"), r.FormValue("password")
	}
	req.Email = strings.TrimSpace(req.Email)

	ctx := r.Context()
	tok, err := s.client(nil).Login(ctx, req.Email, req.Password)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	user, err := s.client(api.StaticToken(tok.AccessToken)).CurrentUser(ctx)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	sess, err := session.New(tok.AccessToken, user, s.cfg.SessionTTL)
	if err != nil {
		respondError(w, r, s.logger, vferrors.Wrap(vferrors.ErrCodeInternal, err, "create session"))
		return
	}
	sess.APIURL = s.cfg.APIURL
	if err := s.cfg.Sessions.Set(ctx, sess); err != nil {
		respondError(w, r, s.logger, vferrors.Wrap(vferrors.ErrCodeInternal, err, "store session"))
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    sess.ID,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info("signed in", "user", user.Email)
	respondJSON(w, http.StatusOK, loginResponse{User: user, ExpiresAt: sess.ExpiresAt})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if sid := sessionID(r); sid != "" {
		if err := s.cfg.Sessions.Delete(r.Context(), sid); err != nil {
			respondError(w, r, s.logger, vferrors.Wrap(vferrors.ErrCodeInternal, err, "delete session"))
			return
		}
		s.dropShells(sid)
	}
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	user, err := s.client(id.creds).CurrentUser(r.Context())
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// =============================================================================
// Projects
// =============================================================================

type projectSummary struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	MainVideoURL   string   `json:"main_video_url"`
	Nodes          int      `json:"nodes"`
	AllowedDomains []string `json:"allowed_domains"`
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	id, _ := identityFrom(r.Context())
	projects, err := s.client(id.creds).ListProjects(r.Context())
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		sum := projectSummary{ID: p.ID, Name: p.Name, MainVideoURL: p.MainVideoURL, AllowedDomains: p.AllowedDomains}
		if root := p.Root(); root != nil {
			sum.Nodes = root.Count()
		}
		out = append(out, sum)
	}
	respondJSON(w, http.StatusOK, out)
}

// loaded returns the caller's shell for the project in the URL.
func (s *Server) loaded(r *http.Request) (*shell.Shell, shell.State, identity, error) {
	id, _ := identityFrom(r.Context())
	sh, st, err := s.shell(r.Context(), id, chi.URLParam(r, "projectID"))
	return sh, st, id, err
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	_, st, _, err := s.loaded(r)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	respondLayout(w, st)
}

func respondLayout(w http.ResponseWriter, st shell.State) {
	w.Header().Set("X-Layout-Seq", strconv.FormatUint(st.Seq, 10))
	respondJSON(w, http.StatusOK, st.Graph())
}

func (s *Server) getDOT(w http.ResponseWriter, r *http.Request) {
	_, st, _, err := s.loaded(r)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	dot := nodelink.ToDOT(st.Graph(), nodelink.Options{Detailed: flag(r, "detailed")})
	w.Header().Set("Content-Type", render.FormatDOT.ContentType())
	w.Write([]byte(dot))
}

func (s *Server) renderDiagram(w http.ResponseWriter, r *http.Request) {
	f, err := render.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		respondError(w, r, s.logger, vferrors.Wrap(vferrors.ErrCodeInvalidInput, err, "format"))
		return
	}
	if f.NeedsRSVG() && !render.RSVGAvailable() {
		respondError(w, r, s.logger, vferrors.New(vferrors.ErrCodeUnsupported, "%s output needs rsvg-convert on the server", f))
		return
	}

	_, st, id, err := s.loaded(r)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	opts := s.cfg.Pipeline
	opts.Formats = []render.Format{f}
	opts.Detailed = flag(r, "detailed")
	opts.Refresh = flag(r, "refresh")
	if v := r.URL.Query().Get("scale"); v != "" {
		if opts.PNGScale, err = strconv.ParseFloat(v, 64); err != nil || opts.PNGScale <= 0 {
			respondError(w, r, s.logger, &vferrors.FieldError{Field: "scale", Message: "must be a positive number"})
			return
		}
	}

	artifacts, hit, err := s.runner(id).RenderWithCacheInfo(r.Context(), st.Graph(), opts)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", f.ContentType())
	w.Header().Set("X-Cache", cacheStatus(hit))
	w.Write(artifacts[f])
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	sh, _, _, err := s.loaded(r)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	st, err := sh.Refresh(r.Context())
	if err != nil && !errors.Is(err, shell.ErrStale) {
		respondError(w, r, s.logger, err)
		return
	}
	respondLayout(w, st)
}

// =============================================================================
// Commands
// =============================================================================

type dialogResponse struct {
	Kind      string `json:"kind"`
	Action    string `json:"action"`
	Title     string `json:"title"`
	TargetID  string `json:"target_id,omitempty"`
	BackendID string `json:"backend_id,omitempty"`
	Question  string `json:"question,omitempty"`
	Text      string `json:"text,omitempty"`
	Edit      bool   `json:"edit"`
}

func newDialogResponse(d shell.Dialog) dialogResponse {
	return dialogResponse{
		Kind:      d.Kind.String(),
		Action:    d.Action.String(),
		Title:     d.Title(),
		TargetID:  d.TargetID,
		BackendID: d.BackendID,
		Question:  d.Question,
		Text:      d.Text,
		Edit:      d.IsEdit(),
	}
}

// dispatch resolves an action on a visual node to its dialog. The node's
// own command list is used so the placeholder of an empty project maps to
// the root question.
func dispatch(sh *shell.Shell, nodeID, action string) (shell.Dialog, error) {
	a, ok := layout.ParseAction(action)
	if !ok {
		return shell.Dialog{}, &vferrors.FieldError{Field: "action", Message: "unknown action " + strconv.Quote(action)}
	}
	n, ok := sh.Node(nodeID)
	if !ok {
		return shell.Dialog{}, shell.ErrUnknownNode
	}
	for _, cmd := range n.Commands() {
		if cmd.Action == a {
			return sh.Dispatch(cmd)
		}
	}
	return shell.Dialog{}, shell.ErrUnsupported
}

func (s *Server) dialog(w http.ResponseWriter, r *http.Request) {
	sh, _, _, err := s.loaded(r)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	d, err := dispatch(sh, chi.URLParam(r, "nodeID"), r.URL.Query().Get("action"))
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	respondJSON(w, http.StatusOK, newDialogResponse(d))
}

// submitCommand applies a dialog. It accepts a urlencoded or multipart form
// with node_id, action and question or text; answers may attach a "video"
// file. The reply is the refreshed layout.
func (s *Server) submitCommand(w http.ResponseWriter, r *http.Request) {
	sh, _, _, err := s.loaded(r)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	if err := parseForm(r); err != nil {
		respondError(w, r, s.logger, vferrors.Wrap(vferrors.ErrCodeInvalidFormat, err, "parse form"))
		return
	}

	d, err := dispatch(sh, r.FormValue("node_id"), r.FormValue("action"))
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}

	in := shell.Input{Question: r.FormValue("question"), Text: r.FormValue("text")}
	if r.MultipartForm != nil {
		if file, hdr, err := r.FormFile("video"); err == nil {
			defer file.Close()
			ct := hdr.Header.Get("Content-Type")
			if ct == "application/octet-stream" {
				ct = "" // derived from the file name
			}
			in.Video = &api.Upload{Filename: hdr.Filename, ContentType: ct, Body: file}
		}
	}

	st, err := sh.Submit(r.Context(), d, in)
	if err != nil {
		respondError(w, r, s.logger, err)
		return
	}
	respondLayout(w, st)
}

// =============================================================================
// Helpers
// =============================================================================

func isJSON(r *http.Request) bool {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return ct == "application/json"
}

func parseForm(r *http.Request) error {
	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "multipart/form-data" {
		return r.ParseMultipartForm(maxUploadSize)
	}
	return r.ParseForm()
}

// flag reads a boolean query parameter; "1", "true" and a bare key count.
func flag(r *http.Request, name string) bool {
	q := r.URL.Query()
	if !q.Has(name) {
		return false
	}
	v := q.Get(name)
	return v == "" || v == "1" || strings.EqualFold(v, "true")
}
