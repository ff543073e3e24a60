package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/charmbracelet/log"

	vferrors "github.com/videofonik/vfconsole/pkg/errors"
	"github.com/videofonik/vfconsole/pkg/httputil"
	"github.com/videofonik/vfconsole/pkg/session"
	"github.com/videofonik/vfconsole/pkg/shell"
)

// errorResponse is the body of every error reply.
type errorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError writes err with the status its code maps to. Server-side
// failures are logged; client mistakes are not.
func respondError(w http.ResponseWriter, r *http.Request, logger *log.Logger, err error) {
	status, body := classify(err)
	var rl *vferrors.RateLimitedError
	if errors.As(err, &rl) && rl.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(rl.RetryAfter))
	}
	body.RequestID = w.Header().Get(httputil.RequestIDHeader)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "err", err)
	}
	respondJSON(w, status, body)
}

func classify(err error) (int, errorResponse) {
	var fe *vferrors.FieldError
	if errors.As(err, &fe) {
		return http.StatusUnprocessableEntity, errorResponse{
			Error: string(vferrors.ErrCodeInvalidInput), Message: fe.Message, Field: fe.Field,
		}
	}

	body := errorResponse{Message: vferrors.UserMessage(err)}
	switch {
	case errors.Is(err, shell.ErrUnknownNode):
		body.Error = string(vferrors.ErrCodeNotFound)
		return http.StatusNotFound, body
	case errors.Is(err, shell.ErrUnsupported):
		body.Error = string(vferrors.ErrCodeUnsupported)
		return http.StatusBadRequest, body
	case errors.Is(err, shell.ErrNotLoaded):
		body.Error = string(vferrors.ErrCodeConflict)
		return http.StatusConflict, body
	case errors.As(err, new(*vferrors.RateLimitedError)):
		body.Error = string(vferrors.ErrCodeRateLimited)
		return http.StatusTooManyRequests, body
	case errors.Is(err, session.ErrExpired):
		body.Error = string(vferrors.ErrCodeSessionExpired)
		return http.StatusUnauthorized, body
	}

	code := vferrors.GetCode(err)
	if code == "" {
		code = vferrors.ErrCodeInternal
		body.Message = "internal error"
	}
	body.Error = string(code)
	return codeStatus(code), body
}

// codeStatus maps an error code to the status the preview server replies
// with. Backend network trouble is reported as a bad gateway.
func codeStatus(code vferrors.Code) int {
	switch code {
	case vferrors.ErrCodeInvalidInput, vferrors.ErrCodeInvalidFormat, vferrors.ErrCodeUnsupported:
		return http.StatusBadRequest
	case vferrors.ErrCodeNotFound, vferrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case vferrors.ErrCodeConflict:
		return http.StatusConflict
	case vferrors.ErrCodeUnauthorized, vferrors.ErrCodeSessionExpired:
		return http.StatusUnauthorized
	case vferrors.ErrCodeForbidden:
		return http.StatusForbidden
	case vferrors.ErrCodeRateLimited:
		return http.StatusTooManyRequests
	case vferrors.ErrCodeNetwork, vferrors.ErrCodeInvalidTree:
		return http.StatusBadGateway
	case vferrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
