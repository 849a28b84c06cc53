package api

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/archview/pkg/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps an error code to an HTTP status.
func statusFor(err error) int {
	switch {
	case errs.IsInvalid(err):
		return http.StatusBadRequest
	case errs.IsNotFound(err):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// writeError reports err to the client. Server-side failures are logged
// and answered with fallback instead of the internal message.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	code := string(errs.GetCode(err))
	msg := errs.UserMessage(err)

	if status == http.StatusInternalServerError {
		s.logger.Error(fallback, "error", err, "path", r.URL.Path, "request_id", RequestIDFromContext(r.Context()))
		msg = fallback
		if code == "" {
			code = string(errs.ErrCodeInternal)
		}
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: code})
}
