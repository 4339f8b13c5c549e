package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/Veraticus/bean-scene/internal/validation"
)

// maxBodyBytes caps request bodies.
const maxBodyBytes = 64 << 10

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Error     string   `json:"error"`
	Details   []string `json:"details,omitempty"`
	RequestID string   `json:"request_id,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Debug("failed to write JSON response", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, status int, message string, details ...string) {
	respondJSON(w, status, ErrorResponse{
		Error:     message,
		Details:   details,
		RequestID: RequestIDFrom(r.Context()),
	})
}

// decode reads a JSON body into v and validates it. It writes the error
// response itself and reports whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Request body must be valid JSON.", err.Error())
		return false
	}

	if err := validation.Struct(v); err != nil {
		s.respondError(w, r, http.StatusBadRequest, "Request failed validation.", fieldMessages(err)...)
		return false
	}
	return true
}

func fieldMessages(err error) []string {
	var verr *validation.Error
	if !errors.As(err, &verr) {
		return []string{err.Error()}
	}
	out := make([]string, len(verr.Fields))
	for i, f := range verr.Fields {
		out[i] = f.Message
	}
	return out
}
