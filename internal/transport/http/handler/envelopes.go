package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/leanderkretschmer/lotify/internal/domain"
)

// MessageEnvelope is the generic response wrapper.
type MessageEnvelope struct {
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// RegisterEnvelope wraps registration responses.
type RegisterEnvelope struct {
	Status string `json:"status"`
	APIKey string `json:"api_key"`
}

// messageView is the client-facing shape of a queued message.
type messageView struct {
	Header    string  `json:"header"`
	Content   string  `json:"content"`
	BlobID    *string `json:"blob_id"`
	Delivered bool    `json:"delivered"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, MessageEnvelope{Error: msg})
}

// httpError maps domain sentinel errors to HTTP status codes so clients can
// tell "fix credentials" from "retry later" from "nothing registered".
func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotRegistered), errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInvalidCredential), errors.Is(err, domain.ErrUnauthorized):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrDeviceDeactivated):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, domain.ErrRateLimited):
		writeError(w, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, domain.ErrBadRequest):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
