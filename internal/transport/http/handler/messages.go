package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leanderkretschmer/lotify/internal/application/message"
	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/leanderkretschmer/lotify/internal/pkg/validate"
)

// apiKeyHeader carries the sender's credential.
const apiKeyHeader = "X-Api-Key"

// MessageHandler handles send and pull-retrieval endpoints.
type MessageHandler struct {
	svc message.Service
}

func NewMessageHandler(svc message.Service) *MessageHandler { return &MessageHandler{svc: svc} }

func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req domain.SendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.svc.Send(r.Context(), req, r.Header.Get(apiKeyHeader)); err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Status: "message_queued"})
}

// List returns every stored message for the device, delivered or not.
// Retrieval does not flip the delivered flag; only the live delivery loop does.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	msgs, err := h.svc.ListForPublicKey(r.Context(), chi.URLParam(r, "publicKey"))
	if err != nil {
		httpError(w, err)
		return
	}
	views := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		views = append(views, messageView{
			Header:    m.Header,
			Content:   m.Content,
			BlobID:    m.BlobID,
			Delivered: m.Delivered,
		})
	}
	writeJSON(w, http.StatusOK, map[string][]messageView{"messages": views})
}
