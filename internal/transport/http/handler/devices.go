package handler

import (
	"encoding/json"
	"net/http"

	"github.com/leanderkretschmer/lotify/internal/application/device"
	"github.com/leanderkretschmer/lotify/internal/domain"
	"github.com/leanderkretschmer/lotify/internal/pkg/validate"
)

// DeviceHandler handles device registration.
type DeviceHandler struct {
	svc device.Service
}

func NewDeviceHandler(svc device.Service) *DeviceHandler { return &DeviceHandler{svc: svc} }

func (h *DeviceHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	result, err := h.svc.Register(r.Context(), req.PublicKey)
	if err != nil {
		httpError(w, err)
		return
	}
	status := "registered"
	if !result.Created {
		status = "already_registered"
	}
	writeJSON(w, http.StatusOK, RegisterEnvelope{Status: status, APIKey: result.APIKey})
}
