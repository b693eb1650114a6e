package handler

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/leanderkretschmer/lotify/internal/application/blob"
)

// BlobHandler handles attachment upload and retrieval.
type BlobHandler struct {
	svc blob.Service
}

func NewBlobHandler(svc blob.Service) *BlobHandler { return &BlobHandler{svc: svc} }

func (h *BlobHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}
	f, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing file field")
		return
	}
	defer f.Close()

	blobID, err := h.svc.Upload(r.Context(), r.Header.Get(apiKeyHeader), blob.UploadInput{
		Reader:   f,
		Filename: header.Filename,
		Size:     header.Size,
	})
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"blob_id": blobID})
}

func (h *BlobHandler) Download(w http.ResponseWriter, r *http.Request) {
	rc, contentType, err := h.svc.Download(r.Context(), chi.URLParam(r, "blobID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "blob not found")
		return
	}
	defer rc.Close()
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, rc)
}
