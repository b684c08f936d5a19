package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// GetMedia serves blob bytes for URIs handed out by the blob store.
func (h *Handler) GetMedia(w http.ResponseWriter, r *http.Request) {
	uri := h.blobBaseURL + chi.URLParam(r, "*")
	data, err := h.blobs.Retrieve(r.Context(), uri)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", http.DetectContentType(data))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
