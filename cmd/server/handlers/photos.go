package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hungduong/loveanniversary/internal/logging"
	"github.com/hungduong/loveanniversary/internal/media"
	"github.com/hungduong/loveanniversary/internal/store"
	"github.com/hungduong/loveanniversary/internal/sync"
)

// PhotosHandler handles photo operations.
type PhotosHandler struct {
	adapter *sync.Adapter
	log     *logging.Logger
}

// NewPhotosHandler creates a PhotosHandler.
func NewPhotosHandler(adapter *sync.Adapter) *PhotosHandler {
	return &PhotosHandler{adapter: adapter, log: logging.Get().With("photos")}
}

// List handles GET /api/photos
func (h *PhotosHandler) List(w http.ResponseWriter, r *http.Request) {
	doc := h.adapter.Document()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"photos": doc.Photos,
		"total":  len(doc.Photos),
	})
}

// Create handles POST /api/photos. Inline data-URI uploads get a gallery
// thumbnail generated server-side; thumbnail failures keep the upload.
func (h *PhotosHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input store.PhotoInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if input.ThumbnailURL == "" && media.IsDataURI(input.URL) {
		thumb, err := media.ThumbnailDataURI(input.URL)
		if err != nil {
			h.log.Warn("thumbnail generation failed", logging.Fields{"error": err.Error()})
		} else {
			input.ThumbnailURL = thumb
		}
	}

	p, err := h.adapter.AddPhoto(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// Update handles PATCH /api/photos/{id}
func (h *PhotosHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch store.PhotoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.adapter.UpdatePhoto(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// Delete handles DELETE /api/photos/{id}
func (h *PhotosHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.adapter.DeletePhoto(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
