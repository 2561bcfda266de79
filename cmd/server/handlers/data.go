package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/hungduong/loveanniversary/internal/sync"
)

// maxImportSize caps uploaded backup payloads.
const maxImportSize = 32 << 20 // 32 MiB

// DataHandler handles export, import, reset and the theme preference.
type DataHandler struct {
	adapter *sync.Adapter
}

// NewDataHandler creates a DataHandler.
func NewDataHandler(adapter *sync.Adapter) *DataHandler {
	return &DataHandler{adapter: adapter}
}

// Export handles GET /api/export, serving the document as a download.
func (h *DataHandler) Export(w http.ResponseWriter, r *http.Request) {
	filename, data, err := h.adapter.Export()
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Write(data)
}

// Import handles POST /api/import with the exported JSON as the body.
func (h *DataHandler) Import(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxImportSize))
	if err != nil {
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}

	if err := h.adapter.Import(r.Context(), raw); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Reset handles POST /api/reset
func (h *DataHandler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.adapter.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetTheme handles GET /api/theme
func (h *DataHandler) GetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"theme": h.adapter.Theme()})
}

// SetTheme handles PUT /api/theme
func (h *DataHandler) SetTheme(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Theme == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.adapter.SetTheme(body.Theme); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
