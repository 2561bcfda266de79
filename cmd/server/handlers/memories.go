package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hungduong/loveanniversary/internal/store"
	"github.com/hungduong/loveanniversary/internal/sync"
)

// MemoriesHandler handles memory operations.
type MemoriesHandler struct {
	adapter *sync.Adapter
}

// NewMemoriesHandler creates a MemoriesHandler.
func NewMemoriesHandler(adapter *sync.Adapter) *MemoriesHandler {
	return &MemoriesHandler{adapter: adapter}
}

// List handles GET /api/memories
func (h *MemoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	doc := h.adapter.Document()
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"memories": doc.Memories,
		"total":    len(doc.Memories),
	})
}

// Create handles POST /api/memories
func (h *MemoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var input store.MemoryInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.adapter.AddMemory(r.Context(), input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// Update handles PATCH /api/memories/{id}
func (h *MemoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch store.MemoryPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	m, err := h.adapter.UpdateMemory(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// Delete handles DELETE /api/memories/{id}
func (h *MemoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.adapter.DeleteMemory(r.Context(), r.PathValue("id")); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
