package handlers

import (
	"net/http"

	"github.com/hungduong/loveanniversary/internal/sync"
)

// SyncHandler exposes the sync adapter's status and retry affordance.
type SyncHandler struct {
	adapter *sync.Adapter
}

// NewSyncHandler creates a SyncHandler.
func NewSyncHandler(adapter *sync.Adapter) *SyncHandler {
	return &SyncHandler{adapter: adapter}
}

// Status handles GET /api/sync/status
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.adapter.Status())
}

// Retry handles POST /api/sync/retry. It blocks through the reconnection
// attempt and returns the resulting status.
func (h *SyncHandler) Retry(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.adapter.Retry(r.Context()))
}
