package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/hungduong/loveanniversary/internal/ident"
	"github.com/hungduong/loveanniversary/internal/store"
	"github.com/hungduong/loveanniversary/internal/sync"
)

// CoupleHandler handles couple info, stats and the session bootstrap.
type CoupleHandler struct {
	adapter  *sync.Adapter
	resolver *ident.Resolver
}

// NewCoupleHandler creates a CoupleHandler.
func NewCoupleHandler(adapter *sync.Adapter, resolver *ident.Resolver) *CoupleHandler {
	return &CoupleHandler{adapter: adapter, resolver: resolver}
}

// Get handles GET /api/couple
func (h *CoupleHandler) Get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.adapter.Document().CoupleInfo)
}

// Update handles PATCH /api/couple
func (h *CoupleHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch store.CoupleInfoPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	info, err := h.adapter.UpdateCoupleInfo(r.Context(), patch)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}

// Stats handles GET /api/stats
func (h *CoupleHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.adapter.Stats())
}

// Session handles GET /api/session. The coupleId query parameter (set when
// the page was opened through a partner's share link) takes precedence over
// the persisted identifier; generated reports a brand-new identifier so the
// UI can show the one-time share prompt.
func (h *CoupleHandler) Session(w http.ResponseWriter, r *http.Request) {
	coupleID, generated, err := h.resolver.Resolve(r.URL.Query().Get("coupleId"))
	if err != nil {
		writeError(w, err)
		return
	}

	base := "http://" + r.Host + "/"
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"coupleId":  coupleID,
		"generated": generated,
		"shareLink": ident.ShareLink(base, coupleID),
	})
}
