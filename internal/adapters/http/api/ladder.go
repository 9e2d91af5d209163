package api

import (
	"context"
	"net/http"
	"strconv"
)

// LadderDependencies defines the interface for ladder reads.
type LadderDependencies interface {
	Standings(ctx context.Context) ([]Entry, error)
}

// LadderHandler handles ladder requests.
type LadderHandler struct {
	deps LadderDependencies
}

// NewLadderHandler creates a new ladder handler.
func NewLadderHandler(deps LadderDependencies) *LadderHandler {
	return &LadderHandler{deps: deps}
}

// HandleGetLadder handles GET /ladder[?limit=N]; without a limit the whole
// ladder is returned.
func (h *LadderHandler) HandleGetLadder(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_ladder"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}
	entries, err := h.deps.Standings(r.Context())
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}
	writeJSON(w, http.StatusOK, entries)
}
