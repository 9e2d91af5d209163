package api

import (
	"context"
	"net/http"

	"github.com/okian/autoleague/internal/domain/types"
)

// LiveDependencies exposes the contest currently being resolved.
type LiveDependencies interface {
	Live(ctx context.Context) (types.LiveState, bool)
}

// LiveHandler handles live-state requests.
type LiveHandler struct {
	deps LiveDependencies
}

// NewLiveHandler creates a new live handler.
func NewLiveHandler(deps LiveDependencies) *LiveHandler {
	return &LiveHandler{deps: deps}
}

// HandleGetLive handles GET /live; 204 until something was published.
func (h *LiveHandler) HandleGetLive(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	state, ok := h.deps.Live(r.Context())
	if !ok {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, state)
}
