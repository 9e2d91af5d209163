package api

import (
	"context"
	"net/http"
)

// Stats summarizes the league state.
type Stats struct {
	LatestSlot    int    `json:"latest_slot"`
	Bots          int    `json:"bots"`
	Divisions     int    `json:"divisions"`
	Competitors   int    `json:"competitors"`
	ResultBackend string `json:"result_backend"`
}

// StatsProvider defines the interface for getting league statistics.
type StatsProvider interface {
	Stats(ctx context.Context) (Stats, error)
}

// StatsHandler handles stats requests.
type StatsHandler struct {
	statsProvider StatsProvider
}

// NewStatsHandler creates a new stats handler.
func NewStatsHandler(statsProvider StatsProvider) *StatsHandler {
	return &StatsHandler{statsProvider: statsProvider}
}

// HandleStats handles GET /stats requests.
func (h *StatsHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	stats, err := h.statsProvider.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap("api.get_stats", err))
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
