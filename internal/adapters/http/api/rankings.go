package api

import (
	"context"
	"net/http"

	"github.com/okian/racecurve/internal/domain/model"
)

// RankingDependencies defines the per-finisher reads of one dataset.
type RankingDependencies interface {
	Winners(ctx context.Context, dataset string) (model.Winners, error)
	Rankings(ctx context.Context, dataset string) ([]model.RankedRunner, error)
}

// RankingsHandler serves division winners and distance-to-front rankings.
type RankingsHandler struct {
	deps RankingDependencies
}

// NewRankingsHandler creates a new rankings handler.
func NewRankingsHandler(deps RankingDependencies) *RankingsHandler {
	return &RankingsHandler{deps: deps}
}

// HandleGetWinners handles GET /data/winners[?year=<dataset>] requests.
func (h *RankingsHandler) HandleGetWinners(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_winners"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	dataset, ok := datasetFromQuery(w, r, op)
	if !ok {
		return
	}
	winners, err := h.deps.Winners(r.Context(), dataset)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, winners)
}

// HandleGetRankings handles GET /data/rankings[?year=<dataset>] requests.
func (h *RankingsHandler) HandleGetRankings(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_rankings"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	dataset, ok := datasetFromQuery(w, r, op)
	if !ok {
		return
	}
	ranked, err := h.deps.Rankings(r.Context(), dataset)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}
