// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/racecurve/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Summary returns the per-age bests of one dataset; "" selects the default.
	Summary(ctx context.Context, dataset string) (model.Summary, error)

	// AllTime merges every dataset.
	AllTime(ctx context.Context) (model.Summary, error)

	// Front returns the Pareto age-performance curve of one dataset.
	Front(ctx context.Context, dataset string) (model.Front, error)

	// Datasets lists the configured datasets.
	Datasets(ctx context.Context) model.DatasetList

	// Winners returns division winners and front finishers of one dataset.
	Winners(ctx context.Context, dataset string) (model.Winners, error)

	// Rankings orders the finishers of one dataset by their gap to the front.
	Rankings(ctx context.Context, dataset string) ([]model.RankedRunner, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler   *HealthHandler
	statsHandler    *StatsHandler
	dataHandler     *DataHandler
	datasetsHandler *DatasetsHandler
	rankingsHandler *RankingsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:   NewHealthHandler(),
		statsHandler:    NewStatsHandler(statsProvider),
		dataHandler:     NewDataHandler(deps),
		datasetsHandler: NewDatasetsHandler(deps),
		rankingsHandler: NewRankingsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}

	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.Handle("/metrics", s.healthHandler.MetricsHandler())
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/datasets", MetricsMiddleware(s.datasetsHandler.HandleGetDatasets, "datasets"))
	mux.HandleFunc("/data", MetricsMiddleware(s.dataHandler.HandleGetSummary, "data"))
	mux.HandleFunc("/data/all-time", MetricsMiddleware(s.dataHandler.HandleGetAllTime, "data_all_time"))
	mux.HandleFunc("/data/pareto", MetricsMiddleware(s.dataHandler.HandleGetFront, "data_pareto"))
	mux.HandleFunc("/data/winners", MetricsMiddleware(s.rankingsHandler.HandleGetWinners, "data_winners"))
	mux.HandleFunc("/data/rankings", MetricsMiddleware(s.rankingsHandler.HandleGetRankings, "data_rankings"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeJSON encodes v before touching w so a failed encode never leaves a
// partial body behind.
func writeJSON(w http.ResponseWriter, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		buf.Reset()
		_ = json.NewEncoder(&buf).Encode(errorResponse{Code: "internal_error", Message: "response encoding failed"})
		status = http.StatusInternalServerError
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
