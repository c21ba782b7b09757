package api

import (
	"context"
	"errors"
	"net/http"
	"regexp"

	"github.com/okian/racecurve/internal/adapters/source"
	"github.com/okian/racecurve/internal/domain/model"
)

// yearParam selects a dataset. Names are opaque but kept to a safe charset.
const yearParam = "year"

var datasetName = regexp.MustCompile(`^[A-Za-z0-9_.-]{1,64}$`)

// SummaryDependencies defines the read operations of the data endpoints.
type SummaryDependencies interface {
	Summary(ctx context.Context, dataset string) (model.Summary, error)
	AllTime(ctx context.Context) (model.Summary, error)
	Front(ctx context.Context, dataset string) (model.Front, error)
}

// DataHandler serves age-group summaries.
type DataHandler struct {
	deps SummaryDependencies
}

// NewDataHandler creates a new data handler.
func NewDataHandler(deps SummaryDependencies) *DataHandler {
	return &DataHandler{deps: deps}
}

// HandleGetSummary handles GET /data[?year=<dataset>] requests.
func (h *DataHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_summary"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	dataset, ok := datasetFromQuery(w, r, op)
	if !ok {
		return
	}
	sum, err := h.deps.Summary(r.Context(), dataset)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleGetAllTime handles GET /data/all-time requests.
func (h *DataHandler) HandleGetAllTime(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_all_time"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	sum, err := h.deps.AllTime(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, sum)
}

// HandleGetFront handles GET /data/pareto[?year=<dataset>] requests.
func (h *DataHandler) HandleGetFront(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_front"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	dataset, ok := datasetFromQuery(w, r, op)
	if !ok {
		return
	}
	front, err := h.deps.Front(r.Context(), dataset)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, front)
}

func datasetFromQuery(w http.ResponseWriter, r *http.Request, op string) (string, bool) {
	dataset := r.URL.Query().Get(yearParam)
	if dataset != "" && !datasetName.MatchString(dataset) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, "invalid year"))
		return "", false
	}
	return dataset, true
}

func writeServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, source.ErrUnknownDataset) {
		writeError(w, http.StatusNotFound, "unknown_dataset", Wrap(op, err))
		return
	}
	writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
}
