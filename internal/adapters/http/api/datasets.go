package api

import (
	"context"
	"net/http"

	"github.com/okian/racecurve/internal/domain/model"
)

// DatasetsDependencies lists configured datasets.
type DatasetsDependencies interface {
	Datasets(ctx context.Context) model.DatasetList
}

// DatasetsHandler handles dataset listing requests.
type DatasetsHandler struct {
	deps DatasetsDependencies
}

// NewDatasetsHandler creates a new datasets handler.
func NewDatasetsHandler(deps DatasetsDependencies) *DatasetsHandler {
	return &DatasetsHandler{deps: deps}
}

// HandleGetDatasets handles GET /datasets requests.
func (h *DatasetsHandler) HandleGetDatasets(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Datasets(r.Context()))
}
