package export

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/repository"
)

// RunGetter is the read surface the handlers need.
type RunGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.MigrationRun, error)
}

// Handler serves run artifacts over HTTP.
type Handler struct {
	runs RunGetter
}

// NewHandler creates an export handler.
func NewHandler(runs RunGetter) *Handler {
	return &Handler{runs: runs}
}

func (h *Handler) run(w http.ResponseWriter, r *http.Request) *domain.MigrationRun {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return nil
	}
	run, err := h.runs.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return nil
	}
	if err != nil {
		log.Printf("Failed to load run: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return nil
	}
	return run
}

// Artifact handles GET /api/runs/{id}/artifacts/{kind} for the JSON
// envelopes (dataflow, pipeline, report).
func (h *Handler) Artifact(w http.ResponseWriter, r *http.Request) {
	run := h.run(w, r)
	if run == nil {
		return
	}

	var data []byte
	switch r.PathValue("kind") {
	case "dataflow":
		data = run.Dataflow
	case "pipeline":
		data = run.Pipeline
	case "report":
		data = run.Report
	default:
		http.Error(w, "unknown artifact", http.StatusNotFound)
		return
	}
	if len(data) == 0 {
		http.Error(w, "artifact not available", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// Excel handles GET /api/runs/{id}/report.xlsx.
func (h *Handler) Excel(w http.ResponseWriter, r *http.Request) {
	run := h.run(w, r)
	if run == nil {
		return
	}

	f, err := Workbook(run)
	if err != nil {
		log.Printf("Failed to build workbook: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", run.MappingName+"_report.xlsx"))
	if err := f.Write(w); err != nil {
		log.Printf("Failed to stream workbook: %v", err)
	}
}
