// Package api exposes migration projects and runs over REST.
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/repository"
)

// ProjectHandler serves project CRUD and run listings.
type ProjectHandler struct {
	projects *repository.MigrationProjectRepository
	runs     *repository.MigrationRunRepository
}

// NewProjectHandler creates a project handler.
func NewProjectHandler(projects *repository.MigrationProjectRepository, runs *repository.MigrationRunRepository) *ProjectHandler {
	return &ProjectHandler{projects: projects, runs: runs}
}

type projectPayload struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toProjectPayload(p *domain.MigrationProject) projectPayload {
	return projectPayload{ID: p.ID, Name: p.Name, Description: p.Description, CreatedAt: p.CreatedAt}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}

// Create handles POST /api/projects.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Name == "" {
		http.Error(w, "name is required", http.StatusBadRequest)
		return
	}

	project, err := h.projects.Create(r.Context(), req.Name, req.Description)
	if err != nil {
		log.Printf("Failed to create project: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, toProjectPayload(project))
}

// List handles GET /api/projects.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	projects, err := h.projects.List(r.Context())
	if err != nil {
		log.Printf("Failed to list projects: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	payload := make([]projectPayload, 0, len(projects))
	for _, p := range projects {
		payload = append(payload, toProjectPayload(p))
	}
	writeJSON(w, http.StatusOK, payload)
}

// Get handles GET /api/projects/{id}.
func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	project, err := h.projects.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to get project: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, toProjectPayload(project))
}

// Delete handles DELETE /api/projects/{id}.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	err = h.projects.Delete(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "project not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to delete project: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type runPayload struct {
	ID          uuid.UUID        `json:"id"`
	MappingName string           `json:"mapping_name"`
	SourceFile  string           `json:"source_file"`
	Status      domain.RunStatus `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
}

// ListRuns handles GET /api/projects/{id}/runs.
func (h *ProjectHandler) ListRuns(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	runs, err := h.runs.ListByProject(r.Context(), id)
	if err != nil {
		log.Printf("Failed to list runs: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	payload := make([]runPayload, 0, len(runs))
	for _, run := range runs {
		payload = append(payload, runPayload{
			ID:          run.ID,
			MappingName: run.MappingName,
			SourceFile:  run.SourceFile,
			Status:      run.Status,
			CreatedAt:   run.CreatedAt,
		})
	}
	writeJSON(w, http.StatusOK, payload)
}

// GetRun handles GET /api/runs/{id} including diagnostics.
func (h *ProjectHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("Failed to get run: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		runPayload
		ScriptLines []string           `json:"script_lines"`
		Diagnostics domain.Diagnostics `json:"diagnostics"`
	}{
		runPayload: runPayload{
			ID:          run.ID,
			MappingName: run.MappingName,
			SourceFile:  run.SourceFile,
			Status:      run.Status,
			CreatedAt:   run.CreatedAt,
		},
		ScriptLines: run.ScriptLines,
		Diagnostics: run.Diagnostics,
	})
}
