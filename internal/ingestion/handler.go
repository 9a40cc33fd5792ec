package ingestion

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/google/uuid"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

const maxUploadBytes = 64 << 20

// Handler exposes export uploads over HTTP.
type Handler struct {
	service *Service
}

// NewHandler creates an upload handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

type runSummary struct {
	ID          uuid.UUID        `json:"id"`
	MappingName string           `json:"mapping_name"`
	SourceFile  string           `json:"source_file"`
	Status      domain.RunStatus `json:"status"`
	Warnings    int              `json:"warnings"`
	Errors      int              `json:"errors"`
}

// Upload handles POST /api/projects/{id}/runs with one or more export files
// in the multipart field "files".
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	projectID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		http.Error(w, "invalid project id", http.StatusBadRequest)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart request", http.StatusBadRequest)
		return
	}

	var files []File
	for _, header := range r.MultipartForm.File["files"] {
		f, err := header.Open()
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			http.Error(w, "failed to read upload", http.StatusBadRequest)
			return
		}
		files = append(files, File{Name: header.Filename, Data: data})
	}
	if len(files) == 0 {
		http.Error(w, "no files uploaded", http.StatusBadRequest)
		return
	}

	runs, err := h.service.IngestFiles(r.Context(), projectID, files)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			http.Error(w, err.Error(), http.StatusUnsupportedMediaType)
			return
		}
		log.Printf("Ingestion failed: %v", err)
		http.Error(w, "ingestion failed", http.StatusUnprocessableEntity)
		return
	}

	summaries := make([]runSummary, 0, len(runs))
	for _, run := range runs {
		summaries = append(summaries, runSummary{
			ID:          run.ID,
			MappingName: run.MappingName,
			SourceFile:  run.SourceFile,
			Status:      run.Status,
			Warnings:    len(run.Diagnostics.Warnings()),
			Errors:      len(run.Diagnostics.Errors()),
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(summaries); err != nil {
		log.Printf("Failed to encode response: %v", err)
	}
}
