// Package ingestion accepts PowerCenter export uploads, translates them and
// persists the resulting migration runs.
package ingestion

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/parser"
	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/translate"
)

// ErrUnsupportedFormat is returned for uploads that are not XML exports.
var ErrUnsupportedFormat = errors.New("unsupported file format, expected .xml")

// RunStore is the persistence surface the service needs.
type RunStore interface {
	Create(ctx context.Context, run *domain.MigrationRun) (*domain.MigrationRun, error)
}

// File is one uploaded export.
type File struct {
	Name string
	Data []byte
}

// Service translates uploaded exports into stored migration runs.
type Service struct {
	runs           RunStore
	datasetMapping map[string]string
}

// NewService creates an ingestion service.
func NewService(runs RunStore, datasetMapping map[string]string) *Service {
	return &Service{runs: runs, datasetMapping: datasetMapping}
}

// IngestFile translates one export and stores the run. An unparseable export
// is stored as a failed run and the parse error is returned; translation
// diagnostics never fail the run.
func (s *Service) IngestFile(ctx context.Context, projectID uuid.UUID, file File) (*domain.MigrationRun, error) {
	if !strings.EqualFold(filepath.Ext(file.Name), ".xml") {
		return nil, fmt.Errorf("%s: %w", file.Name, ErrUnsupportedFormat)
	}

	meta, err := parser.Parse(bytes.NewReader(file.Data))
	if err != nil {
		run := &domain.MigrationRun{
			ProjectID:   projectID,
			MappingName: strings.TrimSuffix(file.Name, filepath.Ext(file.Name)),
			SourceFile:  file.Name,
			Status:      domain.RunFailed,
		}
		if _, storeErr := s.runs.Create(ctx, run); storeErr != nil {
			return nil, fmt.Errorf("failed to store failed run: %v (parse error: %w)", storeErr, err)
		}
		return run, fmt.Errorf("%s: %w", file.Name, err)
	}

	out, err := translate.Run(meta, s.datasetMapping)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", file.Name, err)
	}

	run := &domain.MigrationRun{
		ProjectID:   projectID,
		MappingName: out.MappingName,
		SourceFile:  file.Name,
		Status:      domain.RunCompleted,
		ScriptLines: out.ScriptLines,
		Dataflow:    out.Dataflow,
		Pipeline:    out.Pipeline,
		Report:      out.Report,
		Diagnostics: out.Diagnostics,
	}
	if _, err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to store run for %s: %w", file.Name, err)
	}
	return run, nil
}

// IngestFiles translates a batch of exports concurrently. Results keep the
// input order; the first failure cancels the remaining work.
func (s *Service) IngestFiles(ctx context.Context, projectID uuid.UUID, files []File) ([]*domain.MigrationRun, error) {
	runs := make([]*domain.MigrationRun, len(files))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, file := range files {
		g.Go(func() error {
			run, err := s.IngestFile(ctx, projectID, file)
			if err != nil {
				return err
			}
			runs[i] = run
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return runs, nil
}
