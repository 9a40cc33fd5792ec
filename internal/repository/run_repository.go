package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

// MigrationRunRepository handles migration run persistence. Generated
// artifacts are stored as jsonb alongside the run row.
type MigrationRunRepository struct {
	pool *pgxpool.Pool
}

// NewMigrationRunRepository creates a new run repository.
func NewMigrationRunRepository(pool *pgxpool.Pool) *MigrationRunRepository {
	return &MigrationRunRepository{pool: pool}
}

// Create inserts a run with its artifacts in one statement.
func (r *MigrationRunRepository) Create(ctx context.Context, run *domain.MigrationRun) (*domain.MigrationRun, error) {
	diagsJSON, err := domain.DiagnosticsToJSON(run.Diagnostics)
	if err != nil {
		return nil, err
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO migration_runs
			(project_id, mapping_name, source_file, status, script_lines, dataflow, pipeline, report, diagnostics)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`,
		run.ProjectID, run.MappingName, run.SourceFile, run.Status,
		run.ScriptLines, run.Dataflow, run.Pipeline, run.Report, diagsJSON,
	).Scan(&run.ID, &run.CreatedAt, &run.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}
	return run, nil
}

// GetByID fetches one run including its artifacts.
func (r *MigrationRunRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MigrationRun, error) {
	var run domain.MigrationRun
	var diagsJSON []byte
	err := r.pool.QueryRow(ctx, `
		SELECT id, project_id, mapping_name, source_file, status,
		       script_lines, dataflow, pipeline, report, diagnostics,
		       created_at, updated_at
		FROM migration_runs
		WHERE id = $1`,
		id,
	).Scan(&run.ID, &run.ProjectID, &run.MappingName, &run.SourceFile, &run.Status,
		&run.ScriptLines, &run.Dataflow, &run.Pipeline, &run.Report, &diagsJSON,
		&run.CreatedAt, &run.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Diagnostics, err = domain.DiagnosticsFromJSON(diagsJSON)
	if err != nil {
		return nil, err
	}
	return &run, nil
}

// ListByProject returns the runs of one project, newest first, without the
// artifact payloads.
func (r *MigrationRunRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]*domain.MigrationRun, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, project_id, mapping_name, source_file, status, created_at, updated_at
		FROM migration_runs
		WHERE project_id = $1
		ORDER BY created_at DESC`,
		projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*domain.MigrationRun
	for rows.Next() {
		var run domain.MigrationRun
		if err := rows.Scan(&run.ID, &run.ProjectID, &run.MappingName, &run.SourceFile,
			&run.Status, &run.CreatedAt, &run.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// UpdateStatus moves a run to a new lifecycle state.
func (r *MigrationRunRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.RunStatus) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE migration_runs
		SET status = $2, updated_at = now()
		WHERE id = $1`,
		id, status)
	if err != nil {
		return fmt.Errorf("failed to update run status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes one run.
func (r *MigrationRunRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM migration_runs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
