// Package repository persists migration projects and runs in PostgreSQL.
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

// ErrNotFound is returned when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// MigrationProjectRepository handles migration project persistence.
type MigrationProjectRepository struct {
	pool *pgxpool.Pool
}

// NewMigrationProjectRepository creates a new project repository.
func NewMigrationProjectRepository(pool *pgxpool.Pool) *MigrationProjectRepository {
	return &MigrationProjectRepository{pool: pool}
}

// Create inserts a new project and returns it with its generated fields.
func (r *MigrationProjectRepository) Create(ctx context.Context, name, description string) (*domain.MigrationProject, error) {
	var project domain.MigrationProject
	err := r.pool.QueryRow(ctx, `
		INSERT INTO migration_projects (name, description)
		VALUES ($1, $2)
		RETURNING id, name, description, created_at`,
		name, description,
	).Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return &project, nil
}

// GetByID fetches one project.
func (r *MigrationProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.MigrationProject, error) {
	var project domain.MigrationProject
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, description, created_at
		FROM migration_projects
		WHERE id = $1`,
		id,
	).Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return &project, nil
}

// List returns all projects, newest first.
func (r *MigrationProjectRepository) List(ctx context.Context) ([]*domain.MigrationProject, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, description, created_at
		FROM migration_projects
		ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []*domain.MigrationProject
	for rows.Next() {
		var project domain.MigrationProject
		if err := rows.Scan(&project.ID, &project.Name, &project.Description, &project.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, &project)
	}
	return projects, rows.Err()
}

// Delete removes a project and, via cascade, its runs.
func (r *MigrationProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM migration_projects WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
