package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// MigrationProject groups the migration runs of one PowerCenter repository.
type MigrationProject struct {
	ID          uuid.UUID
	Name        string
	Description string
	CreatedAt   time.Time
}

// RunStatus is the lifecycle state of a migration run.
type RunStatus string

const (
	RunPending   RunStatus = "pending"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// MigrationRun is one translated mapping with its generated artifacts.
// A run completes even when diagnostics contain errors; Failed is reserved
// for inputs that could not be parsed at all.
type MigrationRun struct {
	ID          uuid.UUID
	ProjectID   uuid.UUID
	MappingName string
	SourceFile  string
	Status      RunStatus
	ScriptLines []string
	Dataflow    json.RawMessage
	Pipeline    json.RawMessage
	Report      json.RawMessage
	Diagnostics Diagnostics
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DiagnosticsToJSON serializes diagnostics for jsonb storage.
func DiagnosticsToJSON(diags Diagnostics) ([]byte, error) {
	if diags == nil {
		diags = Diagnostics{}
	}
	data, err := json.Marshal(diags)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal diagnostics: %w", err)
	}
	return data, nil
}

// DiagnosticsFromJSON deserializes diagnostics from jsonb storage.
func DiagnosticsFromJSON(data []byte) (Diagnostics, error) {
	if len(data) == 0 {
		return Diagnostics{}, nil
	}
	var diags Diagnostics
	if err := json.Unmarshal(data, &diags); err != nil {
		return nil, fmt.Errorf("failed to unmarshal diagnostics: %w", err)
	}
	return diags, nil
}
