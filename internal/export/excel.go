// Package export renders migration runs as downloadable artifacts: the JSON
// envelopes, the raw script lines and an Excel migration report.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

// Workbook builds the Excel report for one run: a summary sheet, the script
// lines and every diagnostic.
func Workbook(run *domain.MigrationRun) (*excelize.File, error) {
	f := excelize.NewFile()

	const summary = "Summary"
	if err := f.SetSheetName("Sheet1", summary); err != nil {
		return nil, fmt.Errorf("failed to rename summary sheet: %w", err)
	}

	rows := [][]any{
		{"Mapping", run.MappingName},
		{"Source file", run.SourceFile},
		{"Status", string(run.Status)},
		{"Script lines", len(run.ScriptLines)},
		{"Warnings", len(run.Diagnostics.Warnings())},
		{"Errors", len(run.Diagnostics.Errors())},
		{"Created", run.CreatedAt.Format("2006-01-02 15:04:05")},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to build summary cell: %w", err)
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write summary row: %w", err)
		}
	}
	if err := f.SetColWidth(summary, "A", "A", 18); err != nil {
		return nil, fmt.Errorf("failed to size summary columns: %w", err)
	}
	if err := f.SetColWidth(summary, "B", "B", 60); err != nil {
		return nil, fmt.Errorf("failed to size summary columns: %w", err)
	}

	const script = "Script"
	if _, err := f.NewSheet(script); err != nil {
		return nil, fmt.Errorf("failed to create script sheet: %w", err)
	}
	for i, line := range run.ScriptLines {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, fmt.Errorf("failed to build script cell: %w", err)
		}
		if err := f.SetCellStr(script, cell, line); err != nil {
			return nil, fmt.Errorf("failed to write script line: %w", err)
		}
	}
	if err := f.SetColWidth(script, "A", "A", 100); err != nil {
		return nil, fmt.Errorf("failed to size script column: %w", err)
	}

	const diagnostics = "Diagnostics"
	if _, err := f.NewSheet(diagnostics); err != nil {
		return nil, fmt.Errorf("failed to create diagnostics sheet: %w", err)
	}
	header := []any{"Severity", "Code", "Node", "Message"}
	if err := f.SetSheetRow(diagnostics, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write diagnostics header: %w", err)
	}
	for i, d := range run.Diagnostics {
		row := []any{string(d.Severity), string(d.Code), d.Node, d.Message}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, fmt.Errorf("failed to build diagnostics cell: %w", err)
		}
		if err := f.SetSheetRow(diagnostics, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write diagnostic: %w", err)
		}
	}
	if err := f.SetColWidth(diagnostics, "D", "D", 90); err != nil {
		return nil, fmt.Errorf("failed to size diagnostics column: %w", err)
	}

	return f, nil
}

// WriteArtifacts writes the run's JSON envelopes and script to a directory
// named after the mapping.
func WriteArtifacts(dir string, run *domain.MigrationRun) error {
	target := filepath.Join(dir, run.MappingName)
	if err := os.MkdirAll(target, 0o755); err != nil {
		return fmt.Errorf("failed to create export directory: %w", err)
	}

	files := map[string][]byte{
		"dataflow.json": run.Dataflow,
		"pipeline.json": run.Pipeline,
		"report.json":   run.Report,
		"script.dfs":    []byte(strings.Join(run.ScriptLines, "\n")),
	}
	for name, data := range files {
		if err := os.WriteFile(filepath.Join(target, name), data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", name, err)
		}
	}
	return nil
}
