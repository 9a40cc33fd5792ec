package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

func testRun() *domain.MigrationRun {
	return &domain.MigrationRun{
		MappingName: "m_LOAD_SALES",
		SourceFile:  "m_LOAD_SALES.xml",
		Status:      domain.RunCompleted,
		ScriptLines: []string{"source(output(", "\t) ~> ORDERS"},
		Dataflow:    json.RawMessage(`{"name":"dataflow_m_LOAD_SALES"}`),
		Pipeline:    json.RawMessage(`{"name":"pipeline_m_LOAD_SALES"}`),
		Report:      json.RawMessage(`{"mapping_name":"m_LOAD_SALES"}`),
		Diagnostics: domain.Diagnostics{
			{Severity: domain.SeverityWarning, Code: domain.DiagOrphanSource, Node: "CUSTOMERS", Message: "orphan"},
		},
		CreatedAt: time.Now(),
	}
}

func TestWorkbookSheets(t *testing.T) {
	f, err := Workbook(testRun())
	if err != nil {
		t.Fatalf("Workbook: %v", err)
	}
	defer f.Close()

	for _, sheet := range []string{"Summary", "Script", "Diagnostics"} {
		if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
			t.Errorf("sheet %q missing (idx=%d, err=%v)", sheet, idx, err)
		}
	}

	got, err := f.GetCellValue("Summary", "B1")
	if err != nil || got != "m_LOAD_SALES" {
		t.Errorf("Summary!B1 = %q (err=%v)", got, err)
	}
	got, err = f.GetCellValue("Script", "A2")
	if err != nil || got != "\t) ~> ORDERS" {
		t.Errorf("Script!A2 = %q (err=%v)", got, err)
	}
	got, err = f.GetCellValue("Diagnostics", "D2")
	if err != nil || got != "orphan" {
		t.Errorf("Diagnostics!D2 = %q (err=%v)", got, err)
	}
}

func TestWriteArtifacts(t *testing.T) {
	dir := t.TempDir()
	run := testRun()

	if err := WriteArtifacts(dir, run); err != nil {
		t.Fatalf("WriteArtifacts: %v", err)
	}

	for _, name := range []string{"dataflow.json", "pipeline.json", "report.json", "script.dfs"} {
		path := filepath.Join(dir, run.MappingName, name)
		if _, err := os.Stat(path); err != nil {
			t.Errorf("missing artifact %s: %v", name, err)
		}
	}
}
