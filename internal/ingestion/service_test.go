package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/Kriptaman10/Migracion-PWC-ADF/internal/domain"
)

type fakeRunStore struct {
	mu   sync.Mutex
	runs []*domain.MigrationRun
}

func (s *fakeRunStore) Create(_ context.Context, run *domain.MigrationRun) (*domain.MigrationRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	run.ID = uuid.New()
	s.runs = append(s.runs, run)
	return run, nil
}

const exportXML = `<?xml version="1.0" encoding="UTF-8"?>
<POWERMART>
  <REPOSITORY NAME="REP" VERSION="188.98">
    <FOLDER NAME="SALES">
      <SOURCE NAME="ORDERS" DATABASETYPE="Oracle">
        <SOURCEFIELD NAME="ORDER_ID" DATATYPE="number"/>
        <SOURCEFIELD NAME="STATUS" DATATYPE="varchar2"/>
      </SOURCE>
      <TARGET NAME="FACT_SALES" DATABASETYPE="Oracle"/>
      <MAPPING NAME="m_LOAD_SALES">
        <TRANSFORMATION NAME="SQ_ORDERS" TYPE="Source Qualifier"/>
        <TRANSFORMATION NAME="FIL_ACTIVE" TYPE="Filter">
          <TABLEATTRIBUTE NAME="Filter Condition" VALUE="STATUS = 'A'"/>
        </TRANSFORMATION>
        <CONNECTOR FROMINSTANCE="ORDERS" TOINSTANCE="SQ_ORDERS"/>
        <CONNECTOR FROMINSTANCE="SQ_ORDERS" TOINSTANCE="FIL_ACTIVE"/>
        <CONNECTOR FROMINSTANCE="FIL_ACTIVE" TOINSTANCE="FACT_SALES"/>
      </MAPPING>
    </FOLDER>
  </REPOSITORY>
</POWERMART>`

func TestIngestFile(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewService(store, nil)

	run, err := svc.IngestFile(context.Background(), uuid.New(), File{
		Name: "m_LOAD_SALES.xml",
		Data: []byte(exportXML),
	})
	if err != nil {
		t.Fatalf("IngestFile: %v", err)
	}

	if run.Status != domain.RunCompleted {
		t.Errorf("status = %q", run.Status)
	}
	if run.MappingName != "m_LOAD_SALES" {
		t.Errorf("mapping name = %q", run.MappingName)
	}
	if len(run.ScriptLines) == 0 || len(run.Dataflow) == 0 || len(run.Pipeline) == 0 || len(run.Report) == 0 {
		t.Error("artifacts missing from stored run")
	}
	if len(store.runs) != 1 {
		t.Errorf("stored runs = %d", len(store.runs))
	}
}

func TestIngestFileRejectsUnsupportedFormat(t *testing.T) {
	svc := NewService(&fakeRunStore{}, nil)

	_, err := svc.IngestFile(context.Background(), uuid.New(), File{Name: "mapping.csv"})
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestIngestFileStoresFailedRunOnParseError(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewService(store, nil)

	run, err := svc.IngestFile(context.Background(), uuid.New(), File{
		Name: "broken.xml",
		Data: []byte("<POWERMART><REPOSITORY>"),
	})
	if err == nil {
		t.Fatal("expected parse error")
	}
	if run == nil || run.Status != domain.RunFailed {
		t.Errorf("run = %+v", run)
	}
	if len(store.runs) != 1 {
		t.Errorf("failed run not stored: %d", len(store.runs))
	}
}

func TestIngestFilesKeepsOrder(t *testing.T) {
	store := &fakeRunStore{}
	svc := NewService(store, nil)

	files := []File{
		{Name: "a.xml", Data: []byte(exportXML)},
		{Name: "b.xml", Data: []byte(exportXML)},
		{Name: "c.xml", Data: []byte(exportXML)},
	}
	runs, err := svc.IngestFiles(context.Background(), uuid.New(), files)
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	for i, run := range runs {
		if run.SourceFile != files[i].Name {
			t.Errorf("runs[%d].SourceFile = %q, want %q", i, run.SourceFile, files[i].Name)
		}
	}
}
