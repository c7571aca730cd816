package core

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

// memStore is an in-memory RecordStore keyed by file name.
type memStore struct {
	mu      sync.Mutex
	records map[string][]Record
	queries []string
	err     error
}

func (m *memStore) FindByFileName(_ context.Context, name string) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, name)
	if m.err != nil {
		return nil, m.err
	}
	return m.records[name], nil
}

func TestGenerateReport_Success(t *testing.T) {
	store := &memStore{records: map[string][]Record{"cases.xlsx": sampleRecords()}}
	svc := NewReportService(store)

	data, err := svc.GenerateReport(context.Background(), "cases.xlsx")
	if err != nil {
		t.Fatalf("GenerateReport() error = %v", err)
	}
	rows, err := openReport(t, data).GetRows(ReportSheetName)
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != 4 {
		t.Errorf("rows = %d, want 4", len(rows))
	}
}

func TestGenerateReport_NotFound(t *testing.T) {
	tests := []struct {
		name      string
		fileName  string
		wantQuery bool
	}{
		{"empty name", "", false},
		{"no match", "missing.xlsx", true},
		{"case sensitive", "CASES.xlsx", true},
		{"no trimming", " cases.xlsx", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &memStore{records: map[string][]Record{"cases.xlsx": sampleRecords()}}
			built := false
			svc := NewReportService(store).WithBuilder(func(r []Record) ([]byte, error) {
				built = true
				return BuildReport(r)
			})

			_, err := svc.GenerateReport(context.Background(), tt.fileName)
			if !errors.Is(err, ErrNotFound) {
				t.Fatalf("GenerateReport(%q) error = %v, want ErrNotFound", tt.fileName, err)
			}
			if built {
				t.Error("no document should be built")
			}
			if got := len(store.queries) > 0; got != tt.wantQuery {
				t.Errorf("store queried = %v, want %v", got, tt.wantQuery)
			}
			want := "No records found for file name: '" + tt.fileName + "'"
			if err.Error() != want {
				t.Errorf("Error() = %q, want %q", err.Error(), want)
			}
		})
	}
}

func TestGenerateReport_BuildFailureIsIO(t *testing.T) {
	store := &memStore{records: map[string][]Record{"a.xlsx": sampleRecords()}}
	cause := errors.New("zip: write error")
	svc := NewReportService(store).WithBuilder(func([]Record) ([]byte, error) {
		return nil, cause
	})

	_, err := svc.GenerateReport(context.Background(), "a.xlsx")
	if !errors.Is(err, ErrIO) {
		t.Fatalf("error = %v, want ErrIO", err)
	}
	if !errors.Is(err, cause) {
		t.Errorf("error should wrap cause: %v", err)
	}
	if !strings.Contains(err.Error(), "a.xlsx") {
		t.Errorf("error should name the file: %v", err)
	}
	if OpOf(err) != "report.generate" {
		t.Errorf("OpOf() = %q, want report.generate", OpOf(err))
	}
}

func TestGenerateReport_StoreFailureIsUnknown(t *testing.T) {
	store := &memStore{err: errors.New("connection reset by peer")}
	svc := NewReportService(store)

	_, err := svc.GenerateReport(context.Background(), "timeout_cases.xlsx")
	if !errors.Is(err, ErrUnknown) {
		t.Fatalf("error = %v, want ErrUnknown", err)
	}
	if strings.Contains(err.Error(), "timeout_cases") {
		t.Errorf("error should not quote the file name: %v", err)
	}
	if code := MapError(err).Code; code != "ERR000" {
		t.Errorf("MapError code = %q, want ERR000", code)
	}
}

func TestGenerateReport_NotFoundCodeIgnoresName(t *testing.T) {
	svc := NewReportService(&memStore{records: map[string][]Record{}})

	for _, name := range []string{"timeout_cases.xlsx", "connection refused.xlsx", "file too large.xlsx"} {
		_, err := svc.GenerateReport(context.Background(), name)
		if code := MapError(err).Code; code != "RPT001" {
			t.Errorf("GenerateReport(%q): MapError code = %q, want RPT001", name, code)
		}
	}
}

func TestGenerateReport_ConcurrentCalls(t *testing.T) {
	store := &memStore{records: map[string][]Record{
		"a.xlsx": {{CaseID: "A1"}},
		"b.xlsx": {{CaseID: "B1"}, {CaseID: "B2"}},
	}}
	svc := NewReportService(store)

	var wg sync.WaitGroup
	results := make([][]byte, 2)
	errs := make([]error, 2)
	for i, name := range []string{"a.xlsx", "b.xlsx"} {
		wg.Add(1)
		go func(i int, name string) {
			defer wg.Done()
			results[i], errs[i] = svc.GenerateReport(context.Background(), name)
		}(i, name)
	}
	wg.Wait()

	for i, want := range []int{2, 3} {
		if errs[i] != nil {
			t.Fatalf("call %d error = %v", i, errs[i])
		}
		rows, err := openReport(t, results[i]).GetRows(ReportSheetName)
		if err != nil {
			t.Fatalf("GetRows() error = %v", err)
		}
		if len(rows) != want {
			t.Errorf("call %d rows = %d, want %d", i, len(rows), want)
		}
	}
}
