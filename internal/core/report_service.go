package core

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// ReportService generates case reports for a file name.
// It holds no per-call state, so concurrent calls do not interfere.
type ReportService struct {
	store RecordStore
	build BuildFunc
}

// NewReportService creates a ReportService reading from store.
func NewReportService(store RecordStore) *ReportService {
	return &ReportService{store: store, build: BuildReport}
}

// WithBuilder returns a copy of s that serializes with build.
func (s *ReportService) WithBuilder(build BuildFunc) *ReportService {
	return &ReportService{store: s.store, build: build}
}

// GenerateReport returns a workbook of all records imported from fileName.
//
// The name is matched exactly; trimming is the caller's job. Fails with
// ErrNotFound when no records match and ErrIO when the workbook cannot be
// serialized. Store failures surface as ErrUnknown.
func (s *ReportService) GenerateReport(ctx context.Context, fileName string) ([]byte, error) {
	const op = "report.generate"
	start := time.Now()

	if fileName == "" {
		return nil, NotFoundError(op, "No records found for file name: '%s'", fileName)
	}

	records, err := s.store.FindByFileName(ctx, fileName)
	if err != nil {
		slog.Error("report query failed", "file_name", fileName, "error", err)
		return nil, UnknownError(op, fmt.Errorf("find records: %w", err))
	}
	if len(records) == 0 {
		return nil, NotFoundError(op, "No records found for file name: '%s'", fileName)
	}

	data, err := s.build(records)
	if err != nil {
		slog.Error("report build failed", "file_name", fileName, "error", err)
		return nil, IOError(op, err, "Failed to generate Excel report for '%s'", fileName)
	}

	slog.Info("report generated",
		"file_name", fileName,
		"records", len(records),
		"bytes", len(data),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return data, nil
}
