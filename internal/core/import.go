package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"
)

// UploadSuccessPrefix starts every import result that stored records.
// Callers tell success from failure by this prefix, not by the absence of an error.
const UploadSuccessPrefix = "Upload successful"

// SkippedRow describes a data row that could not be imported.
type SkippedRow struct {
	Line   int // One-based sheet row
	Reason string
}

// ImportService reads case spreadsheets and persists their rows.
type ImportService struct {
	writer RecordWriter
}

// NewImportService creates an ImportService writing through w.
func NewImportService(w RecordWriter) *ImportService {
	return &ImportService{writer: w}
}

// ProcessFile imports the first sheet of file and returns a result message.
//
// Rows are stamped with file.Name so a later report can find them. Rows with
// a blank CASE_ID or an unparsable flag or date are skipped and counted.
// A workbook without usable rows returns a message without the success
// prefix and a nil error.
func (s *ImportService) ProcessFile(ctx context.Context, file StagedFile) (string, error) {
	const op = "import.process"
	start := time.Now()

	records, skipped, err := ReadRecords(file)
	if err != nil {
		return "", err
	}

	logger := slog.With("file_name", file.Name)
	for _, sr := range skipped {
		logger.Warn("row skipped", "line", sr.Line, "reason", sr.Reason)
	}

	if len(records) == 0 {
		if len(skipped) == 0 {
			return fmt.Sprintf("Upload completed with no records: %s", file.Name), nil
		}
		return fmt.Sprintf("Upload failed: no valid rows in %s (%d rows skipped)", file.Name, len(skipped)), nil
	}

	inserted, err := s.writer.InsertRecords(ctx, records)
	if err != nil {
		logger.Error("store records failed", "error", err)
		return "", UnknownError(op, fmt.Errorf("store records: %w", err))
	}

	logger.Info("import completed",
		"import_id", records[0].ImportID,
		"inserted", inserted,
		"skipped", len(skipped),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	msg := fmt.Sprintf("%s: %d records imported from %s", UploadSuccessPrefix, inserted, file.Name)
	if len(skipped) > 0 {
		msg += fmt.Sprintf(" (%d rows skipped)", len(skipped))
	}
	return msg, nil
}

// ReadRecords parses the first sheet of file into records sharing one import id.
func ReadRecords(file StagedFile) ([]Record, []SkippedRow, error) {
	const op = "import.read"

	f, err := excelize.OpenFile(file.Path, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, IOError(op, err, "unsupported workbook %s", file.Name)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, IOError(op, nil, "unsupported workbook %s: no sheets", file.Name)
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, IOError(op, err, "unsupported workbook %s", file.Name)
	}
	if len(rows) == 0 {
		return nil, nil, nil
	}

	idx, err := indexHeader(rows[0])
	if err != nil {
		return nil, nil, err
	}

	importID := uuid.NewString()
	var (
		records []Record
		skipped []SkippedRow
	)

	for i, row := range rows[1:] {
		line := i + 2
		if isBlankRow(row) {
			continue
		}

		rec, err := buildRecord(row, idx)
		if err != nil {
			skipped = append(skipped, SkippedRow{Line: line, Reason: err.Error()})
			continue
		}
		rec.FileName = file.Name
		rec.ImportID = importID
		records = append(records, rec)
	}

	return records, skipped, nil
}

// headerIndex maps report column names to sheet column positions.
type headerIndex map[string]int

func (h headerIndex) get(row []string, column string) string {
	i, ok := h[column]
	if !ok || i >= len(row) {
		return ""
	}
	return cleanText(row[i])
}

// indexHeader matches header cells against ReportColumns, ignoring case and
// surrounding whitespace. Only CASE_ID is required.
func indexHeader(header []string) (headerIndex, error) {
	idx := make(headerIndex, len(ReportColumns))
	for i, cell := range header {
		name := strings.ToUpper(strings.TrimSpace(cell))
		for _, col := range ReportColumns {
			if name == col {
				if _, dup := idx[col]; !dup {
					idx[col] = i
				}
			}
		}
	}
	if _, ok := idx["CASE_ID"]; !ok {
		return nil, ValidationError("import.header", "missing required column: CASE_ID")
	}
	return idx, nil
}

func buildRecord(row []string, idx headerIndex) (Record, error) {
	rec := Record{
		CaseID:               idx.get(row, "CASE_ID"),
		FirstName:            idx.get(row, "FIRST_NAME"),
		LastName:             idx.get(row, "LAST_NAME"),
		ThirdPartyReference1: idx.get(row, "THIRD_PARTY_REFERENCE_1"),
	}
	if rec.CaseID == "" {
		return Record{}, fmt.Errorf("required field CASE_ID is empty")
	}

	resident, err := ParseResident(idx.get(row, "IS_CURRENT_UK_RESIDENT"))
	if err != nil {
		return Record{}, fmt.Errorf("IS_CURRENT_UK_RESIDENT: %w", err)
	}
	rec.IsCurrentUKResident = resident

	dob, err := ParseDate(idx.get(row, "DATE_OF_BIRTH"))
	if err != nil {
		return Record{}, fmt.Errorf("DATE_OF_BIRTH: %w", err)
	}
	rec.DateOfBirth = dob

	return rec, nil
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
