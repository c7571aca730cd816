package core

import (
	"context"
	"time"
)

// ReportSheetName is the name of the single sheet in a generated report.
const ReportSheetName = "CaseMaster Report"

// DateLayout is the layout used for dates in reports and imports.
const DateLayout = "2006-01-02"

// ReportColumns lists the report header in output order.
var ReportColumns = []string{
	"CASE_ID",
	"IS_CURRENT_UK_RESIDENT",
	"FIRST_NAME",
	"LAST_NAME",
	"DATE_OF_BIRTH",
	"THIRD_PARTY_REFERENCE_1",
}

// Record is one persisted case row.
type Record struct {
	CaseID               string
	IsCurrentUKResident  *bool // nil when the source cell was blank
	FirstName            string
	LastName             string
	DateOfBirth          *time.Time // nil when the source cell was blank
	ThirdPartyReference1 string

	FileName string // Base name of the spreadsheet the row came from
	ImportID string // Groups the rows of one import run
}

// RecordStore is the read side of the persistence layer.
type RecordStore interface {
	// FindByFileName returns all records whose file name equals name exactly,
	// in a stable order. It returns an empty slice, not an error, when nothing matches.
	FindByFileName(ctx context.Context, name string) ([]Record, error)
}

// RecordWriter is the write side of the persistence layer used by imports.
type RecordWriter interface {
	InsertRecords(ctx context.Context, records []Record) (int, error)
}

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// Date returns a pointer to the UTC date y-m-d.
func Date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}
