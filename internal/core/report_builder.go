package core

import (
	"fmt"
	"strconv"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
)

// reportDateFormat is the number format applied to birth date cells.
const reportDateFormat = "yyyy-mm-dd"

// Column widths are measured in characters. Excel caps a column at 255.
const (
	minColumnWidth = 8
	maxColumnWidth = 255
	columnPadding  = 2
)

// BuildFunc turns a record set into a serialized workbook.
type BuildFunc func(records []Record) ([]byte, error)

// BuildReport writes records into a single-sheet workbook and returns its bytes.
//
// Rows keep input order. A missing residency flag or birth date becomes an
// empty text cell, never an unset one. An empty record set is rejected with
// ErrEmptyInput.
func BuildReport(records []Record) ([]byte, error) {
	if len(records) == 0 {
		return nil, ErrEmptyInput
	}

	f := excelize.NewFile()
	defer f.Close()

	sheet := ReportSheetName
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return nil, fmt.Errorf("name sheet: %w", err)
	}

	dateFmt := reportDateFormat
	dateStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &dateFmt})
	if err != nil {
		return nil, fmt.Errorf("create date style: %w", err)
	}

	widths := make([]int, len(ReportColumns))
	track := func(col int, text string) {
		if n := utf8.RuneCountInString(text); n > widths[col] {
			widths[col] = n
		}
	}

	for col, name := range ReportColumns {
		if err := setCell(f, sheet, col, 1, name); err != nil {
			return nil, err
		}
		track(col, name)
	}

	for i, rec := range records {
		row := i + 2
		values := []string{
			rec.CaseID,
			formatResident(rec.IsCurrentUKResident),
			rec.FirstName,
			rec.LastName,
			"", // date of birth, written below
			rec.ThirdPartyReference1,
		}

		for col, v := range values {
			if col == 4 && rec.DateOfBirth != nil {
				continue
			}
			if err := setCell(f, sheet, col, row, v); err != nil {
				return nil, err
			}
			track(col, v)
		}

		if rec.DateOfBirth != nil {
			cell, _ := excelize.CoordinatesToCellName(5, row)
			if err := f.SetCellValue(sheet, cell, *rec.DateOfBirth); err != nil {
				return nil, fmt.Errorf("write %s: %w", cell, err)
			}
			if err := f.SetCellStyle(sheet, cell, cell, dateStyle); err != nil {
				return nil, fmt.Errorf("style %s: %w", cell, err)
			}
			track(4, rec.DateOfBirth.Format(DateLayout))
		}
	}

	if err := autoSizeColumns(f, sheet, widths); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// setCell writes a text value at the zero-based column and one-based row.
func setCell(f *excelize.File, sheet string, col, row int, value string) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, cell, value); err != nil {
		return fmt.Errorf("write %s: %w", cell, err)
	}
	return nil
}

// autoSizeColumns sets each column to the width of its longest rendered value.
func autoSizeColumns(f *excelize.File, sheet string, widths []int) error {
	for col, w := range widths {
		name, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return err
		}
		width := min(max(w+columnPadding, minColumnWidth), maxColumnWidth)
		if err := f.SetColWidth(sheet, name, name, float64(width)); err != nil {
			return fmt.Errorf("size column %s: %w", name, err)
		}
	}
	return nil
}

func formatResident(b *bool) string {
	if b == nil {
		return ""
	}
	return strconv.FormatBool(*b)
}
