package core

// convert.go turns raw spreadsheet cell text into record fields.
//
// Cells are read raw, so a date cell arrives as an Excel serial number while
// a text cell keeps whatever the operator typed. Both are accepted.

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// TwoDigitYearPivot defines how 2-digit years are interpreted.
// Years that would land more than this many years in the future are moved
// to the previous century.
var TwoDigitYearPivot = 20

var (
	twoDigitYearLayouts = []string{
		"02/01/06", "2/1/06", "02-01-06",
	}
	fourDigitYearLayouts = []string{
		"2006-01-02", "2006/01/02",
		"02/01/2006", "2/1/2006", "02-01-2006", "02.01.2006",
		"2 Jan 2006", "Jan 2, 2006",
		"20060102",
		time.RFC3339,
	}
)

// Excel serial dates for years 1900 through 9999.
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

// ParseResident parses a residency flag. Blank input yields nil.
func ParseResident(s string) (*bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "true", "t", "yes", "y", "1":
		return Bool(true), nil
	case "false", "f", "no", "n", "0":
		return Bool(false), nil
	default:
		return nil, fmt.Errorf("invalid boolean %q", s)
	}
}

// ParseDate parses a birth date. Blank input yields nil.
// Numbers are read as Excel serial dates; slash dates are day-first.
func ParseDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}

	if serial, err := strconv.ParseFloat(s, 64); err == nil && serial >= minExcelSerial && serial <= maxExcelSerial {
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q: %w", s, err)
		}
		return dateOnly(t), nil
	}

	for _, layout := range fourDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return dateOnly(t), nil
		}
	}

	pivotYear := time.Now().Year() + TwoDigitYearPivot
	for _, layout := range twoDigitYearLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			if t.Year() > pivotYear {
				t = t.AddDate(-100, 0, 0)
			}
			return dateOnly(t), nil
		}
	}

	return nil, fmt.Errorf("invalid date %q", s)
}

// dateOnly drops the clock part of t, keeping the calendar date in UTC.
func dateOnly(t time.Time) *time.Time {
	d := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &d
}

// cleanText trims whitespace and strips an Excel ="..." text guard.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}
