package store

import (
	"time"

	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/jackc/pgx/v5/pgtype"
)

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgBool(b *bool) pgtype.Bool {
	if b == nil {
		return pgtype.Bool{}
	}
	return pgtype.Bool{Bool: *b, Valid: true}
}

func fromPgBool(b pgtype.Bool) *bool {
	if !b.Valid {
		return nil
	}
	return core.Bool(b.Bool)
}

func toPgDate(t *time.Time) pgtype.Date {
	if t == nil {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: *t, Valid: true}
}

func fromPgDate(d pgtype.Date) *time.Time {
	if !d.Valid {
		return nil
	}
	return core.Date(d.Time.Year(), d.Time.Month(), d.Time.Day())
}

// formatDate renders t as stored in SQLite. nil maps to SQL NULL.
func formatDate(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(core.DateLayout)
}

// parseDate reverses formatDate.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	t, err := time.Parse(core.DateLayout, *s)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
