package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/JonMunkholm/casemaster/internal/core"

	_ "modernc.org/sqlite"
)

// SQLite is a single-file record store for local installs.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens the database at path. ":memory:" gives a private
// in-memory database.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: SQLite serializes writers anyway, and an in-memory
	// database exists only on the connection that created it.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	return &SQLite{db: db}, nil
}

func (s *SQLite) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *SQLite) Close() { s.db.Close() }

// FindByFileName returns the rows imported from name in insertion order.
func (s *SQLite) FindByFileName(ctx context.Context, name string) ([]core.Record, error) {
	rows, err := s.db.QueryContext(ctx, sqliteSelectByFileName, name)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", Table, err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var (
			r        core.Record
			resident sql.NullBool
			first    sql.NullString
			last     sql.NullString
			dob      sql.NullString
			ref      sql.NullString
		)
		if err := rows.Scan(&r.CaseID, &resident, &first, &last, &dob, &ref, &r.FileName, &r.ImportID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", Table, err)
		}

		if resident.Valid {
			r.IsCurrentUKResident = core.Bool(resident.Bool)
		}
		r.FirstName = first.String
		r.LastName = last.String
		r.ThirdPartyReference1 = ref.String

		var dobText *string
		if dob.Valid {
			dobText = &dob.String
		}
		if r.DateOfBirth, err = parseDate(dobText); err != nil {
			return nil, fmt.Errorf("parse date_of_birth for case %s: %w", r.CaseID, err)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", Table, err)
	}
	return records, nil
}

// InsertRecords writes records in one transaction.
func (s *SQLite) InsertRecords(ctx context.Context, records []core.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, sqliteInsert)
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		var resident any
		if r.IsCurrentUKResident != nil {
			resident = *r.IsCurrentUKResident
		}
		_, err := stmt.ExecContext(ctx,
			r.CaseID,
			resident,
			nullString(r.FirstName),
			nullString(r.LastName),
			formatDate(r.DateOfBirth),
			nullString(r.ThirdPartyReference1),
			r.FileName,
			r.ImportID,
		)
		if err != nil {
			return 0, fmt.Errorf("insert row %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return len(records), nil
}

func (s *SQLite) DeleteByFileName(ctx context.Context, name string) (int64, error) {
	return s.exec(ctx, "DELETE FROM case_master WHERE file_name = ?", name)
}

func (s *SQLite) DeleteAll(ctx context.Context) (int64, error) {
	return s.exec(ctx, "DELETE FROM case_master")
}

func (s *SQLite) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", Table, err)
	}
	return res.RowsAffected()
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
