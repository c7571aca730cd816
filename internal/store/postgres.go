package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Postgres is a record store backed by a pgx connection pool.
type Postgres struct {
	pool      *pgxpool.Pool
	batchSize int
}

// Connect opens and pings a pool configured from cfg.
func Connect(ctx context.Context, cfg config.StoreConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if u, err := url.Parse(cfg.URL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	} else {
		slog.Info("connected to database")
	}
	return pool, nil
}

// NewPostgres wraps pool. Inserts are copied in batches of batchSize rows.
func NewPostgres(pool *pgxpool.Pool, batchSize int) *Postgres {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Postgres{pool: pool, batchSize: batchSize}
}

func (p *Postgres) Migrate(ctx context.Context) error {
	if _, err := p.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("migrate %s: %w", Table, err)
	}
	return nil
}

func (p *Postgres) Close() { p.pool.Close() }

// FindByFileName returns the rows imported from name in insertion order.
func (p *Postgres) FindByFileName(ctx context.Context, name string) ([]core.Record, error) {
	rows, err := p.pool.Query(ctx, pgSelectByFileName, name)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", Table, err)
	}
	defer rows.Close()

	records := []core.Record{}
	for rows.Next() {
		var (
			r        core.Record
			resident pgtype.Bool
			first    pgtype.Text
			last     pgtype.Text
			dob      pgtype.Date
			ref      pgtype.Text
		)
		if err := rows.Scan(&r.CaseID, &resident, &first, &last, &dob, &ref, &r.FileName, &r.ImportID); err != nil {
			return nil, fmt.Errorf("scan %s: %w", Table, err)
		}

		r.IsCurrentUKResident = fromPgBool(resident)
		r.FirstName = first.String
		r.LastName = last.String
		r.DateOfBirth = fromPgDate(dob)
		r.ThirdPartyReference1 = ref.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", Table, err)
	}
	return records, nil
}

// InsertRecords copies records in one transaction. Either every row is
// stored or none is.
func (p *Postgres) InsertRecords(ctx context.Context, records []core.Record) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var total int64
	for _, batch := range batches(records, p.batchSize) {
		rows := make([][]any, len(batch))
		for i, r := range batch {
			rows[i] = []any{
				r.CaseID,
				toPgBool(r.IsCurrentUKResident),
				toPgText(r.FirstName),
				toPgText(r.LastName),
				toPgDate(r.DateOfBirth),
				toPgText(r.ThirdPartyReference1),
				r.FileName,
				r.ImportID,
			}
		}

		n, err := tx.CopyFrom(ctx, pgx.Identifier{Table}, columns, pgx.CopyFromRows(rows))
		if err != nil {
			return 0, fmt.Errorf("copy into %s: %w", Table, err)
		}
		total += n
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(total), nil
}

func (p *Postgres) DeleteByFileName(ctx context.Context, name string) (int64, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM case_master WHERE file_name = $1", name)
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", Table, err)
	}
	return tag.RowsAffected(), nil
}

func (p *Postgres) DeleteAll(ctx context.Context) (int64, error) {
	tag, err := p.pool.Exec(ctx, "DELETE FROM case_master")
	if err != nil {
		return 0, fmt.Errorf("delete from %s: %w", Table, err)
	}
	return tag.RowsAffected(), nil
}
