// Package store persists case records in PostgreSQL or SQLite.
package store

import (
	"context"
	"fmt"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultBatchSize is the number of rows written per batch when none is configured.
const DefaultBatchSize = 500

// Store is a record store with its lifecycle.
type Store interface {
	core.RecordStore
	core.RecordWriter

	// DeleteByFileName removes the rows imported from name.
	DeleteByFileName(ctx context.Context, name string) (int64, error)
	// DeleteAll removes every row.
	DeleteAll(ctx context.Context) (int64, error)

	// Migrate creates the schema if it does not exist.
	Migrate(ctx context.Context) error
	Close()
}

// Open connects to the store selected by cfg.Driver and migrates it.
func Open(ctx context.Context, cfg config.StoreConfig, batchSize int) (Store, error) {
	var (
		s   Store
		err error
	)

	switch cfg.DriverName() {
	case config.DriverPostgres:
		var pool *pgxpool.Pool
		pool, err = Connect(ctx, cfg)
		if err == nil {
			s = NewPostgres(pool, batchSize)
		}
	case config.DriverSQLite:
		s, err = OpenSQLite(cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	if err := s.Migrate(ctx); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// batches splits records into consecutive slices of at most size elements.
func batches(records []core.Record, size int) [][]core.Record {
	if size <= 0 {
		size = DefaultBatchSize
	}

	var out [][]core.Record
	for len(records) > size {
		out = append(out, records[:size:size])
		records = records[size:]
	}
	if len(records) > 0 {
		out = append(out, records)
	}
	return out
}
