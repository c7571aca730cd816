// Package admin provides destructive maintenance operations on the record store.
package admin

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/JonMunkholm/casemaster/internal/core"
)

// ResetTimeout is the maximum duration of a reset.
const ResetTimeout = 30 * time.Second

// Deleter is the part of the store a reset needs.
type Deleter interface {
	DeleteByFileName(ctx context.Context, name string) (int64, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// Reset removes imported records.
type Reset struct {
	Store Deleter
}

// ResetFile deletes the rows imported from fileName so the file can be
// imported again.
func (r *Reset) ResetFile(ctx context.Context, fileName string) (int64, error) {
	const op = "admin.reset_file"

	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return 0, core.ValidationError(op, "a file name is required")
	}

	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	n, err := r.Store.DeleteByFileName(ctx, fileName)
	if err != nil {
		return 0, core.UnknownError(op, err)
	}
	if n == 0 {
		return 0, core.NotFoundError(op, "No records found for file name: '%s'", fileName)
	}

	slog.Info("records reset", "file_name", fileName, "rows", n)
	return n, nil
}

// ResetAll deletes every imported row. This is a destructive operation.
func (r *Reset) ResetAll(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, ResetTimeout)
	defer cancel()

	n, err := r.Store.DeleteAll(ctx)
	if err != nil {
		return 0, core.UnknownError("admin.reset_all", err)
	}

	slog.Warn("all records reset", "rows", n)
	return n, nil
}
