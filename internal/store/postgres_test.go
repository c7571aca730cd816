package store

import (
	"context"
	"os"
	"testing"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func TestPgConversions(t *testing.T) {
	require.False(t, toPgText("").Valid)
	require.Equal(t, "x", toPgText("x").String)

	require.Nil(t, fromPgBool(toPgBool(nil)))
	require.True(t, *fromPgBool(toPgBool(core.Bool(true))))

	require.Nil(t, fromPgDate(toPgDate(nil)))
	require.Equal(t, core.Date(1990, 1, 2), fromPgDate(toPgDate(core.Date(1990, 1, 2))))
}

// TestPostgres_RoundTrip runs against the database named by
// CASEMASTER_TEST_DATABASE_URL and is skipped when it is unset.
func TestPostgres_RoundTrip(t *testing.T) {
	url := os.Getenv("CASEMASTER_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("CASEMASTER_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := Connect(ctx, config.StoreConfig{URL: url, MaxConns: 2, MinConns: 0})
	require.NoError(t, err)
	s := NewPostgres(pool, 2)
	defer s.Close()
	require.NoError(t, s.Migrate(ctx))

	// A unique file name keeps reruns independent.
	name := "test-" + uuid.NewString() + ".xlsx"
	records := []core.Record{
		{CaseID: "C-1", IsCurrentUKResident: core.Bool(true), FirstName: "Ann", DateOfBirth: core.Date(1990, 1, 2), FileName: name, ImportID: "imp"},
		{CaseID: "C-2", FileName: name, ImportID: "imp"},
		{CaseID: "C-3", FileName: name, ImportID: "imp"},
	}

	n, err := s.InsertRecords(ctx, records)
	require.NoError(t, err)
	require.Equal(t, 3, n)

	got, err := s.FindByFileName(ctx, name)
	require.NoError(t, err)
	require.Equal(t, records, got)

	_, err = pool.Exec(ctx, "DELETE FROM case_master WHERE file_name = $1", name)
	require.NoError(t, err)
}
