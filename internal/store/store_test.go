package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/stretchr/testify/require"
)

func TestBatches(t *testing.T) {

	tests := []struct {
		name string
		n    int
		size int
		want []int
	}{
		{"empty", 0, 3, nil},
		{"smaller than batch", 2, 3, []int{2}},
		{"exact", 6, 3, []int{3, 3}},
		{"remainder", 7, 3, []int{3, 3, 1}},
		{"default size", 501, 0, []int{500, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := batches(make([]core.Record, tt.n), tt.size)
			var sizes []int
			for _, b := range got {
				sizes = append(sizes, len(b))
			}
			require.Equal(t, tt.want, sizes)
		})
	}
}

func TestOpen_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cases.db")

	s, err := Open(context.Background(), config.StoreConfig{Driver: "SQLite", SQLitePath: path}, 0)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.InsertRecords(context.Background(), []core.Record{{CaseID: "C-1", FileName: "a.xlsx", ImportID: "imp"}})
	require.NoError(t, err)
	require.Equal(t, 1, n)
	require.FileExists(t, path)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), config.StoreConfig{Driver: "mysql"}, 0)
	require.ErrorContains(t, err, "unknown store driver")
}
