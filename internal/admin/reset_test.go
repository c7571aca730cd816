package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/JonMunkholm/casemaster/internal/core"
)

type fakeDeleter struct {
	byName map[string]int64
	err    error
	all    bool
}

func (f *fakeDeleter) DeleteByFileName(_ context.Context, name string) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := f.byName[name]
	delete(f.byName, name)
	return n, nil
}

func (f *fakeDeleter) DeleteAll(context.Context) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.all = true
	var n int64
	for _, c := range f.byName {
		n += c
	}
	return n, nil
}

func TestResetFile(t *testing.T) {
	tests := []struct {
		name     string
		fileName string
		err      error
		wantRows int64
		wantKind error
	}{
		{"deletes rows", " a.xlsx ", nil, 3, nil},
		{"blank name", "  ", nil, 0, core.ErrValidation},
		{"nothing to delete", "missing.xlsx", nil, 0, core.ErrNotFound},
		{"store failure", "a.xlsx", errors.New("connection refused"), 0, core.ErrUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := &Reset{Store: &fakeDeleter{byName: map[string]int64{"a.xlsx": 3}, err: tt.err}}

			n, err := r.ResetFile(context.Background(), tt.fileName)
			if tt.wantKind == nil {
				if err != nil {
					t.Fatalf("ResetFile() error = %v", err)
				}
			} else if !errors.Is(err, tt.wantKind) {
				t.Fatalf("ResetFile() error = %v, want kind %v", err, tt.wantKind)
			}
			if n != tt.wantRows {
				t.Errorf("rows = %d, want %d", n, tt.wantRows)
			}
		})
	}
}

func TestResetAll(t *testing.T) {
	d := &fakeDeleter{byName: map[string]int64{"a.xlsx": 3, "b.xlsx": 2}}
	r := &Reset{Store: d}

	n, err := r.ResetAll(context.Background())
	if err != nil {
		t.Fatalf("ResetAll() error = %v", err)
	}
	if n != 5 || !d.all {
		t.Errorf("ResetAll() = %d (all=%v), want 5", n, d.all)
	}
}
