package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/JonMunkholm/casemaster/internal/store"
	"github.com/JonMunkholm/casemaster/internal/task"
	"github.com/JonMunkholm/casemaster/internal/ui"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func testApp(t *testing.T) (*App, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	dir := t.TempDir()

	var out, errOut bytes.Buffer
	app := &App{
		Config: &config.Config{
			Store:  config.StoreConfig{Driver: config.DriverSQLite, SQLitePath: filepath.Join(dir, "cases.db")},
			Upload: config.UploadConfig{BatchSize: 100, StagingDir: filepath.Join(dir, "staging")},
			Report: config.ReportConfig{OutputDir: filepath.Join(dir, "Downloads")},
			UI:     config.UIConfig{SuccessDelay: 3 * time.Second, FailureDelay: 5 * time.Second},
		},
		Out: &out,
		Err: &errOut,
	}
	return app, &out, &errOut
}

// writeCases writes a workbook with the report header and the given rows.
func writeCases(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := make([]any, len(core.ReportColumns))
	for i, c := range core.ReportColumns {
		header[i] = c
	}
	require.NoError(t, f.SetSheetRow(sheet, "A1", &header))
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func run(app *App, args ...string) int {
	return Execute(context.Background(), app, args)
}

func TestImportAndReport(t *testing.T) {
	app, out, errOut := testApp(t)
	path := writeCases(t, t.TempDir(), "cases.xlsx", [][]any{
		{"C-1", "yes", "Ann", "Smith", "1990-01-02", "REF-1"},
		{"C-2", "", "Bob", "Jones", "", ""},
	})

	require.Equal(t, 0, run(app, "import", path), errOut.String())
	require.Contains(t, out.String(), "Upload successful: 2 records imported from cases.xlsx")

	require.Equal(t, 0, run(app, "report", "cases.xlsx"), errOut.String())
	report := filepath.Join(app.Config.Report.OutputDir, "report_cases.xlsx")
	require.Contains(t, out.String(), "Report saved to "+report)

	f, err := excelize.OpenFile(report)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(core.ReportSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, core.ReportColumns, rows[0])
	require.Equal(t, "C-1", rows[1][0])
	require.Equal(t, "C-2", rows[2][0])
}

func TestReport_OutFlag(t *testing.T) {
	app, _, errOut := testApp(t)
	path := writeCases(t, t.TempDir(), "a.xlsx", [][]any{{"C-1"}})
	require.Equal(t, 0, run(app, "import", path), errOut.String())

	outDir := filepath.Join(t.TempDir(), "elsewhere")
	require.Equal(t, 0, run(app, "report", "a.xlsx", "--out", outDir), errOut.String())
	require.FileExists(t, filepath.Join(outDir, "report_a.xlsx"))
}

func TestReport_NotFound(t *testing.T) {
	app, _, errOut := testApp(t)

	require.Equal(t, 1, run(app, "report", "missing.xlsx"))
	require.Contains(t, errOut.String(), "RPT001")
	require.NoDirExists(t, app.Config.Report.OutputDir)
}

func TestImport_MissingFile(t *testing.T) {
	app, _, errOut := testApp(t)

	require.Equal(t, 1, run(app, "import", filepath.Join(t.TempDir(), "nope.xlsx")))
	require.NotEmpty(t, errOut.String())
}

func TestReset(t *testing.T) {
	app, out, errOut := testApp(t)
	path := writeCases(t, t.TempDir(), "a.xlsx", [][]any{{"C-1"}, {"C-2"}})
	require.Equal(t, 0, run(app, "import", path), errOut.String())

	require.Equal(t, 1, run(app, "reset"))
	require.Equal(t, 1, run(app, "reset", "--all"))

	require.Equal(t, 0, run(app, "reset", "a.xlsx"), errOut.String())
	require.Contains(t, out.String(), "Deleted 2 records imported from a.xlsx")

	require.Equal(t, 1, run(app, "report", "a.xlsx"))
}

func TestMachineWiring(t *testing.T) {
	app, _, _ := testApp(t)
	cfg := app.Config
	ctx := context.Background()

	s, err := store.Open(ctx, cfg.Store, cfg.Upload.BatchSize)
	require.NoError(t, err)
	defer s.Close()

	loopCtx, cancel := context.WithCancel(ctx)
	loop := task.NewLoop(0)
	go loop.Run(loopCtx)
	defer func() {
		cancel()
		<-loop.Done()
	}()

	clock := task.NewFakeClock()
	m := newMachine(loopCtx, cfg, s, loop, clock)

	src := writeCases(t, t.TempDir(), "cases.xlsx", [][]any{{"C-1", "no", "Ann"}})
	data, err := os.ReadFile(src)
	require.NoError(t, err)
	staged, err := core.StageUpload(cfg.Upload.StagingDir, "cases.xlsx", bytes.NewReader(data))
	require.NoError(t, err)

	call := func(fn func()) {
		t.Helper()
		require.NoError(t, loop.Call(ctx, fn))
	}
	waitPending := func() {
		t.Helper()
		var h *task.Handle
		call(func() { h = m.Pending() })
		require.NotNil(t, h)
		select {
		case <-h.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("task did not finish")
		}
	}
	state := func() ui.State {
		var st ui.State
		call(func() { st = m.State() })
		return st
	}

	call(func() {
		m.SelectFile(staged)
		m.Submit()
	})
	waitPending()

	st, ok := state().(ui.Processing)
	require.True(t, ok)
	require.True(t, strings.HasPrefix(st.Message, core.UploadSuccessPrefix), st.Message)
	require.NoFileExists(t, staged.Path, "staged copy should be removed after import")

	clock.Advance(cfg.UI.SuccessDelay)
	call(func() {})
	require.IsType(t, ui.ReportPrompt{}, state())

	call(func() { m.RequestReport("cases.xlsx") })
	waitPending()

	gen, ok := state().(ui.GeneratingReport)
	require.True(t, ok)
	require.Equal(t, "Download Successful! Report saved to Downloads folder.", gen.Message)
	require.FileExists(t, filepath.Join(cfg.Report.OutputDir, "report_cases.xlsx"))

	clock.Advance(cfg.UI.SuccessDelay)
	call(func() {})
	require.IsType(t, ui.Idle{}, state())
}
