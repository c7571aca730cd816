package cli

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/JonMunkholm/casemaster/internal/store"
	"github.com/JonMunkholm/casemaster/internal/task"
	"github.com/JonMunkholm/casemaster/internal/ui"
	"github.com/JonMunkholm/casemaster/internal/web"
	"github.com/spf13/cobra"
)

// ServeCmd returns the serve command.
func ServeCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the operator page",
		Long: `Serve starts the operator page on SERVER_HOST:SERVER_PORT. The page
walks one operator through selecting a spreadsheet, importing it and
generating its report. Stop it with Ctrl-C.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.OpenStore(cmd.Context(), app.Config)
			if err != nil {
				return err
			}
			defer s.Close()

			return serve(cmd.Context(), app.Config, s)
		},
	}
}

// newMachine wires the interaction machine to the store and loop.
func newMachine(ctx context.Context, cfg *config.Config, s store.Store, loop *task.Loop, clock task.Clock) *ui.Machine {
	return ui.NewMachine(ui.Options{
		Importer: core.NewImportService(s),
		Reports:  core.NewReportService(s),
		WriteReport: func(fileName string, data []byte) (string, error) {
			return core.WriteArtifact(cfg.Report.OutputDir, fileName, data)
		},
		Dispatcher:   loop,
		Clock:        clock,
		SuccessDelay: cfg.UI.SuccessDelay,
		FailureDelay: cfg.UI.FailureDelay,
		Discard: func(f core.StagedFile) {
			if err := core.RemoveStaged(f); err != nil {
				slog.Warn("failed to remove staged file", "path", f.Path, "error", err)
			}
		},
		Context: ctx,
	})
}

// serve runs the page until ctx is cancelled. The machine is closed before
// the HTTP server so open event streams end and Shutdown does not wait on them.
func serve(ctx context.Context, cfg *config.Config, s store.Store) error {
	loopCtx, stopLoop := context.WithCancel(context.Background())
	defer stopLoop()

	loop := task.NewLoop(task.DefaultQueueSize)
	go loop.Run(loopCtx)

	machine := newMachine(loopCtx, cfg, s, loop, task.SystemClock{})
	server := web.NewServer(cfg, loop, machine)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		slog.Info("shutting down...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := loop.Call(shutdownCtx, machine.Close); err != nil {
		slog.Warn("event loop did not stop cleanly", "error", err)
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
	stopLoop()
	<-loop.Done()

	slog.Info("server stopped")
	return nil
}
