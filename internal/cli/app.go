// Package cli implements the casemaster command line.
package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/JonMunkholm/casemaster/internal/config"
	"github.com/JonMunkholm/casemaster/internal/logging"
	"github.com/JonMunkholm/casemaster/internal/store"
	"github.com/fatih/color"
	"github.com/joho/godotenv"
)

// App carries what every command needs. Fields left nil are filled from the
// environment on first use.
type App struct {
	Config    *config.Config
	OpenStore func(ctx context.Context, cfg *config.Config) (store.Store, error)
	Out       io.Writer
	Err       io.Writer

	envFile string
}

// NewApp returns an App that reads .env and the process environment.
func NewApp() *App {
	return &App{Out: os.Stdout, Err: os.Stderr}
}

// setup loads configuration and logging once per process.
func (a *App) setup() error {
	if a.Out == nil {
		a.Out = os.Stdout
	}
	if a.Err == nil {
		a.Err = os.Stderr
	}
	if a.OpenStore == nil {
		a.OpenStore = func(ctx context.Context, cfg *config.Config) (store.Store, error) {
			return store.Open(ctx, cfg.Store, cfg.Upload.BatchSize)
		}
	}
	if a.Config != nil {
		return nil
	}

	// Overload lets .env win over inherited variables.
	if err := godotenv.Overload(a.envFiles()...); err != nil {
		slog.Debug("no .env file loaded, using environment variables", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())

	a.Config = cfg
	return nil
}

func (a *App) envFiles() []string {
	if a.envFile == "" {
		return nil
	}
	return []string{a.envFile}
}

func (a *App) success(format string, args ...any) {
	color.New(color.FgGreen).Fprintf(a.Out, format+"\n", args...)
}

func (a *App) warn(format string, args ...any) {
	color.New(color.FgYellow).Fprintf(a.Out, format+"\n", args...)
}

func (a *App) failure(format string, args ...any) {
	color.New(color.FgRed).Fprintf(a.Err, format+"\n", args...)
}
