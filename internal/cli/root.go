package cli

import (
	"context"

	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/spf13/cobra"
)

// RootCmd returns the casemaster command tree bound to app.
func RootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:   "casemaster",
		Short: "Import case spreadsheets and generate CaseMaster reports",
		Long: `casemaster stores the rows of uploaded case spreadsheets and builds
Excel reports of every case imported from a given file name.

Run "casemaster serve" for the operator page, or use the import and
report commands directly.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return app.setup()
		},
	}

	root.PersistentFlags().StringVar(&app.envFile, "env-file", "", "load variables from this file instead of .env")

	root.AddCommand(ServeCmd(app))
	root.AddCommand(ImportCmd(app))
	root.AddCommand(ReportCmd(app))
	root.AddCommand(ResetCmd(app))
	return root
}

// Execute runs the command tree and prints a failure for the operator.
// It returns the process exit code.
func Execute(ctx context.Context, app *App, args []string) int {
	root := RootCmd(app)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		app.failure("Error: %s", core.FormatUserError(err))
		return 1
	}
	return 0
}
