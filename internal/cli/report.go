package cli

import (
	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/spf13/cobra"
)

// ReportCmd returns the report command.
func ReportCmd(app *App) *cobra.Command {
	var outDir string

	cmd := &cobra.Command{
		Use:   "report <file-name>",
		Short: "Generate the CaseMaster report for an imported file",
		Long: `Report builds an Excel workbook of every record imported from
file-name and writes it as report_<file-name>.xlsx to the output directory
(REPORT_OUTPUT_DIR, default ~/Downloads).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := app.Config.Report.OutputDir
			if outDir != "" {
				dir = outDir
			}

			s, err := app.OpenStore(cmd.Context(), app.Config)
			if err != nil {
				return err
			}
			defer s.Close()

			data, err := core.NewReportService(s).GenerateReport(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			path, err := core.WriteArtifact(dir, args[0], data)
			if err != nil {
				return err
			}

			app.success("Report saved to %s", path)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outDir, "out", "o", "", "write the report to this directory")
	return cmd
}
