package cli

import (
	"strings"

	"github.com/JonMunkholm/casemaster/internal/core"
	"github.com/spf13/cobra"
)

// ImportCmd returns the import command.
func ImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <path>",
		Short: "Import the first sheet of an Excel workbook",
		Long: `Import reads the first sheet of the workbook at path and stores every
row under the workbook's base file name. Rows with a blank CASE_ID or an
unreadable date or residency flag are skipped and counted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := core.LocalFile(args[0])
			if err != nil {
				return err
			}

			s, err := app.OpenStore(cmd.Context(), app.Config)
			if err != nil {
				return err
			}
			defer s.Close()

			result, err := core.NewImportService(s).ProcessFile(cmd.Context(), file)
			if err != nil {
				return err
			}

			if strings.HasPrefix(result, core.UploadSuccessPrefix) {
				app.success("%s", result)
			} else {
				app.warn("%s", result)
			}
			return nil
		},
	}
}
