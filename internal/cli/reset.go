package cli

import (
	"fmt"

	"github.com/JonMunkholm/casemaster/internal/admin"
	"github.com/spf13/cobra"
)

// ResetCmd returns the reset command.
func ResetCmd(app *App) *cobra.Command {
	var all, yes bool

	cmd := &cobra.Command{
		Use:   "reset [file-name]",
		Short: "Delete imported records",
		Long: `Reset deletes the records imported from file-name so the file can be
imported again. With --all every record is deleted; --yes is required then.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if all == (len(args) == 1) {
				return fmt.Errorf("give either a file name or --all")
			}
			if all && !yes {
				return fmt.Errorf("refusing to delete every record without --yes")
			}

			s, err := app.OpenStore(cmd.Context(), app.Config)
			if err != nil {
				return err
			}
			defer s.Close()

			r := &admin.Reset{Store: s}
			if all {
				n, err := r.ResetAll(cmd.Context())
				if err != nil {
					return err
				}
				app.success("Deleted %d records", n)
				return nil
			}

			n, err := r.ResetFile(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			app.success("Deleted %d records imported from %s", n, args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "delete every record")
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm --all")
	return cmd
}
