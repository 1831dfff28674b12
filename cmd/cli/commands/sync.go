package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kdeguzman/district4-tool/pkg/core/services"
)

// SyncCmd creates the sync command
func SyncCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Force a cache refresh from the district spreadsheet",
		RunE: func(cmd *cobra.Command, args []string) error {
			syncer := services.NewSyncer(app.SheetsClient, app.Database, app.Logger, app.Cfg.SyncInterval())
			if err := syncer.Sync(app.Ctx, true); err != nil {
				return err
			}

			accounts, err := app.Database.ListAccounts(app.Ctx)
			if err != nil {
				return err
			}
			fmt.Printf("\n✓ Cache refreshed: %d accounts on file\n", len(accounts))
			return nil
		},
	}
}
