package commands

import (
	"github.com/spf13/cobra"

	"github.com/kdeguzman/district4-tool/internal/server"
)

// ServeCmd creates the serve command
func ServeCmd(app *AppContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the district reporting web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			srv, err := server.New(app.Cfg, app.Database, app.SheetsClient, app.VersesClient, app.Logger)
			if err != nil {
				return err
			}
			return srv.Run()
		},
	}
}
