package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/cmd/cli/commands"
	"github.com/kdeguzman/district4-tool/internal/config"
	"github.com/kdeguzman/district4-tool/pkg/clients/sheetsclient"
	"github.com/kdeguzman/district4-tool/pkg/clients/versesclient"
	"github.com/kdeguzman/district4-tool/pkg/db"
	"github.com/kdeguzman/district4-tool/pkg/utils/logging"
)

var (
	configPath string
	verbose    bool
	app        *commands.AppContext
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "district4",
		Short: "District 4 reporting tool",
		Long:  `Weekly attendance and financial reporting for the district's churches, backed by the shared Google Sheet.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp(cmd.Name())
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.Logger != nil {
				app.Logger.Sync()
			}
			if app != nil && app.Database != nil {
				app.Database.Close()
			}
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to district4_config.yaml (default: search cwd and home)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on the console")

	rootCmd.AddCommand(commands.ServeCmd(appRef()))
	rootCmd.AddCommand(commands.SyncCmd(appRef()))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// appRef returns the shared AppContext pointer; its fields are filled in
// by initApp before any RunE fires.
func appRef() *commands.AppContext {
	if app == nil {
		app = &commands.AppContext{}
	}
	return app
}

// initApp sets up logger, config, clients, and database
func initApp(component string) error {
	a := appRef()
	a.Ctx = context.Background()

	var err error
	a.Logger, err = logging.InitLogger(component, verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.Logger.Info("Starting application", zap.String("command", component))

	a.Logger.Info("Loading configuration")
	if configPath != "" {
		a.Cfg, err = config.LoadFromPath(configPath)
	} else {
		a.Cfg, err = config.Load()
	}
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	a.Logger.Debug("Configuration loaded successfully")

	a.Logger.Info("Connecting to Google Sheets")
	a.SheetsClient, err = sheetsclient.NewClient(a.Ctx, a.Cfg.CredentialsFile, a.Cfg.SpreadsheetID)
	if err != nil {
		return fmt.Errorf("failed to create sheets client: %w", err)
	}

	a.VersesClient = versesclient.NewClient(a.Cfg.VerseAPIBaseURL)

	a.Logger.Info("Opening database", zap.String("path", a.Cfg.DatabasePath))
	a.Database, err = db.New(a.Cfg.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	if err := a.Database.Initialize(a.Ctx); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	return nil
}
