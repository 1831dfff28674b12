package commands

import (
	"context"

	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/internal/config"
	"github.com/kdeguzman/district4-tool/pkg/clients/sheetsclient"
	"github.com/kdeguzman/district4-tool/pkg/clients/versesclient"
	"github.com/kdeguzman/district4-tool/pkg/db"
)

// AppContext holds the application dependencies shared across all commands
type AppContext struct {
	Cfg          *config.Config
	SheetsClient *sheetsclient.Client
	VersesClient *versesclient.Client
	Database     *db.DB
	Logger       *zap.Logger
	Ctx          context.Context
}
