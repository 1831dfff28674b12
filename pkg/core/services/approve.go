package services

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/sheetparse"
)

// CellWriter issues targeted single-cell updates against the
// spreadsheet.
type CellWriter interface {
	UpdateCell(ctx context.Context, title string, row, col int, value string) error
}

// ApproveStore is the store side of an AO approval action.
type ApproveStore interface {
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	ReportRowsForMonth(ctx context.Context, year, month int) ([]model.ReportRow, error)
	GetOrCreateMonthlyReport(ctx context.Context, year, month int, pastorUsername string) (*model.MonthlyReport, error)
	SetMonthlyApproved(ctx context.Context, monthlyReportID int64, approved bool, at time.Time) error
}

// SetMonthStatus is the AO approval action: it rewrites only the status
// cell of every submitted sheet row for the pastor's (year, month),
// leaving all other cells untouched. approve=false resets the month to
// pending. Callers force a sync afterwards so the cache reflects the
// change.
func SetMonthStatus(ctx context.Context, store ApproveStore, sheet SheetSource, writer CellWriter, logger *zap.Logger, year, month int, pastorUsername string, approve bool) error {
	account, err := store.GetAccount(ctx, pastorUsername)
	if err != nil {
		return fmt.Errorf("failed to load pastor account: %w", err)
	}
	if account == nil {
		return fmt.Errorf("unknown pastor %q", pastorUsername)
	}

	// The status column position is only knowable from the live header;
	// re-resolve rather than assuming the cached layout.
	grid, err := sheet.ReadTab(ctx, TabReport)
	if err != nil {
		return fmt.Errorf("failed to read report header: %w", err)
	}
	if len(grid) == 0 {
		return fmt.Errorf("report tab has no header row")
	}
	cols := sheetparse.Resolve(grid[0], reportFields)
	statusIdx := cols["status"]
	if statusIdx < 0 {
		return fmt.Errorf("report tab has no status column")
	}

	cached, err := store.ReportRowsForMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to load cached report rows: %w", err)
	}

	churchKey := account.ChurchID
	if churchKey == "" {
		churchKey = account.ChurchAddress
	}
	matching := lo.Filter(cached, func(r model.ReportRow, _ int) bool {
		return (sameKey(r.Address, account.ChurchAddress) ||
			sameKey(r.Church, churchKey) ||
			sameKey(r.Pastor, account.Name)) && r.SheetRow > 0
	})
	if len(matching) == 0 {
		return fmt.Errorf("no submitted rows found for %s %d-%d", pastorUsername, year, month)
	}

	label := model.LabelPendingApproval
	if approve {
		label = model.LabelApproved
	}

	for _, r := range matching {
		if err := writer.UpdateCell(ctx, TabReport, r.SheetRow, statusIdx+1, label); err != nil {
			return fmt.Errorf("failed to update status cell at row %d: %w", r.SheetRow, err)
		}
	}

	mr, err := store.GetOrCreateMonthlyReport(ctx, year, month, pastorUsername)
	if err != nil {
		return fmt.Errorf("failed to load monthly report: %w", err)
	}
	if err := store.SetMonthlyApproved(ctx, mr.ID, approve, time.Now()); err != nil {
		return fmt.Errorf("failed to record approval: %w", err)
	}

	logger.Info("Month status updated",
		zap.Int("year", year), zap.Int("month", month),
		zap.String("pastor", pastorUsername),
		zap.String("status", label),
		zap.Int("rows", len(matching)))
	return nil
}
