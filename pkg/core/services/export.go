package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/sheetparse"
)

// SheetWriter is the write side of the external spreadsheet.
type SheetWriter interface {
	AppendRow(ctx context.Context, title string, values []string) error
	DeleteRows(ctx context.Context, title string, rowNums []int) error
}

// ExportStore is the store side of an export.
type ExportStore interface {
	ReportRowsForMonth(ctx context.Context, year, month int) ([]model.ReportRow, error)
	GetOrCreateMonthlyReport(ctx context.Context, year, month int, pastorUsername string) (*model.MonthlyReport, error)
	SundayReports(ctx context.Context, monthlyReportID int64) ([]model.SundayReport, error)
	EnsureChurchProgress(ctx context.Context, monthlyReportID int64) (*model.ChurchProgress, error)
	SetMonthlySubmitted(ctx context.Context, monthlyReportID int64, at time.Time) error
}

// ExportMonth pushes a month's working tables back into the Report tab.
// Existing sheet rows for the same (year, month, church, pastor) are
// deleted first, which is what makes resubmission idempotent: repeated
// submits replace rows instead of duplicating them. Appends are
// best-effort per row; a failure on one Sunday does not stop the
// others. Callers force a sync and clear the dirty flag after success.
//
// Two sessions exporting the same church-month concurrently can still
// interleave delete and append; the tool is single-writer in practice
// and the next resubmission repairs any duplication.
func ExportMonth(ctx context.Context, store ExportStore, sheet SheetWriter, logger *zap.Logger, rc *RequestContext, year, month int, statusLabel string) error {
	mr, err := store.GetOrCreateMonthlyReport(ctx, year, month, rc.Username)
	if err != nil {
		return fmt.Errorf("failed to load monthly report: %w", err)
	}

	sundays, err := store.SundayReports(ctx, mr.ID)
	if err != nil {
		return fmt.Errorf("failed to load sunday reports: %w", err)
	}
	if len(sundays) == 0 {
		return fmt.Errorf("nothing to export for %d-%d", year, month)
	}

	cp, err := store.EnsureChurchProgress(ctx, mr.ID)
	if err != nil {
		return fmt.Errorf("failed to load church progress: %w", err)
	}

	// Locate prior submissions via the cache's recorded sheet rows. The
	// deletion must succeed before any append, otherwise a retry would
	// duplicate rows.
	cached, err := store.ReportRowsForMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to load cached report rows: %w", err)
	}
	churchKey := rc.ChurchKey()
	stale := lo.FilterMap(cached, func(r model.ReportRow, _ int) (int, bool) {
		match := sameKey(r.Address, rc.ChurchAddress) ||
			sameKey(r.Church, churchKey) ||
			sameKey(r.Pastor, rc.Name)
		return r.SheetRow, match && r.SheetRow > 0
	})
	if len(stale) > 0 {
		logger.Info("Deleting prior submission rows",
			zap.Int("year", year), zap.Int("month", month),
			zap.Int("rows", len(stale)))
		if err := sheet.DeleteRows(ctx, TabReport, stale); err != nil {
			return fmt.Errorf("failed to delete prior submission rows: %w", err)
		}
	}

	appended := 0
	for _, s := range sundays {
		date, ok := sheetparse.Date(s.Date)
		if !ok {
			logger.Warn("Skipping sunday with unparseable date", zap.String("date", s.Date))
			continue
		}
		row := exportRow(rc, &s, cp, date, statusLabel)
		if err := sheet.AppendRow(ctx, TabReport, row); err != nil {
			logger.Error("Failed to append report row, continuing",
				zap.String("date", s.Date), zap.Error(err))
			continue
		}
		appended++
	}
	if appended == 0 {
		return fmt.Errorf("export failed: no row could be appended")
	}

	if err := store.SetMonthlySubmitted(ctx, mr.ID, time.Now()); err != nil {
		return fmt.Errorf("failed to mark month submitted: %w", err)
	}

	logger.Info("Month exported",
		zap.Int("year", year), zap.Int("month", month),
		zap.String("pastor", rc.Username),
		zap.Int("rows", appended), zap.String("status", statusLabel))
	return nil
}

// exportRow builds one Report row in the sheet's physical column order.
// Spiritual metrics repeat on every row of the month.
func exportRow(rc *RequestContext, s *model.SundayReport, cp *model.ChurchProgress, date time.Time, statusLabel string) []string {
	amount := s.AmountToSend()

	byField := map[string]string{
		"church":               rc.ChurchKey(),
		"pastor":               rc.Name,
		"address":              rc.ChurchAddress,
		"adult":                formatCount(s.AttendanceAdult),
		"youth":                formatCount(s.AttendanceYouth),
		"children":             formatCount(s.AttendanceChildren),
		"tithes":               s.TithesChurch.String(),
		"offering":             s.Offering.String(),
		"personal_tithes":      s.TithesPersonal.String(),
		"mission_offering":     s.Mission.String(),
		"received_jesus":       strconv.Itoa(cp.ReceivedChrist),
		"existing_bible_study": strconv.Itoa(cp.BibleExisting),
		"new_bible_study":      strconv.Itoa(cp.BibleNew),
		"water_baptized":       strconv.Itoa(cp.BaptizedWater),
		"holy_spirit_baptized": strconv.Itoa(cp.BaptizedHolySpirit),
		"childrens_dedication": strconv.Itoa(cp.ChildDedication),
		"healed":               strconv.Itoa(cp.Healed),
		"activity_date":        sheetparse.SheetDate(date),
		"amount_to_send":       amount.String(),
		"status":               statusLabel,
	}

	row := make([]string, len(reportExportOrder))
	for i, field := range reportExportOrder {
		row[i] = byField[field]
	}
	return row
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
