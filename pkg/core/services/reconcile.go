package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
)

// ProjectStore is the store side of a reconciliation pass.
type ProjectStore interface {
	ReportRowsForMonth(ctx context.Context, year, month int) ([]model.ReportRow, error)
	GetOrCreateMonthlyReport(ctx context.Context, year, month int, pastorUsername string) (*model.MonthlyReport, error)
	UpsertSundayReport(ctx context.Context, monthlyReportID int64, s *model.SundayReport) error
	EnsureChurchProgress(ctx context.Context, monthlyReportID int64) (*model.ChurchProgress, error)
	UpdateChurchProgress(ctx context.Context, cp *model.ChurchProgress) error
	SetMonthlyFlags(ctx context.Context, monthlyReportID int64, submitted, approved bool) error
}

// ProjectMonth projects cached Report rows for one pastor and month into
// the local working tables. If the month is dirty (pending local edits)
// nothing is touched: local wins until the next successful export.
func ProjectMonth(ctx context.Context, store ProjectStore, logger *zap.Logger, rc *RequestContext, year, month int) error {
	if rc.IsDirty(year, month) {
		logger.Debug("Skipping projection, month has local edits",
			zap.Int("year", year), zap.Int("month", month),
			zap.String("pastor", rc.Username))
		return nil
	}

	rows, err := store.ReportRowsForMonth(ctx, year, month)
	if err != nil {
		return fmt.Errorf("failed to load cached report rows: %w", err)
	}

	churchKey := rc.ChurchKey()
	matching := lo.Filter(rows, func(r model.ReportRow, _ int) bool {
		return sameKey(r.Address, rc.ChurchAddress) ||
			sameKey(r.Church, churchKey) ||
			sameKey(r.Pastor, rc.Name)
	})
	if len(matching) == 0 {
		return nil
	}

	mr, err := store.GetOrCreateMonthlyReport(ctx, year, month, rc.Username)
	if err != nil {
		return fmt.Errorf("failed to load monthly report: %w", err)
	}

	for _, row := range matching {
		sunday := &model.SundayReport{
			Date:               row.ActivityDate.Format("2006-01-02"),
			AttendanceAdult:    row.Adult,
			AttendanceYouth:    row.Youth,
			AttendanceChildren: row.Children,
			TithesChurch:       row.Tithes,
			Offering:           row.Offering,
			Mission:            row.MissionOffering,
			TithesPersonal:     row.PersonalTithes,
		}
		if err := store.UpsertSundayReport(ctx, mr.ID, sunday); err != nil {
			return fmt.Errorf("failed to project sunday %s: %w", sunday.Date, err)
		}
	}

	// Spiritual metrics are shared across a month's rows on export, so
	// the first matching row carries the month's values.
	first := matching[0]
	cp, err := store.EnsureChurchProgress(ctx, mr.ID)
	if err != nil {
		return fmt.Errorf("failed to load church progress: %w", err)
	}
	cp.BibleNew = int(first.NewBibleStudy)
	cp.BibleExisting = int(first.ExistingBibleStudy)
	cp.ReceivedChrist = int(first.ReceivedJesus)
	cp.BaptizedWater = int(first.WaterBaptized)
	cp.BaptizedHolySpirit = int(first.HolySpiritBaptized)
	cp.Healed = int(first.Healed)
	cp.ChildDedication = int(first.ChildrensDedication)
	cp.IsComplete = true
	if err := store.UpdateChurchProgress(ctx, cp); err != nil {
		return fmt.Errorf("failed to project church progress: %w", err)
	}

	statuses := lo.Uniq(lo.FilterMap(matching, func(r model.ReportRow, _ int) (string, bool) {
		s := r.Status
		return s, s != ""
	}))
	submitted := len(statuses) > 0
	approved := lo.SomeBy(statuses, func(s string) bool {
		return model.ParseStatus(s) == model.StatusApproved
	})

	if err := store.SetMonthlyFlags(ctx, mr.ID, submitted, approved); err != nil {
		return fmt.Errorf("failed to update monthly flags: %w", err)
	}

	logger.Debug("Projected cached month into working tables",
		zap.Int("year", year), zap.Int("month", month),
		zap.String("pastor", rc.Username),
		zap.Int("sundays", len(matching)),
		zap.Bool("submitted", submitted),
		zap.Bool("approved", approved))
	return nil
}
