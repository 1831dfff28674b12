package services

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
)

func pastorContext() *RequestContext {
	return &RequestContext{
		Username:      "juan",
		Name:          "Juan Dela Cruz",
		ChurchAddress: "123 Rizal St",
		ChurchID:      "D4-01",
		Role:          RolePastor,
	}
}

func cachedReportRow(day int, offering string, status string) model.ReportRow {
	return model.ReportRow{
		SheetRow:      day, // distinct, value irrelevant here
		Year:          2026,
		Month:         1,
		ActivityDate:  time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
		Church:        "D4-01",
		Pastor:        "Juan Dela Cruz",
		Address:       "123 Rizal St",
		Adult:         10,
		Offering:      decimal.RequireFromString(offering),
		NewBibleStudy: 3,
		ReceivedJesus: 2,
		Status:        status,
	}
}

func TestProjectMonthPopulatesWorkingTables(t *testing.T) {
	store := newFakeStore()
	store.reports = []model.ReportRow{
		cachedReportRow(4, "100", "Pending AO approval"),
		cachedReportRow(11, "200", "Pending AO approval"),
	}

	rc := pastorContext()
	require.NoError(t, ProjectMonth(context.Background(), store, zap.NewNop(), rc, 2026, 1))

	mr, err := store.GetOrCreateMonthlyReport(context.Background(), 2026, 1, "juan")
	require.NoError(t, err)
	assert.True(t, mr.Submitted)
	assert.False(t, mr.Approved)

	sundays, err := store.SundayReports(context.Background(), mr.ID)
	require.NoError(t, err)
	require.Len(t, sundays, 2)
	assert.Equal(t, "2026-01-04", sundays[0].Date)
	assert.True(t, sundays[0].IsComplete)
	assert.True(t, sundays[0].Offering.Equal(decimal.RequireFromString("100")))

	cp := store.progress[mr.ID]
	require.NotNil(t, cp)
	assert.Equal(t, 3, cp.BibleNew)
	assert.Equal(t, 2, cp.ReceivedChrist)
	assert.True(t, cp.IsComplete)
}

func TestProjectMonthDirtyPrecedence(t *testing.T) {
	store := newFakeStore()
	store.reports = []model.ReportRow{cachedReportRow(4, "999", "Pending AO approval")}

	rc := pastorContext()
	mr, err := store.GetOrCreateMonthlyReport(context.Background(), 2026, 1, "juan")
	require.NoError(t, err)

	// The pastor entered a local value and the month is dirty.
	local := &model.SundayReport{Date: "2026-01-04", Offering: decimal.RequireFromString("42")}
	require.NoError(t, store.UpsertSundayReport(context.Background(), mr.ID, local))
	rc.MarkDirty(2026, 1)

	require.NoError(t, ProjectMonth(context.Background(), store, zap.NewNop(), rc, 2026, 1))

	sundays, err := store.SundayReports(context.Background(), mr.ID)
	require.NoError(t, err)
	require.Len(t, sundays, 1)
	assert.True(t, sundays[0].Offering.Equal(decimal.RequireFromString("42")),
		"dirty month must not be overwritten by cache values")

	// After export the flag clears and projection may overwrite.
	rc.ClearDirty(2026, 1)
	require.NoError(t, ProjectMonth(context.Background(), store, zap.NewNop(), rc, 2026, 1))

	sundays, err = store.SundayReports(context.Background(), mr.ID)
	require.NoError(t, err)
	assert.True(t, sundays[0].Offering.Equal(decimal.RequireFromString("999")))
}

func TestProjectMonthApprovedDetection(t *testing.T) {
	store := newFakeStore()
	store.reports = []model.ReportRow{
		cachedReportRow(4, "100", "Pending AO approval"),
		cachedReportRow(11, "100", "Approved"),
	}

	rc := pastorContext()
	require.NoError(t, ProjectMonth(context.Background(), store, zap.NewNop(), rc, 2026, 1))

	mr, err := store.GetOrCreateMonthlyReport(context.Background(), 2026, 1, "juan")
	require.NoError(t, err)
	assert.True(t, mr.Submitted)
	assert.True(t, mr.Approved, "any approved status marks the month approved")
}

func TestProjectMonthNoMatchingRows(t *testing.T) {
	store := newFakeStore()
	other := cachedReportRow(4, "100", "Approved")
	other.Church = "D4-99"
	other.Pastor = "Somebody Else"
	other.Address = "1 Other St"
	store.reports = []model.ReportRow{other}

	rc := pastorContext()
	require.NoError(t, ProjectMonth(context.Background(), store, zap.NewNop(), rc, 2026, 1))

	assert.Empty(t, store.monthly, "nothing to project leaves the working tables alone")
}

func TestProjectMonthMatchesTolerantly(t *testing.T) {
	store := newFakeStore()
	row := cachedReportRow(4, "100", "Pending AO approval")
	row.Church = "  d4-01 "
	row.Pastor = "JUAN  DELA CRUZ"
	row.Address = "somewhere else"
	store.reports = []model.ReportRow{row}

	rc := pastorContext()
	require.NoError(t, ProjectMonth(context.Background(), store, zap.NewNop(), rc, 2026, 1))

	mr, err := store.GetOrCreateMonthlyReport(context.Background(), 2026, 1, "juan")
	require.NoError(t, err)
	assert.True(t, mr.Submitted, "case and whitespace differences still match")
}
