package services

import (
	"context"
	"fmt"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
)

// SummaryStore is the store side of the AO dashboard.
type SummaryStore interface {
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ReportRowsForMonth(ctx context.Context, year, month int) ([]model.ReportRow, error)
	AOPTRows(ctx context.Context) ([]model.AOPTRow, error)
}

// ChurchSummary aggregates one pastor's submitted month for the AO
// dashboard.
type ChurchSummary struct {
	PastorUsername string
	PastorName     string
	ChurchKey      string
	SundayCount    int
	TotalAmount    decimal.Decimal
	Status         model.Status
	Submitted      bool
}

// DistrictSummaryResult is the AO dashboard's data for one month.
type DistrictSummaryResult struct {
	Year     int
	Month    int
	Churches []ChurchSummary
	// AOPTAmount is the district amount recorded for the month in the
	// AOPT tab, zero when absent.
	AOPTAmount decimal.Decimal
}

// DistrictSummary aggregates every pastor's cached submission state for
// one month. Pastors with no submitted rows still appear, marked not
// submitted, so the AO sees who is outstanding.
func DistrictSummary(ctx context.Context, store SummaryStore, year, month int, monthLabel string) (*DistrictSummaryResult, error) {
	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}

	rows, err := store.ReportRowsForMonth(ctx, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to load cached report rows: %w", err)
	}

	result := &DistrictSummaryResult{Year: year, Month: month, AOPTAmount: decimal.Zero}

	for _, account := range accounts {
		if account.IsAreaOverseer() {
			continue
		}
		churchKey := account.ChurchID
		if churchKey == "" {
			churchKey = account.ChurchAddress
		}

		mine := lo.Filter(rows, func(r model.ReportRow, _ int) bool {
			return sameKey(r.Address, account.ChurchAddress) ||
				sameKey(r.Church, churchKey) ||
				sameKey(r.Pastor, account.Name)
		})

		summary := ChurchSummary{
			PastorUsername: account.Username,
			PastorName:     account.Name,
			ChurchKey:      churchKey,
			SundayCount:    len(mine),
			TotalAmount:    decimal.Zero,
			Status:         model.StatusUnknown,
			Submitted:      len(mine) > 0,
		}
		for _, r := range mine {
			summary.TotalAmount = summary.TotalAmount.Add(r.AmountToSend)
		}
		if len(mine) > 0 {
			// Approved only when every row says so; a mixed month is
			// still pending.
			allApproved := lo.EveryBy(mine, func(r model.ReportRow) bool {
				return model.ParseStatus(r.Status) == model.StatusApproved
			})
			if allApproved {
				summary.Status = model.StatusApproved
			} else {
				summary.Status = model.StatusPending
			}
		}
		result.Churches = append(result.Churches, summary)
	}

	aopt, err := store.AOPTRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aopt rows: %w", err)
	}
	for _, r := range aopt {
		if sameKey(r.Month, monthLabel) {
			result.AOPTAmount = r.Amount
			break
		}
	}

	return result, nil
}
