package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/sheetparse"
)

// DefaultSyncInterval bounds how often the blocking spreadsheet read is
// paid; staleness inside the window is accepted.
const DefaultSyncInterval = 120 * time.Second

// SheetSource reads whole tabs from the external spreadsheet.
type SheetSource interface {
	ReadTab(ctx context.Context, title string) ([][]string, error)
}

// SyncStore is the cache side of a sync pass.
type SyncStore interface {
	LastSync(ctx context.Context) (time.Time, bool, error)
	SetLastSync(ctx context.Context, t time.Time) error
	ReplaceAccounts(ctx context.Context, accounts []model.Account) error
	ReplaceReports(ctx context.Context, rows []model.ReportRow) error
	ReplaceAOPT(ctx context.Context, rows []model.AOPTRow) error
	ReplacePrayerRequests(ctx context.Context, reqs []model.PrayerRequest) error
}

// Syncer pulls the four spreadsheet tabs into the local cache tables.
// Each tab is replaced wholesale per pass; the sheets are small enough
// that diffing would buy nothing.
type Syncer struct {
	source   SheetSource
	store    SyncStore
	logger   *zap.Logger
	interval time.Duration
	now      func() time.Time

	// one sync at a time; concurrent requests wait rather than issuing
	// duplicate reads
	mu sync.Mutex
}

// NewSyncer creates a Syncer with the given staleness interval. A zero
// interval means DefaultSyncInterval.
func NewSyncer(source SheetSource, store SyncStore, logger *zap.Logger, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Syncer{
		source:   source,
		store:    store,
		logger:   logger,
		interval: interval,
		now:      time.Now,
	}
}

// Sync refreshes the cache from the spreadsheet. Unless forced, it
// no-ops while the last sync is younger than the interval. A failure on
// one tab is logged and does not abort the others; that tab's cache
// keeps its previous (possibly stale) contents for this attempt. The
// sync timestamp advances only when at least one tab was refreshed.
func (s *Syncer) Sync(ctx context.Context, force bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if !force {
		last, ok, err := s.store.LastSync(ctx)
		if err != nil {
			return fmt.Errorf("failed to read last sync time: %w", err)
		}
		if ok && now.Sub(last) < s.interval {
			s.logger.Debug("Sync skipped, cache is fresh",
				zap.Time("last_sync", last),
				zap.Duration("interval", s.interval))
			return nil
		}
	}

	s.logger.Info("Syncing spreadsheet tabs into cache", zap.Bool("force", force))

	synced := 0
	synced += s.syncTab(ctx, TabAccounts, func(grid [][]string) error {
		return s.store.ReplaceAccounts(ctx, parseAccounts(grid))
	})
	synced += s.syncTab(ctx, TabReport, func(grid [][]string) error {
		return s.store.ReplaceReports(ctx, parseReports(grid))
	})
	synced += s.syncTab(ctx, TabAOPT, func(grid [][]string) error {
		return s.store.ReplaceAOPT(ctx, parseAOPT(grid))
	})
	synced += s.syncTab(ctx, TabPrayerRequest, func(grid [][]string) error {
		return s.store.ReplacePrayerRequests(ctx, parsePrayerRequests(grid))
	})

	if synced == 0 {
		return fmt.Errorf("sync failed: no tab could be read")
	}

	if err := s.store.SetLastSync(ctx, now); err != nil {
		return fmt.Errorf("failed to record sync time: %w", err)
	}

	s.logger.Info("Sync finished", zap.Int("tabs_synced", synced))
	return nil
}

// syncTab reads one tab and hands the grid to replace. Returns 1 on
// success, 0 on failure (logged, never fatal to the pass).
func (s *Syncer) syncTab(ctx context.Context, title string, replace func([][]string) error) int {
	grid, err := s.source.ReadTab(ctx, title)
	if err != nil {
		s.logger.Warn("Tab read failed, keeping previous cache",
			zap.String("tab", title), zap.Error(err))
		return 0
	}
	if err := replace(grid); err != nil {
		s.logger.Warn("Cache replace failed",
			zap.String("tab", title), zap.Error(err))
		return 0
	}
	s.logger.Debug("Tab synced", zap.String("tab", title), zap.Int("rows", len(grid)))
	return 1
}

// parseAccounts converts the Accounts grid. Rows without a username are
// skipped.
func parseAccounts(grid [][]string) []model.Account {
	if len(grid) < 2 {
		return nil
	}
	cols := sheetparse.Resolve(grid[0], accountFields)

	accounts := make([]model.Account, 0, len(grid)-1)
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		username := cols.Cell(row, "username")
		if username == "" {
			continue
		}
		accounts = append(accounts, model.Account{
			Username:      username,
			Name:          cols.Cell(row, "name"),
			ChurchAddress: cols.Cell(row, "church_address"),
			Password:      cols.Cell(row, "password"),
			AreaNumber:    cols.Cell(row, "area_number"),
			ChurchID:      cols.Cell(row, "church_id"),
			Contact:       cols.Cell(row, "contact"),
			Birthday:      cols.Cell(row, "birthday"),
			Position:      cols.Cell(row, "position"),
			SheetRow:      i + 1,
		})
	}
	return accounts
}

// parseReports converts the Report grid. Rows whose activity date is
// blank or unparseable are skipped; year and month derive from the
// date.
func parseReports(grid [][]string) []model.ReportRow {
	if len(grid) < 2 {
		return nil
	}
	cols := sheetparse.Resolve(grid[0], reportFields)

	rows := make([]model.ReportRow, 0, len(grid)-1)
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		activityDate, ok := sheetparse.Date(cols.Cell(row, "activity_date"))
		if !ok {
			continue
		}
		rows = append(rows, model.ReportRow{
			SheetRow:            i + 1,
			Year:                activityDate.Year(),
			Month:               int(activityDate.Month()),
			ActivityDate:        activityDate,
			Church:              cols.Cell(row, "church"),
			Pastor:              cols.Cell(row, "pastor"),
			Address:             cols.Cell(row, "address"),
			Adult:               sheetparse.Number(cols.Cell(row, "adult")),
			Youth:               sheetparse.Number(cols.Cell(row, "youth")),
			Children:            sheetparse.Number(cols.Cell(row, "children")),
			Tithes:              sheetparse.Amount(cols.Cell(row, "tithes")),
			Offering:            sheetparse.Amount(cols.Cell(row, "offering")),
			PersonalTithes:      sheetparse.Amount(cols.Cell(row, "personal_tithes")),
			MissionOffering:     sheetparse.Amount(cols.Cell(row, "mission_offering")),
			ReceivedJesus:       sheetparse.Number(cols.Cell(row, "received_jesus")),
			ExistingBibleStudy:  sheetparse.Number(cols.Cell(row, "existing_bible_study")),
			NewBibleStudy:       sheetparse.Number(cols.Cell(row, "new_bible_study")),
			WaterBaptized:       sheetparse.Number(cols.Cell(row, "water_baptized")),
			HolySpiritBaptized:  sheetparse.Number(cols.Cell(row, "holy_spirit_baptized")),
			ChildrensDedication: sheetparse.Number(cols.Cell(row, "childrens_dedication")),
			Healed:              sheetparse.Number(cols.Cell(row, "healed")),
			AmountToSend:        sheetparse.Amount(cols.Cell(row, "amount_to_send")),
			Status:              cols.Cell(row, "status"),
		})
	}
	return rows
}

// parseAOPT converts the AOPT grid. Rows without a month label are
// skipped.
func parseAOPT(grid [][]string) []model.AOPTRow {
	if len(grid) < 2 {
		return nil
	}
	cols := sheetparse.Resolve(grid[0], aoptFields)

	rows := make([]model.AOPTRow, 0, len(grid)-1)
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		month := cols.Cell(row, "month")
		if month == "" {
			continue
		}
		rows = append(rows, model.AOPTRow{
			SheetRow: i + 1,
			Month:    month,
			Amount:   sheetparse.Amount(cols.Cell(row, "amount")),
		})
	}
	return rows
}

// parsePrayerRequests converts the PrayerRequest grid. Rows without a
// request id are skipped.
func parsePrayerRequests(grid [][]string) []model.PrayerRequest {
	if len(grid) < 2 {
		return nil
	}
	cols := sheetparse.Resolve(grid[0], prayerRequestFields)

	reqs := make([]model.PrayerRequest, 0, len(grid)-1)
	for i := 1; i < len(grid); i++ {
		row := grid[i]
		requestID := cols.Cell(row, "request_id")
		if requestID == "" {
			continue
		}
		reqs = append(reqs, model.PrayerRequest{
			RequestID:      requestID,
			ChurchName:     cols.Cell(row, "church_name"),
			SubmittedBy:    cols.Cell(row, "submitted_by"),
			Title:          cols.Cell(row, "title"),
			RequestDate:    cols.Cell(row, "request_date"),
			RequestText:    cols.Cell(row, "request_text"),
			Status:         cols.Cell(row, "status"),
			PastorsPraying: cols.Cell(row, "pastors_praying"),
			AnsweredDate:   cols.Cell(row, "answered_date"),
			SheetRow:       i + 1,
		})
	}
	return reqs
}
