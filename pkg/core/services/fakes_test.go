package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
)

// fakeSheet is an in-memory spreadsheet: a grid per tab with 1-based row
// addressing matching the real client.
type fakeSheet struct {
	tabs      map[string][][]string
	readErr   map[string]error
	appendErr map[string]error
	readCalls int
	updates   []fakeCellUpdate
}

type fakeCellUpdate struct {
	tab   string
	row   int
	col   int
	value string
}

func newFakeSheet() *fakeSheet {
	return &fakeSheet{
		tabs:      make(map[string][][]string),
		readErr:   make(map[string]error),
		appendErr: make(map[string]error),
	}
}

func (f *fakeSheet) ReadTab(_ context.Context, title string) ([][]string, error) {
	f.readCalls++
	if err := f.readErr[title]; err != nil {
		return nil, err
	}
	return f.tabs[title], nil
}

func (f *fakeSheet) AppendRow(_ context.Context, title string, values []string) error {
	if err := f.appendErr[title]; err != nil {
		return err
	}
	f.tabs[title] = append(f.tabs[title], values)
	return nil
}

func (f *fakeSheet) DeleteRows(_ context.Context, title string, rowNums []int) error {
	sorted := append([]int(nil), rowNums...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	grid := f.tabs[title]
	for _, row := range sorted {
		idx := row - 1
		if idx < 0 || idx >= len(grid) {
			return fmt.Errorf("row %d out of range", row)
		}
		grid = append(grid[:idx], grid[idx+1:]...)
	}
	f.tabs[title] = grid
	return nil
}

func (f *fakeSheet) UpdateCell(_ context.Context, title string, row, col int, value string) error {
	f.updates = append(f.updates, fakeCellUpdate{tab: title, row: row, col: col, value: value})
	grid := f.tabs[title]
	if row-1 < len(grid) && col-1 < len(grid[row-1]) {
		grid[row-1][col-1] = value
	}
	return nil
}

// rowCount counts data rows (excluding the header) in a tab.
func (f *fakeSheet) rowCount(title string) int {
	if len(f.tabs[title]) == 0 {
		return 0
	}
	return len(f.tabs[title]) - 1
}

// fakeStore is an in-memory stand-in for the sqlite store.
type fakeStore struct {
	lastSync   *time.Time
	accounts   []model.Account
	reports    []model.ReportRow
	aopt       []model.AOPTRow
	prayers    []model.PrayerRequest
	monthly    map[string]*model.MonthlyReport
	sundays    map[int64]map[string]*model.SundayReport
	progress   map[int64]*model.ChurchProgress
	nextID     int64
	verses     map[string][2]string
	verseGets  int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		monthly:  make(map[string]*model.MonthlyReport),
		sundays:  make(map[int64]map[string]*model.SundayReport),
		progress: make(map[int64]*model.ChurchProgress),
		verses:   make(map[string][2]string),
		nextID:   1,
	}
}

func monthlyKey(year, month int, pastor string) string {
	return fmt.Sprintf("%d-%d-%s", year, month, pastor)
}

func (f *fakeStore) LastSync(context.Context) (time.Time, bool, error) {
	if f.lastSync == nil {
		return time.Time{}, false, nil
	}
	return *f.lastSync, true, nil
}

func (f *fakeStore) SetLastSync(_ context.Context, t time.Time) error {
	f.lastSync = &t
	return nil
}

func (f *fakeStore) ReplaceAccounts(_ context.Context, accounts []model.Account) error {
	f.accounts = accounts
	return nil
}

func (f *fakeStore) ReplaceReports(_ context.Context, rows []model.ReportRow) error {
	f.reports = rows
	return nil
}

func (f *fakeStore) ReplaceAOPT(_ context.Context, rows []model.AOPTRow) error {
	f.aopt = rows
	return nil
}

func (f *fakeStore) ReplacePrayerRequests(_ context.Context, reqs []model.PrayerRequest) error {
	f.prayers = reqs
	return nil
}

func (f *fakeStore) GetAccount(_ context.Context, username string) (*model.Account, error) {
	for i := range f.accounts {
		if f.accounts[i].Username == username {
			a := f.accounts[i]
			return &a, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListAccounts(context.Context) ([]model.Account, error) {
	return f.accounts, nil
}

func (f *fakeStore) ReportRowsForMonth(_ context.Context, year, month int) ([]model.ReportRow, error) {
	var out []model.ReportRow
	for _, r := range f.reports {
		if r.Year == year && r.Month == month {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) AOPTRows(context.Context) ([]model.AOPTRow, error) {
	return f.aopt, nil
}

func (f *fakeStore) GetOrCreateMonthlyReport(_ context.Context, year, month int, pastor string) (*model.MonthlyReport, error) {
	key := monthlyKey(year, month, pastor)
	if mr, ok := f.monthly[key]; ok {
		return mr, nil
	}
	mr := &model.MonthlyReport{
		ID:             f.nextID,
		Year:           year,
		Month:          month,
		PastorUsername: pastor,
	}
	f.nextID++
	f.monthly[key] = mr
	return mr, nil
}

func (f *fakeStore) UpsertSundayReport(_ context.Context, monthlyReportID int64, s *model.SundayReport) error {
	if f.sundays[monthlyReportID] == nil {
		f.sundays[monthlyReportID] = make(map[string]*model.SundayReport)
	}
	copied := *s
	copied.MonthlyReportID = monthlyReportID
	copied.IsComplete = true
	f.sundays[monthlyReportID][s.Date] = &copied
	return nil
}

func (f *fakeStore) SundayReports(_ context.Context, monthlyReportID int64) ([]model.SundayReport, error) {
	byDate := f.sundays[monthlyReportID]
	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)
	out := make([]model.SundayReport, 0, len(dates))
	for _, d := range dates {
		out = append(out, *byDate[d])
	}
	return out, nil
}

func (f *fakeStore) EnsureChurchProgress(_ context.Context, monthlyReportID int64) (*model.ChurchProgress, error) {
	if cp, ok := f.progress[monthlyReportID]; ok {
		return cp, nil
	}
	cp := &model.ChurchProgress{MonthlyReportID: monthlyReportID}
	f.progress[monthlyReportID] = cp
	return cp, nil
}

func (f *fakeStore) UpdateChurchProgress(_ context.Context, cp *model.ChurchProgress) error {
	f.progress[cp.MonthlyReportID] = cp
	return nil
}

func (f *fakeStore) SetMonthlyFlags(_ context.Context, monthlyReportID int64, submitted, approved bool) error {
	for _, mr := range f.monthly {
		if mr.ID == monthlyReportID {
			mr.Submitted = submitted
			mr.Approved = approved
			return nil
		}
	}
	return fmt.Errorf("monthly report %d not found", monthlyReportID)
}

func (f *fakeStore) SetMonthlySubmitted(_ context.Context, monthlyReportID int64, at time.Time) error {
	for _, mr := range f.monthly {
		if mr.ID == monthlyReportID {
			mr.Submitted = true
			mr.SubmittedAt = at.UTC().Format(time.RFC3339)
			return nil
		}
	}
	return fmt.Errorf("monthly report %d not found", monthlyReportID)
}

func (f *fakeStore) SetMonthlyApproved(_ context.Context, monthlyReportID int64, approved bool, at time.Time) error {
	for _, mr := range f.monthly {
		if mr.ID == monthlyReportID {
			mr.Approved = approved
			if approved {
				mr.ApprovedAt = at.UTC().Format(time.RFC3339)
			} else {
				mr.ApprovedAt = ""
			}
			return nil
		}
	}
	return fmt.Errorf("monthly report %d not found", monthlyReportID)
}

func (f *fakeStore) GetPrayerRequest(_ context.Context, requestID string) (*model.PrayerRequest, error) {
	for i := range f.prayers {
		if f.prayers[i].RequestID == requestID {
			r := f.prayers[i]
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) GetVerse(_ context.Context, date string) (string, string, bool, error) {
	f.verseGets++
	v, ok := f.verses[date]
	if !ok {
		return "", "", false, nil
	}
	return v[0], v[1], true, nil
}

func (f *fakeStore) PutVerse(_ context.Context, date, reference, text string) error {
	f.verses[date] = [2]string{reference, text}
	return nil
}
