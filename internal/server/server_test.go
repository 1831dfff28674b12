package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"sort"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/internal/config"
	"github.com/kdeguzman/district4-tool/pkg/db"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// memSheet is an in-memory spreadsheet for handler tests.
type memSheet struct {
	tabs map[string][][]string
}

func (m *memSheet) ReadTab(_ context.Context, title string) ([][]string, error) {
	return m.tabs[title], nil
}

func (m *memSheet) AppendRow(_ context.Context, title string, values []string) error {
	m.tabs[title] = append(m.tabs[title], values)
	return nil
}

func (m *memSheet) UpdateCell(_ context.Context, title string, row, col int, value string) error {
	grid := m.tabs[title]
	if row-1 >= len(grid) || col-1 >= len(grid[row-1]) {
		return fmt.Errorf("cell %d,%d out of range", row, col)
	}
	grid[row-1][col-1] = value
	return nil
}

func (m *memSheet) DeleteRows(_ context.Context, title string, rowNums []int) error {
	sorted := append([]int(nil), rowNums...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))
	grid := m.tabs[title]
	for _, row := range sorted {
		idx := row - 1
		if idx < 0 || idx >= len(grid) {
			return fmt.Errorf("row %d out of range", row)
		}
		grid = append(grid[:idx], grid[idx+1:]...)
	}
	m.tabs[title] = grid
	return nil
}

type staticLookup struct{}

func (staticLookup) Lookup(_ context.Context, reference string) (string, error) {
	return "text of " + reference, nil
}

func districtSheet() *memSheet {
	return &memSheet{tabs: map[string][][]string{
		"Accounts": {
			{"Name", "UserName", "Password", "Church Address", "Area Number", "Church ID", "Contact #", "Birth Day", "Position"},
			{"Juan Dela Cruz", "juan", "secret", "123 Rizal St", "4", "D4-01", "", "", "Pastor"},
			{"Maria Santos", "ao", "aopass", "District Office", "4", "", "", "", "Area Overseer"},
		},
		"Report": {
			{"church", "pastor", "address", "adult", "youth", "children", "tithes", "offering",
				"personal tithes", "mission offering", "received jesus", "existing bible study",
				"new bible study", "water baptized", "holy spirit baptized", "childrens dedication",
				"healed", "activity_date", "amount to send", "status"},
		},
		"AOPT": {
			{"Month", "Amount"},
			{"January 2026", "5,000"},
		},
		"PrayerRequest": {
			{"Church Name", "Submitted By", "Request ID", "Prayer Request Title",
				"Prayer Request Date", "Prayer Request", "Status", "Pastor's Praying", "Answered Date"},
		},
	}}
}

func newTestServer(t *testing.T) (*httptest.Server, *memSheet, *db.DB, *http.Client) {
	t.Helper()

	store, err := db.New(":memory:")
	require.NoError(t, err)
	// A second pool connection would see a fresh in-memory database.
	store.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Initialize(context.Background()))

	cfg := &config.Config{
		SpreadsheetID:   "test",
		CredentialsFile: "unused.json",
		SessionSecret:   "0123456789abcdef0123456789abcdef",
		ListenAddr:      ":0",
		Timezone:        "UTC",
	}
	sheet := districtSheet()

	srv, err := New(cfg, store, sheet, staticLookup{}, zap.NewNop())
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{Jar: jar}
	return ts, sheet, store, client
}

// sundayValues fills every Sunday form field, overridden per test.
func sundayValues(overrides url.Values) url.Values {
	values := url.Values{}
	for _, field := range sundayFormFields {
		values.Set(field, "0")
	}
	for field, v := range overrides {
		values[field] = v
	}
	return values
}

func progressValues(overrides url.Values) url.Values {
	values := url.Values{}
	for _, field := range progressFormFields {
		values.Set(field, "0")
	}
	for field, v := range overrides {
		values[field] = v
	}
	return values
}

func seedMonth(t *testing.T, ts *httptest.Server, client *http.Client) {
	t.Helper()
	resp, err := client.Get(ts.URL + "/reports?year=2026&month=1")
	require.NoError(t, err)
	resp.Body.Close()
}

func login(t *testing.T, ts *httptest.Server, client *http.Client, username, password string) *http.Response {
	t.Helper()
	resp, err := client.PostForm(ts.URL+"/login", url.Values{
		"username": {username},
		"password": {password},
	})
	require.NoError(t, err)
	defer resp.Body.Close()
	return resp
}

func TestSplashShowsVerse(t *testing.T) {
	ts, _, _, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	assert.Contains(t, body, "text of ")
}

func TestLoginRedirectsByRole(t *testing.T) {
	ts, _, _, client := newTestServer(t)

	resp := login(t, ts, client, "juan", "secret")
	assert.Equal(t, "/reports", finalPath(resp))

	ts2, _, _, client2 := newTestServer(t)
	resp = login(t, ts2, client2, "ao", "aopass")
	assert.Equal(t, "/ao", finalPath(resp))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	ts, _, _, client := newTestServer(t)
	resp := login(t, ts, client, "juan", "wrong")
	assert.Equal(t, "/", finalPath(resp))
	assert.Contains(t, resp.Request.URL.RawQuery, "error")
}

func TestReportsRequireLogin(t *testing.T) {
	ts, _, _, client := newTestServer(t)

	resp, err := client.Get(ts.URL + "/reports")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "/", resp.Request.URL.Path, "anonymous users land on the splash page")
}

func TestAODashboardForbiddenForPastors(t *testing.T) {
	ts, _, _, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")

	resp, err := client.Get(ts.URL + "/ao")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestMonthViewListsEverySunday(t *testing.T) {
	ts, _, _, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")

	resp, err := client.Get(ts.URL + "/reports?year=2026&month=1")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body := readBody(t, resp)
	for _, date := range []string{"2026-01-04", "2026-01-11", "2026-01-18", "2026-01-25"} {
		assert.Contains(t, body, date)
	}
}

func TestSundaySaveAndSubmitFlow(t *testing.T) {
	ts, sheet, _, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")

	// The month view seeds the Sunday rows.
	seedMonth(t, ts, client)

	var resp *http.Response
	var err error
	for _, date := range []string{"2026-01-04", "2026-01-11", "2026-01-18", "2026-01-25"} {
		resp, err = client.PostForm(ts.URL+"/reports/"+date, sundayValues(url.Values{
			"adult":    {"10"},
			"offering": {"100"},
		}))
		require.NoError(t, err)
		resp.Body.Close()
	}
	resp, err = client.PostForm(ts.URL+"/progress?year=2026&month=1", progressValues(url.Values{
		"received_christ": {"2"},
	}))
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/submit?year=2026&month=1", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotContains(t, resp.Request.URL.RawQuery, "error")

	require.Len(t, sheet.tabs["Report"], 5, "header plus four Sundays")
	appended := sheet.tabs["Report"][1]
	assert.Equal(t, "D4-01", appended[0])
	assert.Equal(t, "100", appended[18], "amount to send")
	assert.Equal(t, "Pending AO approval", appended[19])
}

func TestSubmitRejectsIncompleteMonth(t *testing.T) {
	ts, sheet, _, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")

	resp, err := client.Get(ts.URL + "/reports?year=2026&month=1")
	require.NoError(t, err)
	resp.Body.Close()

	resp, err = client.PostForm(ts.URL+"/submit?year=2026&month=1", url.Values{})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, resp.Request.URL.RawQuery, "error")
	assert.Len(t, sheet.tabs["Report"], 1, "nothing exported")
}

func TestSundaySaveRejectsBlankFields(t *testing.T) {
	ts, _, store, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")
	seedMonth(t, ts, client)

	resp, err := client.PostForm(ts.URL+"/reports/2026-01-04", sundayValues(url.Values{
		"adult": {""},
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "All fields are required")

	ctx := context.Background()
	mr, err := store.GetOrCreateMonthlyReport(ctx, 2026, 1, "juan")
	require.NoError(t, err)
	sunday, err := store.GetSundayReport(ctx, mr.ID, "2026-01-04")
	require.NoError(t, err)
	require.NotNil(t, sunday)
	assert.False(t, sunday.IsComplete, "rejected save must not mark the Sunday complete")
}

func TestSundaySaveRejectsNonNumericFields(t *testing.T) {
	ts, _, store, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")
	seedMonth(t, ts, client)

	resp, err := client.PostForm(ts.URL+"/reports/2026-01-04", sundayValues(url.Values{
		"adult": {"12"},
		"youth": {"abc"},
	}))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "Please enter numbers only")

	ctx := context.Background()
	mr, err := store.GetOrCreateMonthlyReport(ctx, 2026, 1, "juan")
	require.NoError(t, err)
	sunday, err := store.GetSundayReport(ctx, mr.ID, "2026-01-04")
	require.NoError(t, err)
	require.NotNil(t, sunday)
	assert.False(t, sunday.IsComplete)
	assert.Zero(t, sunday.AttendanceAdult, "nothing from the rejected form is written")
}

func TestSundaySaveRejectsNonSundayDate(t *testing.T) {
	ts, _, store, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")
	seedMonth(t, ts, client)

	// 2026-01-15 is a Thursday.
	resp, err := client.PostForm(ts.URL+"/reports/2026-01-15", sundayValues(nil))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.Get(ts.URL + "/reports/2026-01-15")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	ctx := context.Background()
	mr, err := store.GetOrCreateMonthlyReport(ctx, 2026, 1, "juan")
	require.NoError(t, err)
	sundays, err := store.SundayReports(ctx, mr.ID)
	require.NoError(t, err)
	require.Len(t, sundays, 4, "only calendar Sundays have rows")
	for _, sunday := range sundays {
		assert.NotEqual(t, "2026-01-15", sunday.Date)
	}
}

func TestProgressSaveRejectsIncompleteForm(t *testing.T) {
	ts, _, store, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")
	seedMonth(t, ts, client)

	resp, err := client.PostForm(ts.URL+"/progress?year=2026&month=1", url.Values{
		"received_christ": {"2"},
	})
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, resp.Request.URL.RawQuery, "error")
	assert.Contains(t, queryError(resp), "All fields are required")

	resp, err = client.PostForm(ts.URL+"/progress?year=2026&month=1", progressValues(url.Values{
		"healed": {"three"},
	}))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Contains(t, queryError(resp), "Please enter numbers only")

	ctx := context.Background()
	mr, err := store.GetOrCreateMonthlyReport(ctx, 2026, 1, "juan")
	require.NoError(t, err)
	cp, err := store.EnsureChurchProgress(ctx, mr.ID)
	require.NoError(t, err)
	assert.False(t, cp.IsComplete, "rejected save must not complete the progress block")
	assert.Zero(t, cp.ReceivedChrist)
}

func TestPrayerSubmitAppearsOnBoard(t *testing.T) {
	ts, sheet, _, client := newTestServer(t)
	login(t, ts, client, "juan", "secret")

	resp, err := client.PostForm(ts.URL+"/prayers", url.Values{
		"title":   {"Healing"},
		"request": {"Please pray for healing"},
	})
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, sheet.tabs["PrayerRequest"], 2)
	body := readBody(t, resp)
	assert.Contains(t, body, "Healing")
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(data)
}

func finalPath(resp *http.Response) string {
	return resp.Request.URL.Path
}

// queryError returns the decoded ?error= message of the page the client
// was redirected to.
func queryError(resp *http.Response) string {
	return resp.Request.URL.Query().Get("error")
}
