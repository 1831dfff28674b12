// Package sheetsclient wraps the Google Sheets API for the district
// spreadsheet: whole-tab reads, row append, targeted cell updates, and
// row deletion. Authentication uses a service account, so no user OAuth
// flow is involved.
package sheetsclient

import (
	"context"
	"fmt"
	"os"
	"sort"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// Scopes required to read and write the district spreadsheet.
var scopes = []string{
	"https://www.googleapis.com/auth/spreadsheets",
	"https://www.googleapis.com/auth/drive",
}

// Client wraps the Google Sheets API client for one spreadsheet.
type Client struct {
	service       *sheets.Service
	spreadsheetID string

	// tab title -> numeric sheet id, needed for structural requests
	// like row deletion. Resolved lazily and cached.
	sheetIDs map[string]int64
}

// NewClient creates a Sheets client from a service-account credentials
// file, bound to the given spreadsheet.
func NewClient(ctx context.Context, credentialsFile, spreadsheetID string) (*Client, error) {
	data, err := os.ReadFile(credentialsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read service account file: %w", err)
	}

	conf, err := google.JWTConfigFromJSON(data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse service account credentials: %w", err)
	}

	service, err := sheets.NewService(ctx, option.WithHTTPClient(conf.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service:       service,
		spreadsheetID: spreadsheetID,
		sheetIDs:      make(map[string]int64),
	}, nil
}

// Service returns the underlying sheets service for direct API access.
func (c *Client) Service() *sheets.Service {
	return c.service
}

// ReadTab reads a whole tab as a string grid (header row included).
// Values come back as raw strings, not typed records, so short rows and
// extra columns are tolerated by the parsers downstream.
func (c *Client) ReadTab(ctx context.Context, title string) ([][]string, error) {
	resp, err := c.service.Spreadsheets.Values.Get(c.spreadsheetID, tabRange(title)).
		Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to read tab %q: %w", title, err)
	}

	grid := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		cells := make([]string, len(row))
		for j, v := range row {
			if s, ok := v.(string); ok {
				cells[j] = s
			} else {
				cells[j] = fmt.Sprint(v)
			}
		}
		grid[i] = cells
	}
	return grid, nil
}

// AppendRow appends one row to the bottom of a tab.
func (c *Client) AppendRow(ctx context.Context, title string, values []string) error {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}

	_, err := c.service.Spreadsheets.Values.Append(c.spreadsheetID, tabRange(title),
		&sheets.ValueRange{Values: [][]interface{}{row}}).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to append row to %q: %w", title, err)
	}
	return nil
}

// CellUpdate addresses a single cell by 1-based row and column.
type CellUpdate struct {
	Row   int
	Col   int
	Value string
}

// UpdateCell writes one cell.
func (c *Client) UpdateCell(ctx context.Context, title string, row, col int, value string) error {
	return c.BatchUpdateCells(ctx, title, []CellUpdate{{Row: row, Col: col, Value: value}})
}

// BatchUpdateCells writes several cells in one API call. Only the
// addressed cells change; everything else in the rows is untouched.
func (c *Client) BatchUpdateCells(ctx context.Context, title string, updates []CellUpdate) error {
	if len(updates) == 0 {
		return nil
	}

	data := make([]*sheets.ValueRange, len(updates))
	for i, u := range updates {
		data[i] = &sheets.ValueRange{
			Range:  fmt.Sprintf("'%s'!%s%d", title, columnLetter(u.Col), u.Row),
			Values: [][]interface{}{{u.Value}},
		}
	}

	_, err := c.service.Spreadsheets.Values.BatchUpdate(c.spreadsheetID,
		&sheets.BatchUpdateValuesRequest{
			ValueInputOption: "USER_ENTERED",
			Data:             data,
		}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to update cells in %q: %w", title, err)
	}
	return nil
}

// DeleteRows removes the given 1-based rows from a tab. Rows are deleted
// in descending order so earlier deletions don't shift the indexes of
// later ones.
func (c *Client) DeleteRows(ctx context.Context, title string, rowNums []int) error {
	if len(rowNums) == 0 {
		return nil
	}

	sheetID, err := c.sheetID(ctx, title)
	if err != nil {
		return err
	}

	sorted := append([]int(nil), rowNums...)
	sort.Sort(sort.Reverse(sort.IntSlice(sorted)))

	requests := make([]*sheets.Request, len(sorted))
	for i, row := range sorted {
		requests[i] = &sheets.Request{
			DeleteDimension: &sheets.DeleteDimensionRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(row - 1),
					EndIndex:   int64(row),
				},
			},
		}
	}

	_, err = c.service.Spreadsheets.BatchUpdate(c.spreadsheetID,
		&sheets.BatchUpdateSpreadsheetRequest{Requests: requests}).
		Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to delete rows from %q: %w", title, err)
	}
	return nil
}

// sheetID resolves a tab title to its numeric sheet id, caching the
// spreadsheet metadata on first use.
func (c *Client) sheetID(ctx context.Context, title string) (int64, error) {
	if id, ok := c.sheetIDs[title]; ok {
		return id, nil
	}

	meta, err := c.service.Spreadsheets.Get(c.spreadsheetID).
		Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil {
			c.sheetIDs[sheet.Properties.Title] = sheet.Properties.SheetId
		}
	}

	id, ok := c.sheetIDs[title]
	if !ok {
		return 0, fmt.Errorf("tab %q not found in spreadsheet", title)
	}
	return id, nil
}

func tabRange(title string) string {
	return fmt.Sprintf("'%s'", title)
}

// columnLetter converts a 1-based column index to A1 notation (1 -> A,
// 27 -> AA).
func columnLetter(col int) string {
	letters := ""
	for col > 0 {
		col--
		letters = string(rune('A'+col%26)) + letters
		col /= 26
	}
	return letters
}
