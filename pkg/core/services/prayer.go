package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/sheetparse"
)

// PrayerStore is the cache side of prayer request actions.
type PrayerStore interface {
	GetPrayerRequest(ctx context.Context, requestID string) (*model.PrayerRequest, error)
}

// SheetRowDeleter deletes whole rows from the spreadsheet.
type SheetRowDeleter interface {
	DeleteRows(ctx context.Context, title string, rowNums []int) error
}

// All prayer request mutations target the spreadsheet directly and rely
// on the forced sync that callers run afterwards; there is no separate
// local write path.

// SubmitPrayerRequest appends a new pending request to the sheet and
// returns its generated id.
func SubmitPrayerRequest(ctx context.Context, sheet interface {
	AppendRow(ctx context.Context, title string, values []string) error
}, logger *zap.Logger, rc *RequestContext, title, body string, today time.Time) (string, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return "", fmt.Errorf("title and prayer request are required")
	}

	requestID := uuid.New().String()
	row := []string{
		rc.ChurchAddress,                // Church Name
		rc.Username,                     // Submitted By
		requestID,                       // Request ID
		title,                           // Prayer Request Title
		today.Format("2006-01-02"),      // Prayer Request Date
		body,                            // Prayer Request
		model.LabelPending,              // Status
		"",                              // Pastor's Praying
		"",                              // Answered Date
	}
	if err := sheet.AppendRow(ctx, TabPrayerRequest, row); err != nil {
		return "", fmt.Errorf("failed to append prayer request: %w", err)
	}

	logger.Info("Prayer request submitted",
		zap.String("request_id", requestID),
		zap.String("submitted_by", rc.Username))
	return requestID, nil
}

// ApprovePrayerRequest moves a pending request to Approved. AO only.
func ApprovePrayerRequest(ctx context.Context, store PrayerStore, sheet SheetSource, writer CellWriter, logger *zap.Logger, rc *RequestContext, requestID string) error {
	if !rc.IsAreaOverseer() {
		return fmt.Errorf("only the area overseer can approve prayer requests")
	}
	req, cols, err := locatePrayerRequest(ctx, store, sheet, requestID)
	if err != nil {
		return err
	}

	if err := updatePrayerCell(ctx, writer, cols, req.SheetRow, "status", model.LabelApproved); err != nil {
		return err
	}

	logger.Info("Prayer request approved", zap.String("request_id", requestID))
	return nil
}

// MarkPrayerAnswered marks a request answered, recording the date and
// the intercessor note. Submitter or AO only.
func MarkPrayerAnswered(ctx context.Context, store PrayerStore, sheet SheetSource, writer CellWriter, logger *zap.Logger, rc *RequestContext, requestID, intercessorNote string, answeredOn time.Time) error {
	req, cols, err := locatePrayerRequest(ctx, store, sheet, requestID)
	if err != nil {
		return err
	}
	if !canManagePrayerRequest(rc, req) {
		return fmt.Errorf("not allowed to update this prayer request")
	}

	if err := updatePrayerCell(ctx, writer, cols, req.SheetRow, "status", model.LabelAnswered); err != nil {
		return err
	}
	if err := updatePrayerCell(ctx, writer, cols, req.SheetRow, "answered_date", answeredOn.Format("2006-01-02")); err != nil {
		return err
	}
	if intercessorNote != "" {
		if err := updatePrayerCell(ctx, writer, cols, req.SheetRow, "pastors_praying", intercessorNote); err != nil {
			return err
		}
	}

	logger.Info("Prayer request answered", zap.String("request_id", requestID))
	return nil
}

// EditPrayerRequest rewrites the title and body. Submitter or AO only.
func EditPrayerRequest(ctx context.Context, store PrayerStore, sheet SheetSource, writer CellWriter, logger *zap.Logger, rc *RequestContext, requestID, title, body string) error {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" || body == "" {
		return fmt.Errorf("title and prayer request are required")
	}

	req, cols, err := locatePrayerRequest(ctx, store, sheet, requestID)
	if err != nil {
		return err
	}
	if !canManagePrayerRequest(rc, req) {
		return fmt.Errorf("not allowed to edit this prayer request")
	}

	if err := updatePrayerCell(ctx, writer, cols, req.SheetRow, "title", title); err != nil {
		return err
	}
	if err := updatePrayerCell(ctx, writer, cols, req.SheetRow, "request_text", body); err != nil {
		return err
	}

	logger.Info("Prayer request edited", zap.String("request_id", requestID))
	return nil
}

// RejectPrayerRequest removes the request's sheet row entirely (the
// rejection path of the state machine). Submitter or AO only.
func RejectPrayerRequest(ctx context.Context, store PrayerStore, deleter SheetRowDeleter, logger *zap.Logger, rc *RequestContext, requestID string) error {
	req, err := store.GetPrayerRequest(ctx, requestID)
	if err != nil {
		return fmt.Errorf("failed to load prayer request: %w", err)
	}
	if req == nil {
		return fmt.Errorf("prayer request %q not found", requestID)
	}
	if !canManagePrayerRequest(rc, req) {
		return fmt.Errorf("not allowed to delete this prayer request")
	}
	if req.SheetRow <= 0 {
		return fmt.Errorf("prayer request %q has no recorded sheet row", requestID)
	}

	if err := deleter.DeleteRows(ctx, TabPrayerRequest, []int{req.SheetRow}); err != nil {
		return fmt.Errorf("failed to delete prayer request row: %w", err)
	}

	logger.Info("Prayer request rejected", zap.String("request_id", requestID))
	return nil
}

func canManagePrayerRequest(rc *RequestContext, req *model.PrayerRequest) bool {
	if rc.IsAreaOverseer() {
		return true
	}
	return strings.TrimSpace(req.SubmittedBy) == strings.TrimSpace(rc.Username)
}

// locatePrayerRequest fetches the cached request and the tab's live
// column layout, both needed for a targeted cell update.
func locatePrayerRequest(ctx context.Context, store PrayerStore, sheet SheetSource, requestID string) (*model.PrayerRequest, sheetparse.Columns, error) {
	req, err := store.GetPrayerRequest(ctx, requestID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load prayer request: %w", err)
	}
	if req == nil {
		return nil, nil, fmt.Errorf("prayer request %q not found", requestID)
	}
	if req.SheetRow <= 0 {
		return nil, nil, fmt.Errorf("prayer request %q has no recorded sheet row", requestID)
	}

	grid, err := sheet.ReadTab(ctx, TabPrayerRequest)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read prayer request header: %w", err)
	}
	if len(grid) == 0 {
		return nil, nil, fmt.Errorf("prayer request tab has no header row")
	}
	return req, sheetparse.Resolve(grid[0], prayerRequestFields), nil
}

func updatePrayerCell(ctx context.Context, writer CellWriter, cols sheetparse.Columns, sheetRow int, field, value string) error {
	idx, ok := cols[field]
	if !ok || idx < 0 {
		return fmt.Errorf("prayer request tab has no %q column", field)
	}
	if err := writer.UpdateCell(ctx, TabPrayerRequest, sheetRow, idx+1, value); err != nil {
		return fmt.Errorf("failed to update %s cell: %w", field, err)
	}
	return nil
}
