package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
)

// The cache tables are replaced wholesale per sync: each Replace* runs a
// truncate plus reinsert in a single transaction, so readers never see a
// half-synced tab.

// LastSync returns the recorded UTC time of the last completed sync. The
// second return is false when no sync has happened yet.
func (db *DB) LastSync(ctx context.Context) (time.Time, bool, error) {
	var raw sql.NullString
	err := db.QueryRowContext(ctx, `SELECT last_sync FROM sync_state WHERE id=1`).Scan(&raw)
	if err == sql.ErrNoRows {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read sync state: %w", err)
	}
	if !raw.Valid || raw.String == "" {
		return time.Time{}, false, nil
	}
	t, err := time.Parse(time.RFC3339, raw.String)
	if err != nil {
		// A corrupt timestamp just means the next sync runs.
		return time.Time{}, false, nil
	}
	return t, true, nil
}

// SetLastSync records the given time as the last completed sync.
func (db *DB) SetLastSync(ctx context.Context, t time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE sync_state SET last_sync=? WHERE id=1`,
		t.UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to update sync state: %w", err)
	}
	return nil
}

// ReplaceAccounts swaps the accounts cache for the given set.
func (db *DB) ReplaceAccounts(ctx context.Context, accounts []model.Account) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_accounts_cache`); err != nil {
			return err
		}
		for _, a := range accounts {
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO sheet_accounts_cache
				(username, name, church_address, password, area_number, church_id, contact, birthday, position, sheet_row)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				a.Username, a.Name, a.ChurchAddress, a.Password, a.AreaNumber,
				a.ChurchID, a.Contact, a.Birthday, a.Position, a.SheetRow)
			if err != nil {
				return err
			}
		}
		return nil
	}, "accounts cache")
}

// ReplaceReports swaps the report cache for the given set.
func (db *DB) ReplaceReports(ctx context.Context, rows []model.ReportRow) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_report_cache`); err != nil {
			return err
		}
		for _, r := range rows {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO sheet_report_cache
				(sheet_row, year, month, activity_date, church, pastor, address,
				 adult, youth, children,
				 tithes, offering, personal_tithes, mission_offering,
				 received_jesus, existing_bible_study, new_bible_study,
				 water_baptized, holy_spirit_baptized, childrens_dedication, healed,
				 amount_to_send, status)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.SheetRow, r.Year, r.Month, r.ActivityDate.Format("2006-01-02"),
				r.Church, r.Pastor, r.Address,
				r.Adult, r.Youth, r.Children,
				r.Tithes.String(), r.Offering.String(), r.PersonalTithes.String(), r.MissionOffering.String(),
				r.ReceivedJesus, r.ExistingBibleStudy, r.NewBibleStudy,
				r.WaterBaptized, r.HolySpiritBaptized, r.ChildrensDedication, r.Healed,
				r.AmountToSend.String(), r.Status)
			if err != nil {
				return err
			}
		}
		return nil
	}, "report cache")
}

// ReplaceAOPT swaps the AOPT cache for the given set.
func (db *DB) ReplaceAOPT(ctx context.Context, rows []model.AOPTRow) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_aopt_cache`); err != nil {
			return err
		}
		for _, r := range rows {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO sheet_aopt_cache (sheet_row, month, amount) VALUES (?, ?, ?)`,
				r.SheetRow, r.Month, r.Amount.String())
			if err != nil {
				return err
			}
		}
		return nil
	}, "aopt cache")
}

// ReplacePrayerRequests swaps the prayer request cache for the given set.
func (db *DB) ReplacePrayerRequests(ctx context.Context, reqs []model.PrayerRequest) error {
	return db.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sheet_prayer_request_cache`); err != nil {
			return err
		}
		for _, r := range reqs {
			_, err := tx.ExecContext(ctx, `
				INSERT OR REPLACE INTO sheet_prayer_request_cache
				(request_id, church_name, submitted_by, title, request_date, request_text,
				 status, pastors_praying, answered_date, sheet_row)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				r.RequestID, r.ChurchName, r.SubmittedBy, r.Title, r.RequestDate,
				r.RequestText, r.Status, r.PastorsPraying, r.AnsweredDate, r.SheetRow)
			if err != nil {
				return err
			}
		}
		return nil
	}, "prayer request cache")
}

// GetAccount looks up a cached account by username. Returns nil when the
// username is unknown.
func (db *DB) GetAccount(ctx context.Context, username string) (*model.Account, error) {
	row := db.QueryRowContext(ctx, `
		SELECT username, name, church_address, password, area_number, church_id,
		       contact, birthday, position, sheet_row
		FROM sheet_accounts_cache WHERE username=?`, username)

	var a model.Account
	err := row.Scan(&a.Username, &a.Name, &a.ChurchAddress, &a.Password,
		&a.AreaNumber, &a.ChurchID, &a.Contact, &a.Birthday, &a.Position, &a.SheetRow)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

// ListAccounts returns all cached accounts ordered by name.
func (db *DB) ListAccounts(ctx context.Context) ([]model.Account, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT username, name, church_address, password, area_number, church_id,
		       contact, birthday, position, sheet_row
		FROM sheet_accounts_cache ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		var a model.Account
		if err := rows.Scan(&a.Username, &a.Name, &a.ChurchAddress, &a.Password,
			&a.AreaNumber, &a.ChurchID, &a.Contact, &a.Birthday, &a.Position, &a.SheetRow); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, a)
	}
	return accounts, rows.Err()
}

// ReportRowsForMonth returns all cached report rows for one (year,
// month) ordered by activity date then sheet row.
func (db *DB) ReportRowsForMonth(ctx context.Context, year, month int) ([]model.ReportRow, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT sheet_row, year, month, activity_date, church, pastor, address,
		       adult, youth, children,
		       tithes, offering, personal_tithes, mission_offering,
		       received_jesus, existing_bible_study, new_bible_study,
		       water_baptized, holy_spirit_baptized, childrens_dedication, healed,
		       amount_to_send, status
		FROM sheet_report_cache
		WHERE year=? AND month=?
		ORDER BY activity_date, sheet_row`, year, month)
	if err != nil {
		return nil, fmt.Errorf("failed to query report cache: %w", err)
	}
	defer rows.Close()

	var out []model.ReportRow
	for rows.Next() {
		r, err := scanReportRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AOPTRows returns the cached AOPT rows in sheet order.
func (db *DB) AOPTRows(ctx context.Context) ([]model.AOPTRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT sheet_row, month, amount FROM sheet_aopt_cache ORDER BY sheet_row`)
	if err != nil {
		return nil, fmt.Errorf("failed to query aopt cache: %w", err)
	}
	defer rows.Close()

	var out []model.AOPTRow
	for rows.Next() {
		var r model.AOPTRow
		var amount string
		if err := rows.Scan(&r.SheetRow, &r.Month, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan aopt row: %w", err)
		}
		r.Amount = parseStoredDecimal(amount)
		out = append(out, r)
	}
	return out, rows.Err()
}

// PrayerRequestsBySubmitter returns the cached prayer requests submitted
// under the given user key, newest first.
func (db *DB) PrayerRequestsBySubmitter(ctx context.Context, submittedBy string) ([]model.PrayerRequest, error) {
	return db.queryPrayerRequests(ctx, `
		SELECT request_id, church_name, submitted_by, title, request_date, request_text,
		       status, pastors_praying, answered_date, sheet_row
		FROM sheet_prayer_request_cache
		WHERE TRIM(submitted_by)=TRIM(?)
		ORDER BY request_date DESC, sheet_row DESC`, submittedBy)
}

// AllPrayerRequests returns every cached prayer request, newest first.
func (db *DB) AllPrayerRequests(ctx context.Context) ([]model.PrayerRequest, error) {
	return db.queryPrayerRequests(ctx, `
		SELECT request_id, church_name, submitted_by, title, request_date, request_text,
		       status, pastors_praying, answered_date, sheet_row
		FROM sheet_prayer_request_cache
		ORDER BY request_date DESC, sheet_row DESC`)
}

// GetPrayerRequest looks up one cached prayer request by id. Returns nil
// when unknown.
func (db *DB) GetPrayerRequest(ctx context.Context, requestID string) (*model.PrayerRequest, error) {
	reqs, err := db.queryPrayerRequests(ctx, `
		SELECT request_id, church_name, submitted_by, title, request_date, request_text,
		       status, pastors_praying, answered_date, sheet_row
		FROM sheet_prayer_request_cache WHERE request_id=?`, requestID)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, nil
	}
	return &reqs[0], nil
}

func (db *DB) queryPrayerRequests(ctx context.Context, query string, args ...interface{}) ([]model.PrayerRequest, error) {
	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query prayer request cache: %w", err)
	}
	defer rows.Close()

	var out []model.PrayerRequest
	for rows.Next() {
		var r model.PrayerRequest
		if err := rows.Scan(&r.RequestID, &r.ChurchName, &r.SubmittedBy, &r.Title,
			&r.RequestDate, &r.RequestText, &r.Status, &r.PastorsPraying,
			&r.AnsweredDate, &r.SheetRow); err != nil {
			return nil, fmt.Errorf("failed to scan prayer request: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (db *DB) inTx(ctx context.Context, fn func(tx *sql.Tx) error, what string) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin %s transaction: %w", what, err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to replace %s: %w", what, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", what, err)
	}
	return nil
}

func scanReportRow(rows *sql.Rows) (model.ReportRow, error) {
	var r model.ReportRow
	var activityDate, tithes, offering, personalTithes, missionOffering, amountToSend string
	err := rows.Scan(&r.SheetRow, &r.Year, &r.Month, &activityDate,
		&r.Church, &r.Pastor, &r.Address,
		&r.Adult, &r.Youth, &r.Children,
		&tithes, &offering, &personalTithes, &missionOffering,
		&r.ReceivedJesus, &r.ExistingBibleStudy, &r.NewBibleStudy,
		&r.WaterBaptized, &r.HolySpiritBaptized, &r.ChildrensDedication, &r.Healed,
		&amountToSend, &r.Status)
	if err != nil {
		return r, fmt.Errorf("failed to scan report row: %w", err)
	}
	if t, err := time.Parse("2006-01-02", activityDate); err == nil {
		r.ActivityDate = t
	}
	r.Tithes = parseStoredDecimal(tithes)
	r.Offering = parseStoredDecimal(offering)
	r.PersonalTithes = parseStoredDecimal(personalTithes)
	r.MissionOffering = parseStoredDecimal(missionOffering)
	r.AmountToSend = parseStoredDecimal(amountToSend)
	return r, nil
}

// parseStoredDecimal reads a decimal column we wrote ourselves; blanks
// and garbage read as zero to stay consistent with sheet parsing.
func parseStoredDecimal(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}
