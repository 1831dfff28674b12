package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
)

// GetOrCreateMonthlyReport fetches the working record for one (year,
// month, pastor), creating a blank one on first access.
func (db *DB) GetOrCreateMonthlyReport(ctx context.Context, year, month int, pastorUsername string) (*model.MonthlyReport, error) {
	mr, err := db.getMonthlyReport(ctx, year, month, pastorUsername)
	if err != nil {
		return nil, err
	}
	if mr != nil {
		return mr, nil
	}

	_, err = db.ExecContext(ctx, `
		INSERT OR IGNORE INTO monthly_reports (year, month, pastor_username, submitted, approved)
		VALUES (?, ?, ?, 0, 0)`, year, month, pastorUsername)
	if err != nil {
		return nil, fmt.Errorf("failed to create monthly report: %w", err)
	}
	return db.getMonthlyReport(ctx, year, month, pastorUsername)
}

func (db *DB) getMonthlyReport(ctx context.Context, year, month int, pastorUsername string) (*model.MonthlyReport, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, year, month, pastor_username, submitted, approved,
		       COALESCE(submitted_at, ''), COALESCE(approved_at, '')
		FROM monthly_reports WHERE year=? AND month=? AND pastor_username=?`,
		year, month, pastorUsername)

	var mr model.MonthlyReport
	err := row.Scan(&mr.ID, &mr.Year, &mr.Month, &mr.PastorUsername,
		&mr.Submitted, &mr.Approved, &mr.SubmittedAt, &mr.ApprovedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get monthly report: %w", err)
	}
	return &mr, nil
}

// EnsureSundayReports creates the skeleton Sunday rows for the month.
// Existing rows are left untouched, so re-visiting a month never loses
// entered values.
func (db *DB) EnsureSundayReports(ctx context.Context, monthlyReportID int64, dates []time.Time) error {
	for _, d := range dates {
		_, err := db.ExecContext(ctx, `
			INSERT OR IGNORE INTO sunday_reports (monthly_report_id, date) VALUES (?, ?)`,
			monthlyReportID, d.Format("2006-01-02"))
		if err != nil {
			return fmt.Errorf("failed to ensure sunday report: %w", err)
		}
	}
	return nil
}

// SundayReports returns the month's Sunday rows in date order.
func (db *DB) SundayReports(ctx context.Context, monthlyReportID int64) ([]model.SundayReport, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, monthly_report_id, date, is_complete,
		       COALESCE(attendance_adult, 0), COALESCE(attendance_youth, 0), COALESCE(attendance_children, 0),
		       COALESCE(tithes_church, ''), COALESCE(offering, ''), COALESCE(mission, ''), COALESCE(tithes_personal, '')
		FROM sunday_reports WHERE monthly_report_id=? ORDER BY date`, monthlyReportID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sunday reports: %w", err)
	}
	defer rows.Close()

	var out []model.SundayReport
	for rows.Next() {
		s, err := scanSundayReport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetSundayReport returns one Sunday row by date, or nil when the date
// is not part of the month.
func (db *DB) GetSundayReport(ctx context.Context, monthlyReportID int64, date string) (*model.SundayReport, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, monthly_report_id, date, is_complete,
		       COALESCE(attendance_adult, 0), COALESCE(attendance_youth, 0), COALESCE(attendance_children, 0),
		       COALESCE(tithes_church, ''), COALESCE(offering, ''), COALESCE(mission, ''), COALESCE(tithes_personal, '')
		FROM sunday_reports WHERE monthly_report_id=? AND date=?`, monthlyReportID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query sunday report: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	s, err := scanSundayReport(rows)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// UpsertSundayReport writes a Sunday's values, marking the row complete.
func (db *DB) UpsertSundayReport(ctx context.Context, monthlyReportID int64, s *model.SundayReport) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO sunday_reports
		(monthly_report_id, date, is_complete,
		 attendance_adult, attendance_youth, attendance_children,
		 tithes_church, offering, mission, tithes_personal)
		VALUES (?, ?, 1, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(monthly_report_id, date) DO UPDATE SET
			is_complete=1,
			attendance_adult=excluded.attendance_adult,
			attendance_youth=excluded.attendance_youth,
			attendance_children=excluded.attendance_children,
			tithes_church=excluded.tithes_church,
			offering=excluded.offering,
			mission=excluded.mission,
			tithes_personal=excluded.tithes_personal`,
		monthlyReportID, s.Date,
		s.AttendanceAdult, s.AttendanceYouth, s.AttendanceChildren,
		s.TithesChurch.String(), s.Offering.String(), s.Mission.String(), s.TithesPersonal.String())
	if err != nil {
		return fmt.Errorf("failed to upsert sunday report: %w", err)
	}
	return nil
}

// EnsureChurchProgress fetches the month's progress record, creating a
// blank one on first access.
func (db *DB) EnsureChurchProgress(ctx context.Context, monthlyReportID int64) (*model.ChurchProgress, error) {
	cp, err := db.getChurchProgress(ctx, monthlyReportID)
	if err != nil {
		return nil, err
	}
	if cp != nil {
		return cp, nil
	}

	_, err = db.ExecContext(ctx, `
		INSERT OR IGNORE INTO church_progress (monthly_report_id, is_complete) VALUES (?, 0)`,
		monthlyReportID)
	if err != nil {
		return nil, fmt.Errorf("failed to create church progress: %w", err)
	}
	return db.getChurchProgress(ctx, monthlyReportID)
}

func (db *DB) getChurchProgress(ctx context.Context, monthlyReportID int64) (*model.ChurchProgress, error) {
	row := db.QueryRowContext(ctx, `
		SELECT id, monthly_report_id,
		       COALESCE(bible_new, 0), COALESCE(bible_existing, 0), COALESCE(received_christ, 0),
		       COALESCE(baptized_water, 0), COALESCE(baptized_holy_spirit, 0),
		       COALESCE(healed, 0), COALESCE(child_dedication, 0), is_complete
		FROM church_progress WHERE monthly_report_id=?`, monthlyReportID)

	var cp model.ChurchProgress
	err := row.Scan(&cp.ID, &cp.MonthlyReportID,
		&cp.BibleNew, &cp.BibleExisting, &cp.ReceivedChrist,
		&cp.BaptizedWater, &cp.BaptizedHolySpirit,
		&cp.Healed, &cp.ChildDedication, &cp.IsComplete)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get church progress: %w", err)
	}
	return &cp, nil
}

// UpdateChurchProgress writes the month's spiritual-metric counts.
func (db *DB) UpdateChurchProgress(ctx context.Context, cp *model.ChurchProgress) error {
	_, err := db.ExecContext(ctx, `
		UPDATE church_progress
		SET bible_new=?, bible_existing=?, received_christ=?, baptized_water=?,
		    baptized_holy_spirit=?, healed=?, child_dedication=?, is_complete=?
		WHERE monthly_report_id=?`,
		cp.BibleNew, cp.BibleExisting, cp.ReceivedChrist, cp.BaptizedWater,
		cp.BaptizedHolySpirit, cp.Healed, cp.ChildDedication, cp.IsComplete,
		cp.MonthlyReportID)
	if err != nil {
		return fmt.Errorf("failed to update church progress: %w", err)
	}
	return nil
}

// SetMonthlyFlags updates the submitted/approved booleans as observed
// from synced cache state (reconciliation path; timestamps untouched).
func (db *DB) SetMonthlyFlags(ctx context.Context, monthlyReportID int64, submitted, approved bool) error {
	_, err := db.ExecContext(ctx,
		`UPDATE monthly_reports SET submitted=?, approved=? WHERE id=?`,
		submitted, approved, monthlyReportID)
	if err != nil {
		return fmt.Errorf("failed to set monthly flags: %w", err)
	}
	return nil
}

// SetMonthlySubmitted marks the month submitted at the given time.
func (db *DB) SetMonthlySubmitted(ctx context.Context, monthlyReportID int64, at time.Time) error {
	_, err := db.ExecContext(ctx,
		`UPDATE monthly_reports SET submitted=1, submitted_at=? WHERE id=?`,
		at.UTC().Format(time.RFC3339), monthlyReportID)
	if err != nil {
		return fmt.Errorf("failed to mark monthly report submitted: %w", err)
	}
	return nil
}

// SetMonthlyApproved marks the month approved (or resets it to pending).
func (db *DB) SetMonthlyApproved(ctx context.Context, monthlyReportID int64, approved bool, at time.Time) error {
	approvedAt := ""
	if approved {
		approvedAt = at.UTC().Format(time.RFC3339)
	}
	_, err := db.ExecContext(ctx,
		`UPDATE monthly_reports SET approved=?, approved_at=? WHERE id=?`,
		approved, approvedAt, monthlyReportID)
	if err != nil {
		return fmt.Errorf("failed to mark monthly report approved: %w", err)
	}
	return nil
}

func scanSundayReport(rows *sql.Rows) (model.SundayReport, error) {
	var s model.SundayReport
	var tithesChurch, offering, mission, tithesPersonal string
	err := rows.Scan(&s.ID, &s.MonthlyReportID, &s.Date, &s.IsComplete,
		&s.AttendanceAdult, &s.AttendanceYouth, &s.AttendanceChildren,
		&tithesChurch, &offering, &mission, &tithesPersonal)
	if err != nil {
		return s, fmt.Errorf("failed to scan sunday report: %w", err)
	}
	s.TithesChurch = parseStoredDecimal(tithesChurch)
	s.Offering = parseStoredDecimal(offering)
	s.Mission = parseStoredDecimal(mission)
	s.TithesPersonal = parseStoredDecimal(tithesPersonal)
	return s, nil
}
