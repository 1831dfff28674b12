// Package db is the local cache store: a sqlite file holding mirrors of
// the spreadsheet tabs, the sync timestamp, and the per-pastor working
// tables. The spreadsheet stays the source of truth; these tables exist
// to make repeated reads cheap and to hold in-progress entries.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// DB wraps the sqlite connection.
type DB struct {
	*sql.DB
}

// New opens (creating if necessary) the sqlite database at path.
func New(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// Initialize creates all tables if they don't exist.
func (db *DB) Initialize(ctx context.Context) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS monthly_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			year INTEGER NOT NULL,
			month INTEGER NOT NULL,
			pastor_username TEXT NOT NULL,
			submitted INTEGER DEFAULT 0,
			approved INTEGER DEFAULT 0,
			submitted_at TEXT,
			approved_at TEXT,
			UNIQUE(year, month, pastor_username)
		)`,
		`CREATE TABLE IF NOT EXISTS sunday_reports (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			monthly_report_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			is_complete INTEGER DEFAULT 0,
			attendance_adult REAL,
			attendance_youth REAL,
			attendance_children REAL,
			tithes_church TEXT,
			offering TEXT,
			mission TEXT,
			tithes_personal TEXT,
			FOREIGN KEY (monthly_report_id) REFERENCES monthly_reports(id),
			UNIQUE(monthly_report_id, date)
		)`,
		`CREATE TABLE IF NOT EXISTS church_progress (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			monthly_report_id INTEGER NOT NULL UNIQUE,
			bible_new INTEGER,
			bible_existing INTEGER,
			received_christ INTEGER,
			baptized_water INTEGER,
			baptized_holy_spirit INTEGER,
			healed INTEGER,
			child_dedication INTEGER,
			is_complete INTEGER DEFAULT 0,
			FOREIGN KEY (monthly_report_id) REFERENCES monthly_reports(id)
		)`,
		`CREATE TABLE IF NOT EXISTS verses (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT UNIQUE NOT NULL,
			reference TEXT NOT NULL,
			text TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS sync_state (
			id INTEGER PRIMARY KEY CHECK(id=1),
			last_sync TEXT
		)`,
		`INSERT OR IGNORE INTO sync_state (id, last_sync) VALUES (1, NULL)`,
		`CREATE TABLE IF NOT EXISTS sheet_accounts_cache (
			username TEXT PRIMARY KEY,
			name TEXT,
			church_address TEXT,
			password TEXT,
			area_number TEXT,
			church_id TEXT,
			contact TEXT,
			birthday TEXT,
			position TEXT,
			sheet_row INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS sheet_report_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sheet_row INTEGER,
			year INTEGER,
			month INTEGER,
			activity_date TEXT,
			church TEXT,
			pastor TEXT,
			address TEXT,
			adult REAL,
			youth REAL,
			children REAL,
			tithes TEXT,
			offering TEXT,
			personal_tithes TEXT,
			mission_offering TEXT,
			received_jesus REAL,
			existing_bible_study REAL,
			new_bible_study REAL,
			water_baptized REAL,
			holy_spirit_baptized REAL,
			childrens_dedication REAL,
			healed REAL,
			amount_to_send TEXT,
			status TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sheet_aopt_cache (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			sheet_row INTEGER,
			month TEXT,
			amount TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS sheet_prayer_request_cache (
			request_id TEXT PRIMARY KEY,
			church_name TEXT,
			submitted_by TEXT,
			title TEXT,
			request_date TEXT,
			request_text TEXT,
			status TEXT,
			pastors_praying TEXT,
			answered_date TEXT,
			sheet_row INTEGER
		)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}
