package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Account mirrors one row of the Accounts tab. The whole set is replaced
// on every sync cycle, never partially updated.
type Account struct {
	Username      string
	Name          string
	ChurchAddress string
	Password      string
	AreaNumber    string
	ChurchID      string
	Contact       string
	Birthday      string
	Position      string
	SheetRow      int
}

// IsAreaOverseer reports whether the account holds the AO position.
func (a *Account) IsAreaOverseer() bool {
	return normalize(a.Position) == "area overseer"
}

// ReportRow mirrors one row of the Report tab: one submitted Sunday of a
// month for one pastor. SheetRow is the 1-based physical row in the
// sheet, recorded so targeted cell updates can be issued without a
// second read.
type ReportRow struct {
	SheetRow     int
	Year         int
	Month        int
	ActivityDate time.Time
	Church       string
	Pastor       string
	Address      string

	Adult    float64
	Youth    float64
	Children float64

	Tithes          decimal.Decimal
	Offering        decimal.Decimal
	PersonalTithes  decimal.Decimal
	MissionOffering decimal.Decimal

	ReceivedJesus       float64
	ExistingBibleStudy  float64
	NewBibleStudy       float64
	WaterBaptized       float64
	HolySpiritBaptized  float64
	ChildrensDedication float64
	Healed              float64

	AmountToSend decimal.Decimal
	Status       string
}

// AOPTRow mirrors one row of the AOPT tab (per-month district amount).
type AOPTRow struct {
	SheetRow int
	Month    string
	Amount   decimal.Decimal
}

// PrayerRequest mirrors one row of the PrayerRequest tab. RequestID is a
// UUID generated at submission time and is the primary key.
type PrayerRequest struct {
	RequestID      string
	ChurchName     string
	SubmittedBy    string
	Title          string
	RequestDate    string
	RequestText    string
	Status         string
	PastorsPraying string
	AnsweredDate   string
	SheetRow       int
}

// MonthlyReport is the local working record for one (year, month,
// pastor) triple, unique on that triple.
type MonthlyReport struct {
	ID             int64
	Year           int
	Month          int
	PastorUsername string
	Submitted      bool
	Approved       bool
	SubmittedAt    string
	ApprovedAt     string
}

// SundayReport holds one Sunday's attendance and financial entries.
// Exactly one row exists per calendar Sunday of the month; rows are
// created eagerly and filled in by form submission or cache projection.
type SundayReport struct {
	ID              int64
	MonthlyReportID int64
	Date            string // ISO calendar date
	IsComplete      bool

	AttendanceAdult    float64
	AttendanceYouth    float64
	AttendanceChildren float64

	TithesChurch   decimal.Decimal
	Offering       decimal.Decimal
	Mission        decimal.Decimal
	TithesPersonal decimal.Decimal
}

// AmountToSend is the sum of the four financial fields, the figure a
// church remits for the Sunday.
func (s SundayReport) AmountToSend() decimal.Decimal {
	return s.TithesChurch.Add(s.Offering).Add(s.Mission).Add(s.TithesPersonal)
}

// ChurchProgress holds the month's spiritual-metric counts, 1:1 with a
// MonthlyReport.
type ChurchProgress struct {
	ID              int64
	MonthlyReportID int64

	BibleNew           int
	BibleExisting      int
	ReceivedChrist     int
	BaptizedWater      int
	BaptizedHolySpirit int
	Healed             int
	ChildDedication    int

	IsComplete bool
}

// MonthKey identifies a (year, month) pair, used for dirty tracking.
type MonthKey struct {
	Year  int
	Month int
}

func (k MonthKey) String() string {
	return fmt.Sprintf("%d-%d", k.Year, k.Month)
}
