package server

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/services"
	"github.com/kdeguzman/district4-tool/pkg/core/sheetparse"
)

// monthQuery reads ?year=&month=, defaulting to the current month in
// district time.
func (s *Server) monthQuery(c *gin.Context) (int, int) {
	now := s.now()
	year, month := now.Year(), int(now.Month())
	if v, err := strconv.Atoi(c.Query("year")); err == nil && v > 0 {
		year = v
	}
	if v, err := strconv.Atoi(c.Query("month")); err == nil && v >= 1 && v <= 12 {
		month = v
	}
	return year, month
}

// handleMonthView is the pastor's reporting page: one line per calendar
// Sunday of the month, plus the spiritual-metrics block.
func (s *Server) handleMonthView(c *gin.Context) {
	rc := requestContext(c)
	year, month := s.monthQuery(c)
	ctx := c.Request.Context()

	s.refreshCache(c, false)

	mr, err := s.store.GetOrCreateMonthlyReport(ctx, year, month, rc.Username)
	if err != nil {
		s.fail(c, "load month", err)
		return
	}
	if err := s.store.EnsureSundayReports(ctx, mr.ID, sheetparse.Sundays(year, time.Month(month))); err != nil {
		s.fail(c, "seed sundays", err)
		return
	}
	if err := services.ProjectMonth(ctx, s.store, s.logger, rc, year, month); err != nil {
		s.fail(c, "project month", err)
		return
	}

	mr, err = s.store.GetOrCreateMonthlyReport(ctx, year, month, rc.Username)
	if err != nil {
		s.fail(c, "reload month", err)
		return
	}
	sundays, err := s.store.SundayReports(ctx, mr.ID)
	if err != nil {
		s.fail(c, "load sundays", err)
		return
	}
	cp, err := s.store.EnsureChurchProgress(ctx, mr.ID)
	if err != nil {
		s.fail(c, "load progress", err)
		return
	}

	total := decimalTotal(sundays)
	c.HTML(http.StatusOK, "month.html", gin.H{
		"Context":   rc,
		"Year":      year,
		"Month":     month,
		"MonthName": time.Month(month).String(),
		"Monthly":   mr,
		"Sundays":   sundays,
		"Progress":  cp,
		"Total":     total.String(),
		"Dirty":     rc.IsDirty(year, month),
		"Error":     c.Query("error"),
	})
}

// sundayForm carries one Sunday's numbers. Every field is required and
// must be numeric; bad input re-renders the form without touching the
// stored row.
type sundayForm struct {
	Adult          string `form:"adult" binding:"required,numeric"`
	Youth          string `form:"youth" binding:"required,numeric"`
	Children       string `form:"children" binding:"required,numeric"`
	Tithes         string `form:"tithes" binding:"required,numeric"`
	Offering       string `form:"offering" binding:"required,numeric"`
	Mission        string `form:"mission" binding:"required,numeric"`
	PersonalTithes string `form:"personal_tithes" binding:"required,numeric"`
}

var sundayFormFields = []string{"adult", "youth", "children", "tithes", "offering", "mission", "personal_tithes"}

// loadSeededSunday resolves the :date path parameter to the seeded row
// for its month. Dates that are not reporting Sundays have no row.
func (s *Server) loadSeededSunday(c *gin.Context, username string) (*model.MonthlyReport, *model.SundayReport, bool) {
	date := c.Param("date")
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		c.String(http.StatusBadRequest, "bad date")
		return nil, nil, false
	}
	ctx := c.Request.Context()

	mr, err := s.store.GetOrCreateMonthlyReport(ctx, day.Year(), int(day.Month()), username)
	if err != nil {
		s.fail(c, "load month", err)
		return nil, nil, false
	}
	if err := s.store.EnsureSundayReports(ctx, mr.ID, sheetparse.Sundays(day.Year(), day.Month())); err != nil {
		s.fail(c, "seed sundays", err)
		return nil, nil, false
	}
	sunday, err := s.store.GetSundayReport(ctx, mr.ID, date)
	if err != nil {
		s.fail(c, "load sunday", err)
		return nil, nil, false
	}
	if sunday == nil {
		c.String(http.StatusNotFound, "%s is not a reporting Sunday", date)
		return nil, nil, false
	}
	return mr, sunday, true
}

func (s *Server) handleSundayForm(c *gin.Context) {
	rc := requestContext(c)
	_, sunday, ok := s.loadSeededSunday(c, rc.Username)
	if !ok {
		return
	}
	s.renderSunday(c, http.StatusOK, rc, sunday, "")
}

func (s *Server) renderSunday(c *gin.Context, status int, rc *services.RequestContext, sunday *model.SundayReport, errMsg string) {
	day, _ := time.Parse("2006-01-02", sunday.Date)
	c.HTML(status, "sunday.html", gin.H{
		"Context": rc,
		"Date":    sunday.Date,
		"Year":    day.Year(),
		"Month":   int(day.Month()),
		"Sunday":  sunday,
		"Error":   errMsg,
	})
}

// handleSundaySave stores one Sunday's entries locally and marks the
// month dirty so reconciliation leaves the edit alone until submission.
func (s *Server) handleSundaySave(c *gin.Context) {
	rc := requestContext(c)
	mr, existing, ok := s.loadSeededSunday(c, rc.Username)
	if !ok {
		return
	}
	date := existing.Date
	day, _ := time.Parse("2006-01-02", date)
	year, month := day.Year(), int(day.Month())
	ctx := c.Request.Context()

	var form sundayForm
	if err := c.ShouldBind(&form); err != nil {
		s.renderSunday(c, http.StatusBadRequest, rc, existing, formErrorMessage(c, sundayFormFields))
		return
	}

	sunday := &model.SundayReport{
		Date:               date,
		AttendanceAdult:    sheetparse.Number(form.Adult),
		AttendanceYouth:    sheetparse.Number(form.Youth),
		AttendanceChildren: sheetparse.Number(form.Children),
		TithesChurch:       sheetparse.Amount(form.Tithes),
		Offering:           sheetparse.Amount(form.Offering),
		Mission:            sheetparse.Amount(form.Mission),
		TithesPersonal:     sheetparse.Amount(form.PersonalTithes),
	}
	if err := s.store.UpsertSundayReport(ctx, mr.ID, sunday); err != nil {
		s.fail(c, "save sunday", err)
		return
	}

	rc.MarkDirty(year, month)
	saveDirtyMonths(c, rc)
	s.logger.Info("Sunday saved", zap.String("pastor", rc.Username), zap.String("date", date))
	c.Redirect(http.StatusFound, monthURL(year, month, ""))
}

// progressForm carries the month's spiritual-metric counts, all
// required whole numbers.
type progressForm struct {
	BibleNew           string `form:"bible_new" binding:"required,numeric"`
	BibleExisting      string `form:"bible_existing" binding:"required,numeric"`
	ReceivedChrist     string `form:"received_christ" binding:"required,numeric"`
	BaptizedWater      string `form:"baptized_water" binding:"required,numeric"`
	BaptizedHolySpirit string `form:"baptized_holy_spirit" binding:"required,numeric"`
	Healed             string `form:"healed" binding:"required,numeric"`
	ChildDedication    string `form:"child_dedication" binding:"required,numeric"`
}

var progressFormFields = []string{"bible_new", "bible_existing", "received_christ", "baptized_water", "baptized_holy_spirit", "healed", "child_dedication"}

func (s *Server) handleProgressSave(c *gin.Context) {
	rc := requestContext(c)
	year, month := s.monthQuery(c)
	ctx := c.Request.Context()

	var form progressForm
	if err := c.ShouldBind(&form); err != nil {
		c.Redirect(http.StatusFound, monthURL(year, month, formErrorMessage(c, progressFormFields)))
		return
	}
	counts, err := formCounts(form.BibleNew, form.BibleExisting, form.ReceivedChrist,
		form.BaptizedWater, form.BaptizedHolySpirit, form.Healed, form.ChildDedication)
	if err != nil {
		c.Redirect(http.StatusFound, monthURL(year, month, "Please enter numbers only"))
		return
	}

	mr, err := s.store.GetOrCreateMonthlyReport(ctx, year, month, rc.Username)
	if err != nil {
		s.fail(c, "load month", err)
		return
	}
	cp, err := s.store.EnsureChurchProgress(ctx, mr.ID)
	if err != nil {
		s.fail(c, "load progress", err)
		return
	}

	cp.BibleNew = counts[0]
	cp.BibleExisting = counts[1]
	cp.ReceivedChrist = counts[2]
	cp.BaptizedWater = counts[3]
	cp.BaptizedHolySpirit = counts[4]
	cp.Healed = counts[5]
	cp.ChildDedication = counts[6]
	cp.IsComplete = true
	if err := s.store.UpdateChurchProgress(ctx, cp); err != nil {
		s.fail(c, "save progress", err)
		return
	}

	rc.MarkDirty(year, month)
	saveDirtyMonths(c, rc)
	c.Redirect(http.StatusFound, monthURL(year, month, ""))
}

// handleSubmitMonth exports the month to the Report tab, forces a cache
// refresh so the new rows come back with their sheet positions, and
// clears the dirty flag.
func (s *Server) handleSubmitMonth(c *gin.Context) {
	rc := requestContext(c)
	year, month := s.monthQuery(c)
	ctx := c.Request.Context()

	mr, err := s.store.GetOrCreateMonthlyReport(ctx, year, month, rc.Username)
	if err != nil {
		s.fail(c, "load month", err)
		return
	}
	sundays, err := s.store.SundayReports(ctx, mr.ID)
	if err != nil {
		s.fail(c, "load sundays", err)
		return
	}
	cp, err := s.store.EnsureChurchProgress(ctx, mr.ID)
	if err != nil {
		s.fail(c, "load progress", err)
		return
	}
	if reason := incompleteReason(sundays, cp); reason != "" {
		c.Redirect(http.StatusFound, monthURL(year, month, reason))
		return
	}

	if err := services.ExportMonth(ctx, s.store, s.sheet, s.logger, rc, year, month, model.LabelPendingApproval); err != nil {
		s.logger.Error("Month submission failed", zap.Error(err))
		c.Redirect(http.StatusFound, monthURL(year, month, "submission failed, try again"))
		return
	}

	s.refreshCache(c, true)
	rc.ClearDirty(year, month)
	saveDirtyMonths(c, rc)
	c.Redirect(http.StatusFound, monthURL(year, month, ""))
}

func incompleteReason(sundays []model.SundayReport, cp *model.ChurchProgress) string {
	if len(sundays) == 0 {
		return "no sundays to submit"
	}
	for _, sunday := range sundays {
		if !sunday.IsComplete {
			return "fill in every Sunday before submitting"
		}
	}
	if cp == nil || !cp.IsComplete {
		return "fill in the church progress section before submitting"
	}
	return ""
}

func decimalTotal(sundays []model.SundayReport) decimal.Decimal {
	total := decimal.Zero
	for _, sunday := range sundays {
		total = total.Add(sunday.AmountToSend())
	}
	return total
}

func monthURL(year, month int, errMsg string) string {
	u := fmt.Sprintf("/reports?year=%d&month=%d", year, month)
	if errMsg != "" {
		u += "&error=" + url.QueryEscape(errMsg)
	}
	return u
}

// formErrorMessage distinguishes a missing field from a non-numeric
// one, matching the messages pastors already know.
func formErrorMessage(c *gin.Context, fields []string) string {
	for _, field := range fields {
		if strings.TrimSpace(c.PostForm(field)) == "" {
			return "All fields are required"
		}
	}
	return "Please enter numbers only"
}

func formCounts(values ...string) ([]int, error) {
	counts := make([]int, len(values))
	for i, v := range values {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || n < 0 {
			return nil, fmt.Errorf("not a whole number: %q", v)
		}
		counts[i] = n
	}
	return counts, nil
}
