// Package server is the HTTP surface of the district tool: session
// login against the Accounts tab, the pastor reporting workflow, the
// area overseer dashboard, and the prayer request board. Handlers stay
// thin; the workflow logic lives in pkg/core/services.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/internal/config"
	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/services"
)

// Store is the persistence surface the handlers need, implemented by
// *db.DB.
type Store interface {
	services.SyncStore
	GetSundayReport(ctx context.Context, monthlyReportID int64, date string) (*model.SundayReport, error)
	EnsureSundayReports(ctx context.Context, monthlyReportID int64, dates []time.Time) error
	SundayReports(ctx context.Context, monthlyReportID int64) ([]model.SundayReport, error)
	GetOrCreateMonthlyReport(ctx context.Context, year, month int, pastorUsername string) (*model.MonthlyReport, error)
	UpsertSundayReport(ctx context.Context, monthlyReportID int64, s *model.SundayReport) error
	EnsureChurchProgress(ctx context.Context, monthlyReportID int64) (*model.ChurchProgress, error)
	UpdateChurchProgress(ctx context.Context, cp *model.ChurchProgress) error
	SetMonthlyFlags(ctx context.Context, monthlyReportID int64, submitted, approved bool) error
	SetMonthlySubmitted(ctx context.Context, monthlyReportID int64, at time.Time) error
	SetMonthlyApproved(ctx context.Context, monthlyReportID int64, approved bool, at time.Time) error
	GetAccount(ctx context.Context, username string) (*model.Account, error)
	ListAccounts(ctx context.Context) ([]model.Account, error)
	ReportRowsForMonth(ctx context.Context, year, month int) ([]model.ReportRow, error)
	AOPTRows(ctx context.Context) ([]model.AOPTRow, error)
	PrayerRequestsBySubmitter(ctx context.Context, submittedBy string) ([]model.PrayerRequest, error)
	AllPrayerRequests(ctx context.Context) ([]model.PrayerRequest, error)
	GetPrayerRequest(ctx context.Context, requestID string) (*model.PrayerRequest, error)
	GetVerse(ctx context.Context, date string) (string, string, bool, error)
	PutVerse(ctx context.Context, date, reference, text string) error
}

// Sheet is the spreadsheet surface the handlers need, implemented by
// *sheetsclient.Client.
type Sheet interface {
	ReadTab(ctx context.Context, title string) ([][]string, error)
	AppendRow(ctx context.Context, title string, values []string) error
	UpdateCell(ctx context.Context, title string, row, col int, value string) error
	DeleteRows(ctx context.Context, title string, rowNums []int) error
}

// Server wires the handlers to their dependencies.
type Server struct {
	cfg    *config.Config
	store  Store
	sheet  Sheet
	verses services.VerseLookup
	syncer *services.Syncer
	logger *zap.Logger
	loc    *time.Location
	engine *gin.Engine
}

// New builds the server and its route table.
func New(cfg *config.Config, store Store, sheet Sheet, verses services.VerseLookup, logger *zap.Logger) (*Server, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	s := &Server{
		cfg:    cfg,
		store:  store,
		sheet:  sheet,
		verses: verses,
		syncer: services.NewSyncer(sheet, store, logger, cfg.SyncInterval()),
		logger: logger,
		loc:    loc,
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), s.requestLogger())
	engine.Use(sessions.Sessions(sessionName, cookie.NewStore([]byte(cfg.SessionSecret))))
	engine.SetHTMLTemplate(pageTemplates())

	engine.GET("/", s.handleSplash)
	engine.POST("/login", s.handleLogin)
	engine.GET("/logout", s.handleLogout)

	authed := engine.Group("/", s.requireLogin())
	authed.GET("/reports", s.handleMonthView)
	authed.GET("/reports/:date", s.handleSundayForm)
	authed.POST("/reports/:date", s.handleSundaySave)
	authed.POST("/progress", s.handleProgressSave)
	authed.POST("/submit", s.handleSubmitMonth)

	authed.GET("/prayers", s.handlePrayerList)
	authed.POST("/prayers", s.handlePrayerSubmit)
	authed.POST("/prayers/:id/approve", s.handlePrayerApprove)
	authed.POST("/prayers/:id/answered", s.handlePrayerAnswered)
	authed.POST("/prayers/:id/edit", s.handlePrayerEdit)
	authed.POST("/prayers/:id/delete", s.handlePrayerDelete)

	ao := authed.Group("/ao", s.requireAO())
	ao.GET("", s.handleDashboard)
	ao.POST("/status", s.handleMonthStatus)

	s.engine = engine
	return s, nil
}

// Router exposes the route table, mainly for tests.
func (s *Server) Router() http.Handler {
	return s.engine
}

// Run serves until the listener fails.
func (s *Server) Run() error {
	s.logger.Info("Listening", zap.String("addr", s.cfg.ListenAddr))
	return s.engine.Run(s.cfg.ListenAddr)
}

// refreshCache runs the gated sync; staleness is tolerated because the
// cache keeps serving the previous rows.
func (s *Server) refreshCache(c *gin.Context, force bool) {
	if err := s.syncer.Sync(c.Request.Context(), force); err != nil {
		s.logger.Warn("Cache refresh failed, serving cached data", zap.Error(err))
	}
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("Request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)))
	}
}

// now is the district's local clock, the basis for "current month" and
// verse rotation.
func (s *Server) now() time.Time {
	return time.Now().In(s.loc)
}

func (s *Server) fail(c *gin.Context, what string, err error) {
	s.logger.Error("Handler failure", zap.String("what", what), zap.Error(err))
	c.String(http.StatusInternalServerError, "something went wrong")
}
