package server

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/services"
)

// handlePrayerList shows the board: a pastor sees their own requests,
// the AO sees everything.
func (s *Server) handlePrayerList(c *gin.Context) {
	rc := requestContext(c)
	ctx := c.Request.Context()
	s.refreshCache(c, false)

	var (
		requests []model.PrayerRequest
		err      error
	)
	if rc.IsAreaOverseer() {
		requests, err = s.store.AllPrayerRequests(ctx)
	} else {
		requests, err = s.store.PrayerRequestsBySubmitter(ctx, rc.Username)
	}
	if err != nil {
		s.fail(c, "load prayer requests", err)
		return
	}

	c.HTML(http.StatusOK, "prayers.html", gin.H{
		"Context":  rc,
		"Requests": requests,
		"Error":    c.Query("error"),
	})
}

func (s *Server) handlePrayerSubmit(c *gin.Context) {
	rc := requestContext(c)

	_, err := services.SubmitPrayerRequest(c.Request.Context(), s.sheet, s.logger, rc,
		c.PostForm("title"), c.PostForm("request"), s.now())
	if err != nil {
		s.redirectPrayers(c, err)
		return
	}
	s.refreshCache(c, true)
	c.Redirect(http.StatusFound, "/prayers")
}

func (s *Server) handlePrayerApprove(c *gin.Context) {
	rc := requestContext(c)
	err := services.ApprovePrayerRequest(c.Request.Context(), s.store, s.sheet, s.sheet, s.logger,
		rc, c.Param("id"))
	s.finishPrayerAction(c, err)
}

func (s *Server) handlePrayerAnswered(c *gin.Context) {
	rc := requestContext(c)
	err := services.MarkPrayerAnswered(c.Request.Context(), s.store, s.sheet, s.sheet, s.logger,
		rc, c.Param("id"), c.PostForm("pastors_praying"), s.now())
	s.finishPrayerAction(c, err)
}

func (s *Server) handlePrayerEdit(c *gin.Context) {
	rc := requestContext(c)
	err := services.EditPrayerRequest(c.Request.Context(), s.store, s.sheet, s.sheet, s.logger,
		rc, c.Param("id"), c.PostForm("title"), c.PostForm("request"))
	s.finishPrayerAction(c, err)
}

func (s *Server) handlePrayerDelete(c *gin.Context) {
	rc := requestContext(c)
	err := services.RejectPrayerRequest(c.Request.Context(), s.store, s.sheet, s.logger,
		rc, c.Param("id"))
	s.finishPrayerAction(c, err)
}

// finishPrayerAction is the shared tail of every mutation: force a sync
// so the cache (and everyone's next page load) reflects the sheet.
func (s *Server) finishPrayerAction(c *gin.Context, err error) {
	if err != nil {
		s.redirectPrayers(c, err)
		return
	}
	s.refreshCache(c, true)
	c.Redirect(http.StatusFound, "/prayers")
}

func (s *Server) redirectPrayers(c *gin.Context, err error) {
	s.logger.Warn("Prayer request action failed", zap.Error(err))
	c.Redirect(http.StatusFound, "/prayers?error="+url.QueryEscape(err.Error()))
}
