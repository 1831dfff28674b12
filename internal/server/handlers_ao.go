package server

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/services"
)

// handleDashboard is the area overseer's district view for one month:
// who has submitted, totals, approval state, and the AOPT figure.
func (s *Server) handleDashboard(c *gin.Context) {
	year, month := s.monthQuery(c)
	s.refreshCache(c, false)

	monthLabel := fmt.Sprintf("%s %d", time.Month(month).String(), year)
	summary, err := services.DistrictSummary(c.Request.Context(), s.store, year, month, monthLabel)
	if err != nil {
		s.fail(c, "district summary", err)
		return
	}

	c.HTML(http.StatusOK, "dashboard.html", gin.H{
		"Context":    requestContext(c),
		"Year":       year,
		"Month":      month,
		"MonthName":  time.Month(month).String(),
		"Summary":    summary,
		"AOPTAmount": summary.AOPTAmount.String(),
		"Error":      c.Query("error"),
	})
}

// handleMonthStatus flips a pastor's month between approved and pending
// by rewriting only the status cells on the sheet, then forces a sync.
func (s *Server) handleMonthStatus(c *gin.Context) {
	year, month := s.monthQuery(c)
	pastor := c.PostForm("pastor")
	approve := c.PostForm("action") != "revoke"

	err := services.SetMonthStatus(c.Request.Context(), s.store, s.sheet, s.sheet, s.logger,
		year, month, pastor, approve)
	if err != nil {
		s.logger.Error("Month status update failed",
			zap.String("pastor", pastor), zap.Error(err))
		c.Redirect(http.StatusFound, dashboardURL(year, month, "status update failed"))
		return
	}

	s.refreshCache(c, true)
	c.Redirect(http.StatusFound, dashboardURL(year, month, ""))
}

func dashboardURL(year, month int, errMsg string) string {
	u := fmt.Sprintf("/ao?year=%d&month=%d", year, month)
	if errMsg != "" {
		u += "&error=" + url.QueryEscape(errMsg)
	}
	return u
}
