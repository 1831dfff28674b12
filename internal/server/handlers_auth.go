package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/services"
)

func (s *Server) handleSplash(c *gin.Context) {
	s.refreshCache(c, false)

	ref, text, err := services.VerseOfTheDay(c.Request.Context(), s.store, s.verses, s.logger, s.now())
	if err != nil {
		s.logger.Warn("Verse of the day unavailable", zap.Error(err))
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"VerseReference": ref,
		"VerseText":      text,
		"Error":          c.Query("error"),
	})
}

func (s *Server) handleLogin(c *gin.Context) {
	username := strings.TrimSpace(c.PostForm("username"))
	password := c.PostForm("password")

	s.refreshCache(c, false)

	account, err := s.store.GetAccount(c.Request.Context(), username)
	if err != nil {
		s.logger.Error("Login lookup failed", zap.Error(err))
		c.Redirect(http.StatusFound, "/?error=try+again")
		return
	}
	if account == nil || strings.TrimSpace(account.Password) != strings.TrimSpace(password) {
		s.logger.Info("Rejected login", zap.String("username", username))
		c.Redirect(http.StatusFound, "/?error=invalid+credentials")
		return
	}

	session := sessions.Default(c)
	session.Set(sessionUserKey, account.Username)
	session.Set(sessionDirtyKey, "")
	if err := session.Save(); err != nil {
		s.logger.Error("Failed to save session", zap.Error(err))
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	s.logger.Info("Login", zap.String("username", account.Username),
		zap.Bool("area_overseer", account.IsAreaOverseer()))
	if account.IsAreaOverseer() {
		c.Redirect(http.StatusFound, "/ao")
		return
	}
	c.Redirect(http.StatusFound, "/reports")
}

func (s *Server) handleLogout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	_ = session.Save()
	c.Redirect(http.StatusFound, "/")
}
