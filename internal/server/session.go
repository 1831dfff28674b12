package server

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kdeguzman/district4-tool/pkg/core/model"
	"github.com/kdeguzman/district4-tool/pkg/core/services"
)

const (
	sessionName     = "district4"
	sessionUserKey  = "username"
	sessionDirtyKey = "dirty_months"
	contextUserKey  = "request_context"
)

// requireLogin resolves the session's account against the cache and
// attaches a services.RequestContext. A vanished account (row removed
// from the sheet) invalidates the session.
func (s *Server) requireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		username, _ := session.Get(sessionUserKey).(string)
		if username == "" {
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		account, err := s.store.GetAccount(c.Request.Context(), username)
		if err != nil {
			s.logger.Error("Failed to load session account", zap.Error(err))
			c.String(http.StatusInternalServerError, "something went wrong")
			c.Abort()
			return
		}
		if account == nil {
			session.Clear()
			_ = session.Save()
			c.Redirect(http.StatusFound, "/")
			c.Abort()
			return
		}

		role := services.RolePastor
		if account.IsAreaOverseer() {
			role = services.RoleAreaOverseer
		}
		rc := &services.RequestContext{
			Username:      account.Username,
			Name:          account.Name,
			ChurchAddress: account.ChurchAddress,
			ChurchID:      account.ChurchID,
			Role:          role,
		}
		dirty, _ := session.Get(sessionDirtyKey).(string)
		for _, key := range decodeDirtyMonths(dirty) {
			rc.MarkDirty(key.Year, key.Month)
		}

		c.Set(contextUserKey, rc)
		c.Next()
	}
}

func (s *Server) requireAO() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !requestContext(c).IsAreaOverseer() {
			c.String(http.StatusForbidden, "area overseer only")
			c.Abort()
			return
		}
		c.Next()
	}
}

func requestContext(c *gin.Context) *services.RequestContext {
	return c.MustGet(contextUserKey).(*services.RequestContext)
}

// saveDirtyMonths writes the context's dirty set back into the cookie
// session. Call after any MarkDirty or ClearDirty.
func saveDirtyMonths(c *gin.Context, rc *services.RequestContext) {
	session := sessions.Default(c)
	session.Set(sessionDirtyKey, encodeDirtyMonths(rc))
	_ = session.Save()
}

// Dirty months travel in the cookie as "2026-1,2026-2"; a flat string
// avoids registering slice types with the session codec.
func encodeDirtyMonths(rc *services.RequestContext) string {
	keys := make([]string, 0, len(rc.DirtyMonths))
	for key := range rc.DirtyMonths {
		keys = append(keys, key.String())
	}
	return strings.Join(keys, ",")
}

func decodeDirtyMonths(s string) []model.MonthKey {
	var keys []model.MonthKey
	for _, part := range strings.Split(s, ",") {
		fields := strings.SplitN(part, "-", 2)
		if len(fields) != 2 {
			continue
		}
		year, err1 := strconv.Atoi(fields[0])
		month, err2 := strconv.Atoi(fields[1])
		if err1 != nil || err2 != nil {
			continue
		}
		keys = append(keys, model.MonthKey{Year: year, Month: month})
	}
	return keys
}
