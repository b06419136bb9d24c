package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/internal/page"
)

// ContextSessionKey is the gin context key storing the visitor session.
const ContextSessionKey = "session"

type sessionLoader interface {
	ParseCookie(raw string) (string, error)
	Load(ctx context.Context, id string) (*models.Session, error)
	Anonymous() *models.Session
}

type redirectObserver interface {
	ObserveRedirect(target string)
}

// Session attaches the visitor session named by the signed cookie. Visitors
// without a valid cookie get a fresh anonymous session that is not stored
// until something is written to it.
func Session(sessions sessionLoader, cookieName string, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		var session *models.Session
		if raw, err := c.Cookie(cookieName); err == nil && raw != "" {
			session = loadSession(c, sessions, raw, logger)
		}
		if session == nil {
			session = sessions.Anonymous()
		}
		c.Set(ContextSessionKey, session)
		c.Next()
	}
}

func loadSession(c *gin.Context, sessions sessionLoader, raw string, logger *zap.Logger) *models.Session {
	id, err := sessions.ParseCookie(raw)
	if err != nil {
		logger.Debug("ignoring session cookie", zap.Error(err))
		return nil
	}
	session, err := sessions.Load(c.Request.Context(), id)
	if err != nil {
		logger.Debug("session not loaded", zap.String("session_id", id), zap.Error(err))
		return nil
	}
	return session
}

// RequireSession sends visitors without a CMS token to the login page before
// any handler runs.
func RequireSession(observer redirectObserver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if SessionFrom(c).Authenticated() {
			c.Next()
			return
		}
		if observer != nil {
			observer.ObserveRedirect(page.LoginPath)
		}
		c.Redirect(http.StatusSeeOther, page.LoginPath)
		c.Abort()
	}
}

// SessionFrom returns the session attached by Session, or nil.
func SessionFrom(c *gin.Context) *models.Session {
	value, exists := c.Get(ContextSessionKey)
	if !exists {
		return nil
	}
	session, ok := value.(*models.Session)
	if !ok {
		return nil
	}
	return session
}
