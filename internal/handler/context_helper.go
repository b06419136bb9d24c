package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/middleware"
	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/internal/page"
	"github.com/fomo-campus/fomo-portal/pkg/response"
)

type sessionSaver interface {
	Save(ctx context.Context, session *models.Session) error
}

// sessionFromContext never returns nil so handlers can read it unconditionally.
func sessionFromContext(c *gin.Context) *models.Session {
	if session := middleware.SessionFrom(c); session != nil {
		return session
	}
	return &models.Session{}
}

// commitSession persists session changes made while serving the request.
// A failed write is logged; the response already reflects the change.
func commitSession(c *gin.Context, saver sessionSaver, session *models.Session, logger *zap.Logger) {
	if saver == nil || session.ID == "" || !session.Authenticated() {
		return
	}
	if err := saver.Save(c.Request.Context(), session); err != nil {
		logger.Warn("session save failed", zap.String("session_id", session.ID), zap.Error(err))
	}
}

func renderView[T any](c *gin.Context, view page.View[T], meta ...map[string]interface{}) {
	switch view.Status {
	case page.StatusRedirect:
		c.Header("Location", view.Redirect)
		response.JSON(c, http.StatusSeeOther, view)
	case page.StatusError:
		response.Error(c, view.Error)
	default:
		response.JSON(c, http.StatusOK, view, meta...)
	}
}
