package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
	"github.com/fomo-campus/fomo-portal/pkg/response"
)

type sessionManager interface {
	Start(ctx context.Context, existing *models.Session, in models.SessionInput) (*models.Session, error)
	End(ctx context.Context, id string) error
	IssueCookie(session *models.Session) (string, error)
	Viewer(session *models.Session) models.Viewer
}

// CookieConfig describes the session cookie.
type CookieConfig struct {
	Name   string
	MaxAge int
	Secure bool
}

// AuthHandler maps the login page's token hand-off onto portal sessions.
type AuthHandler struct {
	sessions sessionManager
	cookie   CookieConfig
	logger   *zap.Logger
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(sessions sessionManager, cookie CookieConfig, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{sessions: sessions, cookie: cookie, logger: logger}
}

// StartSession godoc
// @Summary Start a portal session
// @Description Store the CMS token issued at login and set the session cookie. The user is always fetched from users/me; a supplied user must match it.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param payload body models.SessionInput true "CMS login result"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/session [post]
func (h *AuthHandler) StartSession(c *gin.Context) {
	var in models.SessionInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid session payload"))
		return
	}

	session, err := h.sessions.Start(c.Request.Context(), sessionFromContext(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}

	value, err := h.sessions.IssueCookie(session)
	if err != nil {
		response.Error(c, err)
		return
	}
	h.setCookie(c, value, h.cookie.MaxAge)

	response.Created(c, h.sessions.Viewer(session))
}

// EndSession godoc
// @Summary End the portal session
// @Description Forget the stored CMS token and clear the session cookie
// @Tags Authentication
// @Success 204
// @Router /auth/session [delete]
func (h *AuthHandler) EndSession(c *gin.Context) {
	session := sessionFromContext(c)
	if err := h.sessions.End(c.Request.Context(), session.ID); err != nil {
		h.logger.Warn("session end failed", zap.String("session_id", session.ID), zap.Error(err))
	}
	h.setCookie(c, "", -1)
	response.NoContent(c)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, value, maxAge, "/", "", h.cookie.Secure, true)
}
