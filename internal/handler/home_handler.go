package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/response"
)

type viewerProvider interface {
	Viewer(session *models.Session) models.Viewer
}

// HomeHandler serves the landing page header.
type HomeHandler struct {
	viewers viewerProvider
}

// NewHomeHandler constructs HomeHandler.
func NewHomeHandler(viewers viewerProvider) *HomeHandler {
	return &HomeHandler{viewers: viewers}
}

// Home godoc
// @Summary Home page viewer
// @Description Username, abbreviation and login state of the visitor
// @Tags Pages
// @Produce json
// @Success 200 {object} response.Envelope
// @Router / [get]
func (h *HomeHandler) Home(c *gin.Context) {
	response.JSON(c, http.StatusOK, h.viewers.Viewer(sessionFromContext(c)))
}
