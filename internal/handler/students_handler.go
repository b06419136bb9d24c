package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/middleware"
	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/internal/page"
	"github.com/fomo-campus/fomo-portal/internal/service"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
	"github.com/fomo-campus/fomo-portal/pkg/response"
)

type directoryService interface {
	ListStudents(ctx context.Context, session *models.Session) (*service.StudentListing, error)
	Export(ctx context.Context, session *models.Session, format string) (*service.ExportFile, error)
}

// StudentsHandler serves the college's student listing.
type StudentsHandler struct {
	directory directoryService
	sessions  sessionSaver
	logger    *zap.Logger
}

// NewStudentsHandler constructs StudentsHandler.
func NewStudentsHandler(directory directoryService, sessions sessionSaver, logger *zap.Logger) *StudentsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentsHandler{directory: directory, sessions: sessions, logger: logger}
}

// List godoc
// @Summary Student listing
// @Description Students whose college matches the session college
// @Tags College
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 303 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /colleges/students [get]
func (h *StudentsHandler) List(c *gin.Context) {
	session := sessionFromContext(c)
	listing, err := h.directory.ListStudents(c.Request.Context(), session)
	if errors.Is(err, appErrors.ErrNotFound) {
		renderView(c, page.RedirectTo[service.StudentListing](CollegeSetupPath))
		return
	}
	if err != nil {
		renderView(c, page.Resolve(service.StudentListing{}, err, nil))
		return
	}
	commitSession(c, h.sessions, session, h.logger)
	middleware.SetCacheHit(c, listing.Cached)
	view := page.Resolve(*listing, nil, func(l service.StudentListing) bool { return len(l.Students) == 0 })
	renderView(c, view, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Export the student listing
// @Tags College
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /colleges/students/export [get]
func (h *StudentsHandler) Export(c *gin.Context) {
	session := sessionFromContext(c)
	file, err := h.directory.Export(c.Request.Context(), session, c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	commitSession(c, h.sessions, session, h.logger)
	response.Attachment(c, file.Filename, file.ContentType, file.Body)
}
