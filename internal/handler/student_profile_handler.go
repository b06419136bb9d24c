package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/internal/page"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
	"github.com/fomo-campus/fomo-portal/pkg/response"
)

type studentProfileService interface {
	Get(ctx context.Context, src cms.TokenSource, studentID string) (*models.StudentProfile, error)
	Create(ctx context.Context, src cms.TokenSource, in models.StudentProfileInput) (*models.StudentProfile, error)
	Update(ctx context.Context, src cms.TokenSource, documentID string, in models.StudentProfileInput) (*models.StudentProfile, error)
	UploadMedia(ctx context.Context, src cms.TokenSource, file cms.File) (*models.Media, error)
	HasCompleted(ctx context.Context, src cms.TokenSource, studentID string) (bool, error)
}

// StudentProfileHandler serves the student profile page and its media uploads.
type StudentProfileHandler struct {
	service        studentProfileService
	maxUploadBytes int64
}

// NewStudentProfileHandler constructs StudentProfileHandler.
func NewStudentProfileHandler(service studentProfileService, maxUploadBytes int64) *StudentProfileHandler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = 5 << 20
	}
	return &StudentProfileHandler{service: service, maxUploadBytes: maxUploadBytes}
}

// Show godoc
// @Summary Student profile page
// @Description A student without a profile gets an empty page
// @Tags Student
// @Produce json
// @Param userId query string true "Student id"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [get]
func (h *StudentProfileHandler) Show(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), sessionFromContext(c), c.Query("userId"))
	if errors.Is(err, appErrors.ErrNotFound) {
		renderView(c, page.Empty[models.StudentProfile]())
		return
	}
	if err != nil {
		renderView(c, page.Resolve(models.StudentProfile{}, err, nil))
		return
	}
	renderView(c, page.Content(*profile))
}

// Create godoc
// @Summary Create a student profile
// @Tags Student
// @Accept json
// @Produce json
// @Param payload body models.StudentProfileInput true "Profile"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile [post]
func (h *StudentProfileHandler) Create(c *gin.Context) {
	var in models.StudentProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	created, err := h.service.Create(c.Request.Context(), sessionFromContext(c), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, created)
}

// Update godoc
// @Summary Update a student profile
// @Tags Student
// @Accept json
// @Produce json
// @Param documentId path string true "Profile document id"
// @Param payload body models.StudentProfileInput true "Changed fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /profile/{documentId} [put]
func (h *StudentProfileHandler) Update(c *gin.Context) {
	var in models.StudentProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	updated, err := h.service.Update(c.Request.Context(), sessionFromContext(c), c.Param("documentId"), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, updated)
}

// Status godoc
// @Summary Student profile completion
// @Tags Student
// @Produce json
// @Param userId query string true "Student id"
// @Success 200 {object} response.Envelope
// @Router /profile/status [get]
func (h *StudentProfileHandler) Status(c *gin.Context) {
	done, err := h.service.HasCompleted(c.Request.Context(), sessionFromContext(c), c.Query("userId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"hasCompletedProfile": done})
}

// UploadMedia godoc
// @Summary Upload a profile image
// @Description Forward a multipart file (field "file" or "files") to the CMS media library
// @Tags Student
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /profile/media [post]
func (h *StudentProfileHandler) UploadMedia(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	header, err := c.FormFile("file")
	if err != nil {
		header, err = c.FormFile("files")
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Error(c, appErrors.Clone(appErrors.ErrValidation, "file too large"))
			return
		}
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "unreadable file"))
		return
	}
	defer f.Close() //nolint:errcheck

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "only images can be uploaded"))
		return
	}
	media, err := h.service.UploadMedia(c.Request.Context(), sessionFromContext(c), cms.File{
		Name:        header.Filename,
		ContentType: contentType,
		Content:     f,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, media)
}
