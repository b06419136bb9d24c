package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/internal/page"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
	"github.com/fomo-campus/fomo-portal/pkg/response"
)

const (
	collegeProfileDraft = "college-profile"

	// CollegeSetupPath is the form shown to colleges without a profile.
	CollegeSetupPath = "/auth/college-profile"
	// CollegeDashboardPath is where a completed setup lands.
	CollegeDashboardPath = "/colleges/dashboard"
)

type collegeProfileService interface {
	Setup(ctx context.Context, session *models.Session, in models.CollegeProfileInput) (*models.CollegeProfile, error)
	Current(ctx context.Context, session *models.Session) (*models.CollegeProfile, error)
	Update(ctx context.Context, session *models.Session, documentID string, in models.CollegeProfileInput) (*models.CollegeProfile, error)
	Delete(ctx context.Context, session *models.Session) error
	HasCompleted(ctx context.Context, session *models.Session) (bool, error)
}

// CollegeProfilePage is the college profile page: the saved profile and, while
// editing, the draft on screen.
type CollegeProfilePage struct {
	State   page.EditState         `json:"state"`
	Profile models.CollegeProfile  `json:"profile"`
	Draft   *models.CollegeProfile `json:"draft,omitempty"`
}

// CollegeProfileHandler serves the college setup and profile pages.
type CollegeProfileHandler struct {
	service    collegeProfileService
	sessions   sessionSaver
	staleAfter time.Duration
	logger     *zap.Logger
}

// NewCollegeProfileHandler constructs the handler. staleAfter bounds how long
// a save started by an earlier request blocks new saves.
func NewCollegeProfileHandler(service collegeProfileService, sessions sessionSaver, staleAfter time.Duration, logger *zap.Logger) *CollegeProfileHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollegeProfileHandler{service: service, sessions: sessions, staleAfter: staleAfter, logger: logger}
}

// Setup godoc
// @Summary Create the college profile
// @Description Validate and store the setup form, then send the college to its dashboard
// @Tags College
// @Accept json
// @Produce json
// @Param payload body models.CollegeProfileInput true "Profile"
// @Success 303 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /auth/college-profile [post]
func (h *CollegeProfileHandler) Setup(c *gin.Context) {
	var in models.CollegeProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session := sessionFromContext(c)
	if _, err := h.service.Setup(c.Request.Context(), session, in); err != nil {
		response.Error(c, err)
		return
	}
	commitSession(c, h.sessions, session, h.logger)
	renderView(c, page.RedirectTo[CollegeProfilePage](CollegeDashboardPath))
}

// Show godoc
// @Summary College profile page
// @Description Load the session college's profile; colleges without one are sent to setup
// @Tags College
// @Produce json
// @Success 200 {object} response.Envelope
// @Success 303 {object} response.Envelope
// @Router /colleges/profile [get]
func (h *CollegeProfileHandler) Show(c *gin.Context) {
	session := sessionFromContext(c)
	profile, err := h.service.Current(c.Request.Context(), session)
	if errors.Is(err, appErrors.ErrNotFound) {
		renderView(c, page.RedirectTo[CollegeProfilePage](CollegeSetupPath))
		return
	}
	if err != nil {
		renderView(c, page.Resolve(CollegeProfilePage{}, err, nil))
		return
	}

	editor := h.editor(session, *profile)
	commitSession(c, h.sessions, session, h.logger)
	renderView(c, page.Content(pageOf(editor)))
}

// Edit godoc
// @Summary Enter edit mode
// @Tags College
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /colleges/profile/edit [post]
func (h *CollegeProfileHandler) Edit(c *gin.Context) {
	session := sessionFromContext(c)
	profile, err := h.service.Current(c.Request.Context(), session)
	if errors.Is(err, appErrors.ErrNotFound) {
		renderView(c, page.RedirectTo[CollegeProfilePage](CollegeSetupPath))
		return
	}
	if err != nil {
		response.Error(c, err)
		return
	}

	editor := h.editor(session, *profile)
	if err := editor.Begin(); err != nil {
		response.Error(c, err)
		return
	}
	h.store(c, session, editor)
	renderView(c, page.Content(pageOf(editor)))
}

// ChangeDraft godoc
// @Summary Change draft fields
// @Description Apply form field changes to the draft. Nothing is sent to the CMS.
// @Tags College
// @Accept json
// @Produce json
// @Param payload body map[string]string true "Field changes"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /colleges/profile/draft [patch]
func (h *CollegeProfileHandler) ChangeDraft(c *gin.Context) {
	var fields map[string]string
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	session := sessionFromContext(c)
	editor, ok := h.restore(session)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "page is not being edited"))
		return
	}
	if err := editor.Change(func(p *models.CollegeProfile) error { return p.Apply(fields) }); err != nil {
		response.Error(c, err)
		return
	}
	h.store(c, session, editor)
	renderView(c, page.Content(pageOf(editor)))
}

// Cancel godoc
// @Summary Leave edit mode
// @Description Discard the draft and show the saved profile. Nothing is sent to the CMS.
// @Tags College
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /colleges/profile/cancel [post]
func (h *CollegeProfileHandler) Cancel(c *gin.Context) {
	session := sessionFromContext(c)
	editor, ok := h.restore(session)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "page is not being edited"))
		return
	}
	if _, err := editor.Cancel(); err != nil {
		response.Error(c, err)
		return
	}
	session.SetDraft(collegeProfileDraft, nil)
	commitSession(c, h.sessions, session, h.logger)
	renderView(c, page.Content(pageOf(editor)))
}

// Save godoc
// @Summary Save the draft
// @Description Send the draft to the CMS. A save already in flight is rejected.
// @Tags College
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /colleges/profile/save [post]
func (h *CollegeProfileHandler) Save(c *gin.Context) {
	session := sessionFromContext(c)
	editor, ok := h.restore(session)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrConflict, "page is not being edited"))
		return
	}
	draft, err := editor.BeginSave()
	if err != nil {
		response.Error(c, err)
		return
	}
	h.store(c, session, editor)

	updated, err := h.service.Update(c.Request.Context(), session, draft.DocumentID, draft.Input())
	var result models.CollegeProfile
	if updated != nil {
		result = *updated
	}
	editor.FinishSave(result, err)
	if err != nil {
		h.store(c, session, editor)
		response.Error(c, err)
		return
	}
	session.SetDraft(collegeProfileDraft, nil)
	commitSession(c, h.sessions, session, h.logger)
	renderView(c, page.Content(pageOf(editor)))
}

// Delete godoc
// @Summary Delete the college profile
// @Tags College
// @Success 204
// @Failure 404 {object} response.Envelope
// @Router /colleges/profile [delete]
func (h *CollegeProfileHandler) Delete(c *gin.Context) {
	session := sessionFromContext(c)
	if err := h.service.Delete(c.Request.Context(), session); err != nil {
		response.Error(c, err)
		return
	}
	session.SetDraft(collegeProfileDraft, nil)
	commitSession(c, h.sessions, session, h.logger)
	response.NoContent(c)
}

// Status godoc
// @Summary College profile completion
// @Tags College
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /colleges/profile/status [get]
func (h *CollegeProfileHandler) Status(c *gin.Context) {
	session := sessionFromContext(c)
	done, err := h.service.HasCompleted(c.Request.Context(), session)
	if err != nil {
		response.Error(c, err)
		return
	}
	commitSession(c, h.sessions, session, h.logger)
	response.JSON(c, http.StatusOK, gin.H{"hasCompletedCollegeProfile": done})
}

// editor resumes an edit of profile kept in the session, or starts viewing it.
func (h *CollegeProfileHandler) editor(session *models.Session, profile models.CollegeProfile) *page.Editor[models.CollegeProfile] {
	if editor, ok := h.restore(session); ok && editor.Saved().DocumentID == profile.DocumentID {
		return editor
	}
	session.SetDraft(collegeProfileDraft, nil)
	return page.NewEditor(profile)
}

func (h *CollegeProfileHandler) restore(session *models.Session) (*page.Editor[models.CollegeProfile], bool) {
	raw, ok := session.Draft(collegeProfileDraft)
	if !ok {
		return nil, false
	}
	var snap page.Snapshot[models.CollegeProfile]
	if err := json.Unmarshal(raw, &snap); err != nil {
		h.logger.Debug("discarding unreadable draft", zap.Error(err))
		return nil, false
	}
	editor := page.RestoreEditor(snap, h.staleAfter)
	if editor.State() == page.StateViewing {
		return nil, false
	}
	return editor, true
}

func (h *CollegeProfileHandler) store(c *gin.Context, session *models.Session, editor *page.Editor[models.CollegeProfile]) {
	raw, err := json.Marshal(editor.Snapshot())
	if err != nil {
		h.logger.Warn("draft encode failed", zap.Error(err))
		return
	}
	session.SetDraft(collegeProfileDraft, raw)
	commitSession(c, h.sessions, session, h.logger)
}

func pageOf(editor *page.Editor[models.CollegeProfile]) CollegeProfilePage {
	p := CollegeProfilePage{State: editor.State(), Profile: editor.Saved()}
	if p.State != page.StateViewing {
		draft := editor.Draft()
		p.Draft = &draft
	}
	return p
}
