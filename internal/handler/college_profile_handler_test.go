package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/internal/page"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

type fakeCollegeService struct {
	profile   *models.CollegeProfile
	err       error
	updateErr error
	current   int
	updates   []models.CollegeProfileInput
	setups    int
}

func (f *fakeCollegeService) Setup(ctx context.Context, session *models.Session, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	f.setups++
	session.CollegeName = in.CollegeName
	return &models.CollegeProfile{DocumentID: "doc-1", CollegeName: in.CollegeName}, nil
}

func (f *fakeCollegeService) Current(ctx context.Context, session *models.Session) (*models.CollegeProfile, error) {
	f.current++
	if f.err != nil {
		return nil, f.err
	}
	p := *f.profile
	return &p, nil
}

func (f *fakeCollegeService) Update(ctx context.Context, session *models.Session, documentID string, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	f.updates = append(f.updates, in)
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return &models.CollegeProfile{
		DocumentID:        documentID,
		CollegeName:       in.CollegeName,
		Description:       in.Description,
		Location:          in.Location,
		NumberOfStudents:  models.FlexString(in.NumberOfStudents),
		EstablishmentDate: in.EstablishmentDate,
	}, nil
}

func (f *fakeCollegeService) Delete(ctx context.Context, session *models.Session) error {
	return f.err
}

func (f *fakeCollegeService) HasCompleted(ctx context.Context, session *models.Session) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.profile.Complete(), nil
}

func savedCollege() *models.CollegeProfile {
	return &models.CollegeProfile{
		DocumentID:        "doc-1",
		CollegeName:       "GEC Thrissur",
		Description:       "Engineering college",
		Location:          "Thrissur",
		NumberOfStudents:  "1200",
		EstablishmentDate: "1957-07-03",
	}
}

func collegeEngine(svc *fakeCollegeService, session *models.Session, saver *savedSessions) *gin.Engine {
	h := NewCollegeProfileHandler(svc, saver, time.Minute, nil)
	r := newEngine(session)
	r.POST("/auth/college-profile", h.Setup)
	r.GET("/colleges/profile", h.Show)
	r.DELETE("/colleges/profile", h.Delete)
	r.GET("/colleges/profile/status", h.Status)
	r.POST("/colleges/profile/edit", h.Edit)
	r.PATCH("/colleges/profile/draft", h.ChangeDraft)
	r.POST("/colleges/profile/cancel", h.Cancel)
	r.POST("/colleges/profile/save", h.Save)
	return r
}

func TestCollegeProfileEditCancelRestoresSavedWithoutUpdate(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	session := authedSession()
	r := collegeEngine(svc, session, &savedSessions{})

	w := performJSON(r, http.MethodGet, "/colleges/profile", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView[CollegeProfilePage](t, w)
	assert.Equal(t, "content", view.Status)
	assert.Equal(t, page.StateViewing, view.Data.State)
	assert.Nil(t, view.Data.Draft)

	w = performJSON(r, http.MethodPost, "/colleges/profile/edit", "")
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView[CollegeProfilePage](t, w)
	assert.Equal(t, page.StateEditing, view.Data.State)
	require.NotNil(t, view.Data.Draft)

	w = performJSON(r, http.MethodPatch, "/colleges/profile/draft", `{"collegeName":"Renamed","location":"Kochi"}`)
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView[CollegeProfilePage](t, w)
	assert.Equal(t, "Renamed", view.Data.Draft.CollegeName)
	assert.Equal(t, "GEC Thrissur", view.Data.Profile.CollegeName)

	currentCalls := svc.current
	w = performJSON(r, http.MethodPost, "/colleges/profile/cancel", "")
	require.Equal(t, http.StatusOK, w.Code)
	view = decodeView[CollegeProfilePage](t, w)
	assert.Equal(t, page.StateViewing, view.Data.State)
	assert.Equal(t, "GEC Thrissur", view.Data.Profile.CollegeName)
	assert.Equal(t, "Thrissur", view.Data.Profile.Location)
	assert.Nil(t, view.Data.Draft)

	assert.Equal(t, currentCalls, svc.current, "cancel must not reload the profile")
	assert.Empty(t, svc.updates)
	_, hasDraft := session.Draft(collegeProfileDraft)
	assert.False(t, hasDraft)
}

func TestCollegeProfileSaveSendsDraft(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	session := authedSession()
	saver := &savedSessions{}
	r := collegeEngine(svc, session, saver)

	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPost, "/colleges/profile/edit", "").Code)
	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPatch, "/colleges/profile/draft", `{"description":"Updated"}`).Code)

	w := performJSON(r, http.MethodPost, "/colleges/profile/save", "")
	require.Equal(t, http.StatusOK, w.Code)
	view := decodeView[CollegeProfilePage](t, w)
	assert.Equal(t, page.StateViewing, view.Data.State)
	assert.Equal(t, "Updated", view.Data.Profile.Description)

	require.Len(t, svc.updates, 1)
	assert.Equal(t, "Updated", svc.updates[0].Description)
	assert.Equal(t, "GEC Thrissur", svc.updates[0].CollegeName)
	_, hasDraft := session.Draft(collegeProfileDraft)
	assert.False(t, hasDraft)
	assert.Greater(t, saver.saves, 0)
}

func TestCollegeProfileSaveSendsClearedRanking(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	svc.profile.Ranking = "12"
	r := collegeEngine(svc, authedSession(), &savedSessions{})

	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPost, "/colleges/profile/edit", "").Code)
	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPatch, "/colleges/profile/draft", `{"ranking":""}`).Code)
	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPost, "/colleges/profile/save", "").Code)

	require.Len(t, svc.updates, 1)
	assert.Empty(t, svc.updates[0].Ranking)
	body, err := json.Marshal(svc.updates[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"ranking":""`)
}

func TestCollegeProfileSaveFailureKeepsEditing(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege(), updateErr: appErrors.ErrUpstream}
	session := authedSession()
	r := collegeEngine(svc, session, &savedSessions{})

	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPost, "/colleges/profile/edit", "").Code)
	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPatch, "/colleges/profile/draft", `{"location":"Kochi"}`).Code)

	w := performJSON(r, http.MethodPost, "/colleges/profile/save", "")
	assert.Equal(t, http.StatusBadGateway, w.Code)

	raw, ok := session.Draft(collegeProfileDraft)
	require.True(t, ok)
	var snap page.Snapshot[models.CollegeProfile]
	require.NoError(t, json.Unmarshal(raw, &snap))
	assert.Equal(t, page.StateEditing, snap.State)
	assert.Equal(t, "Kochi", snap.Draft.Location)
	assert.Equal(t, "Thrissur", snap.Saved.Location)
}

func TestCollegeProfileSaveInFlightConflicts(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	session := authedSession()
	since := time.Now()
	raw, err := json.Marshal(page.Snapshot[models.CollegeProfile]{
		State:       page.StateSaving,
		Saved:       *savedCollege(),
		Draft:       *savedCollege(),
		SavingSince: &since,
	})
	require.NoError(t, err)
	session.SetDraft(collegeProfileDraft, raw)
	r := collegeEngine(svc, session, &savedSessions{})

	w := performJSON(r, http.MethodPost, "/colleges/profile/save", "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Empty(t, svc.updates)
}

func TestCollegeProfileDraftRequiresEditing(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	r := collegeEngine(svc, authedSession(), &savedSessions{})

	w := performJSON(r, http.MethodPatch, "/colleges/profile/draft", `{"location":"Kochi"}`)
	assert.Equal(t, http.StatusConflict, w.Code)
	w = performJSON(r, http.MethodPost, "/colleges/profile/cancel", "")
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCollegeProfileDraftRejectsUnknownField(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	r := collegeEngine(svc, authedSession(), &savedSessions{})

	require.Equal(t, http.StatusOK, performJSON(r, http.MethodPost, "/colleges/profile/edit", "").Code)
	w := performJSON(r, http.MethodPatch, "/colleges/profile/draft", `{"motto":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollegeProfileShowRedirectsToSetupWithoutProfile(t *testing.T) {
	svc := &fakeCollegeService{err: appErrors.Clone(appErrors.ErrNotFound, "college-profiles not found")}
	r := collegeEngine(svc, authedSession(), &savedSessions{})

	w := performJSON(r, http.MethodGet, "/colleges/profile", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, CollegeSetupPath, w.Header().Get("Location"))
	view := decodeView[CollegeProfilePage](t, w)
	assert.Equal(t, "redirect", view.Status)
	assert.Equal(t, CollegeSetupPath, view.Redirect)
}

func TestCollegeProfileShowTokenRejectedRedirectsToLogin(t *testing.T) {
	svc := &fakeCollegeService{err: appErrors.ErrUnauthorized}
	r := collegeEngine(svc, authedSession(), &savedSessions{})

	w := performJSON(r, http.MethodGet, "/colleges/profile", "")
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, page.LoginPath, w.Header().Get("Location"))
}

func TestCollegeSetupRedirectsToDashboard(t *testing.T) {
	svc := &fakeCollegeService{}
	session := authedSession()
	saver := &savedSessions{}
	r := collegeEngine(svc, session, saver)

	w := performJSON(r, http.MethodPost, "/auth/college-profile", `{"collegeName":"GEC","description":"d","location":"l","numberOfStudents":"10","establishmentDate":"1957-07-03"}`)
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, CollegeDashboardPath, w.Header().Get("Location"))
	assert.Equal(t, 1, svc.setups)
	assert.Equal(t, "GEC", saver.last.CollegeName)

	w = performJSON(r, http.MethodPost, "/auth/college-profile", `{broken`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCollegeProfileStatus(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	r := collegeEngine(svc, authedSession(), &savedSessions{})

	w := performJSON(r, http.MethodGet, "/colleges/profile/status", "")
	require.Equal(t, http.StatusOK, w.Code)
	var data map[string]bool
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, w).Data, &data))
	assert.True(t, data["hasCompletedCollegeProfile"])
}

func TestCollegeProfileDelete(t *testing.T) {
	svc := &fakeCollegeService{profile: savedCollege()}
	r := collegeEngine(svc, authedSession(), &savedSessions{})

	w := performJSON(r, http.MethodDelete, "/colleges/profile", "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	svc.err = appErrors.ErrNotFound
	w = performJSON(r, http.MethodDelete, "/colleges/profile", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
