package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fomo-campus/fomo-portal/internal/models"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

func newSessionService(store *mockSessionStore, users *mockUsers) *SessionService {
	return NewSessionService(store, users, SessionConfig{Secret: "secret", TTL: time.Hour}, nil, nil)
}

func TestSessionStartFetchesUserWhenOmitted(t *testing.T) {
	store := newMockSessionStore()
	users := &mockUsers{user: &models.User{ID: 7, Username: "gec"}}
	svc := newSessionService(store, users)

	session, err := svc.Start(context.Background(), nil, models.SessionInput{JWT: " cms-jwt "})
	require.NoError(t, err)
	assert.NotEmpty(t, session.ID)
	assert.Equal(t, "cms-jwt", session.Token)
	assert.Equal(t, int64(7), session.User.ID)
	assert.Equal(t, []string{"cms-jwt"}, users.tokens)
	assert.Equal(t, time.Hour, store.ttls[session.ID])
}

func TestSessionStartReusesExistingSession(t *testing.T) {
	store := newMockSessionStore()
	users := &mockUsers{user: &models.User{ID: 1, Username: "gec"}}
	svc := newSessionService(store, users)

	existing := &models.Session{ID: "keep", CollegeName: "Old"}
	session, err := svc.Start(context.Background(), existing, models.SessionInput{JWT: "t", User: &models.User{ID: 1}})
	require.NoError(t, err)
	assert.Equal(t, "keep", session.ID)
	assert.Empty(t, session.CollegeName)
	assert.Equal(t, 1, users.calls)
	assert.Equal(t, "gec", session.User.Username)
}

func TestSessionStartRejectsUserNotOwningToken(t *testing.T) {
	store := newMockSessionStore()
	users := &mockUsers{user: &models.User{ID: 7, Username: "gec"}}
	svc := newSessionService(store, users)

	_, err := svc.Start(context.Background(), nil, models.SessionInput{JWT: "t", User: &models.User{ID: 99, Username: "admin"}})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.Equal(t, []string{"t"}, users.tokens)
	assert.Empty(t, store.sessions)
}

func TestSessionStartStoresFetchedUser(t *testing.T) {
	store := newMockSessionStore()
	users := &mockUsers{user: &models.User{ID: 7, Username: "gec"}}
	svc := newSessionService(store, users)

	session, err := svc.Start(context.Background(), nil, models.SessionInput{JWT: "t", User: &models.User{ID: 7, Username: "spoofed"}})
	require.NoError(t, err)
	assert.Equal(t, "gec", session.User.Username)
}

func TestSessionStartRequiresJWT(t *testing.T) {
	svc := newSessionService(newMockSessionStore(), &mockUsers{})
	_, err := svc.Start(context.Background(), nil, models.SessionInput{JWT: "  "})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestSessionStartPropagatesLookupFailure(t *testing.T) {
	store := newMockSessionStore()
	svc := newSessionService(store, &mockUsers{err: appErrors.ErrUnauthorized})
	_, err := svc.Start(context.Background(), nil, models.SessionInput{JWT: "bad"})
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
	assert.Empty(t, store.sessions)
}

func TestSessionCookieRoundTrip(t *testing.T) {
	svc := newSessionService(newMockSessionStore(), &mockUsers{})

	cookie, err := svc.IssueCookie(&models.Session{ID: "sid-1"})
	require.NoError(t, err)
	sid, err := svc.ParseCookie(cookie)
	require.NoError(t, err)
	assert.Equal(t, "sid-1", sid)
}

func TestSessionCookieRejectsTampering(t *testing.T) {
	svc := newSessionService(newMockSessionStore(), &mockUsers{})
	other := NewSessionService(newMockSessionStore(), &mockUsers{}, SessionConfig{Secret: "other"}, nil, nil)

	cookie, err := other.IssueCookie(&models.Session{ID: "sid-1"})
	require.NoError(t, err)
	_, err = svc.ParseCookie(cookie)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	_, err = svc.ParseCookie("garbage")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))

	none := jwt.NewWithClaims(jwt.SigningMethodNone, models.SessionClaims{SessionID: "sid-1"})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = svc.ParseCookie(unsigned)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestSessionCookieExpires(t *testing.T) {
	svc := newSessionService(newMockSessionStore(), &mockUsers{})
	issued := time.Now()
	svc.now = func() time.Time { return issued }
	cookie, err := svc.IssueCookie(&models.Session{ID: "sid-1"})
	require.NoError(t, err)

	svc.now = func() time.Time { return issued.Add(2 * time.Hour) }
	_, err = svc.ParseCookie(cookie)
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestSessionLoadSaveEnd(t *testing.T) {
	store := newMockSessionStore()
	svc := newSessionService(store, &mockUsers{})
	ctx := context.Background()

	_, err := svc.Load(ctx, "")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	session := svc.Anonymous()
	session.CollegeName = "GEC"
	require.NoError(t, svc.Save(ctx, session))
	loaded, err := svc.Load(ctx, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "GEC", loaded.CollegeName)

	require.NoError(t, svc.End(ctx, session.ID))
	_, err = svc.Load(ctx, session.ID)
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSessionViewer(t *testing.T) {
	svc := newSessionService(newMockSessionStore(), &mockUsers{})

	assert.False(t, svc.Viewer(&models.Session{}).LoggedIn)
	assert.Equal(t, "User", svc.Viewer(&models.Session{Token: "t"}).Username)

	v := svc.Viewer(&models.Session{Token: "t", User: &models.User{Username: "gecthrissur"}})
	assert.True(t, v.LoggedIn)
	assert.Equal(t, "GE", v.Abbreviation)
}
