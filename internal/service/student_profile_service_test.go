package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

var studentToken = cms.StaticToken("t")

func TestStudentCreateValidates(t *testing.T) {
	repo := &mockStudentRepo{}
	svc := NewStudentProfileService(repo, &mockMedia{}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Create(ctx, studentToken, models.StudentProfileInput{Name: "Asha"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(ctx, studentToken, models.StudentProfileInput{StudentID: "s1", Name: "Asha", Email: "not-an-email"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
	assert.Empty(t, repo.created)

	created, err := svc.Create(ctx, studentToken, models.StudentProfileInput{StudentID: "s1", Name: " Asha ", Email: "asha@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "Asha", created.Name)
}

func TestStudentCreateInvalidatesCollegeListing(t *testing.T) {
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	svc := NewStudentProfileService(&mockStudentRepo{}, &mockMedia{}, cache, nil, nil)

	_, err := svc.Create(context.Background(), studentToken, models.StudentProfileInput{StudentID: "s1", Name: "Asha", College: "GEC"})
	require.NoError(t, err)
	assert.Equal(t, []string{"college:GEC:*"}, cacheRepo.invalidated)
}

func TestStudentUpdateIsPartial(t *testing.T) {
	cacheRepo := newMemoryCache()
	cache := NewCacheService(cacheRepo, nil, time.Minute, nil, true)
	repo := &mockStudentRepo{}
	svc := NewStudentProfileService(repo, &mockMedia{}, cache, nil, nil)
	ctx := context.Background()

	_, err := svc.Update(ctx, studentToken, "p1", models.StudentProfileInput{About: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "hello", repo.updated["p1"].About)
	assert.Equal(t, []string{"college:*"}, cacheRepo.invalidated)

	_, err = svc.Update(ctx, studentToken, "p1", models.StudentProfileInput{Email: "bad"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}

func TestStudentGetAndHasCompleted(t *testing.T) {
	repo := &mockStudentRepo{byStudentID: map[string]*models.StudentProfile{
		"s1": {StudentID: "s1", Name: "A", College: "GEC", Course: "B.Tech", GraduationYear: "2026", About: "hi"},
		"s2": {StudentID: "s2", Name: "B"},
	}}
	svc := NewStudentProfileService(repo, &mockMedia{}, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.Get(ctx, studentToken, " ")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Get(ctx, studentToken, "missing")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	done, err := svc.HasCompleted(ctx, studentToken, "s1")
	require.NoError(t, err)
	assert.True(t, done)

	done, err = svc.HasCompleted(ctx, studentToken, "s2")
	require.NoError(t, err)
	assert.False(t, done)

	done, err = svc.HasCompleted(ctx, studentToken, "missing")
	require.NoError(t, err)
	assert.False(t, done)

	repo.err = appErrors.ErrUpstream
	_, err = svc.HasCompleted(ctx, studentToken, "s1")
	assert.True(t, errors.Is(err, appErrors.ErrUpstream))
}

func TestStudentUploadMedia(t *testing.T) {
	media := &mockMedia{media: &models.Media{ID: 9, URL: "http://cms/uploads/a.png"}}
	svc := NewStudentProfileService(&mockStudentRepo{}, media, nil, nil, nil)
	ctx := context.Background()

	_, err := svc.UploadMedia(ctx, studentToken, cms.File{Name: "a.png"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	stored, err := svc.UploadMedia(ctx, studentToken, cms.File{Name: "a.png", Content: strings.NewReader("x")})
	require.NoError(t, err)
	assert.Equal(t, int64(9), stored.ID)
	assert.Equal(t, []string{"a.png"}, media.names)
}
