package service

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

type collegeProfileRepository interface {
	FindForUser(ctx context.Context, src cms.TokenSource, userID int64) (*models.CollegeProfile, error)
	FindByOwnerDocumentID(ctx context.Context, src cms.TokenSource, documentID string) (*models.CollegeProfile, error)
	Create(ctx context.Context, src cms.TokenSource, in models.CollegeProfileInput) (*models.CollegeProfile, error)
	Update(ctx context.Context, src cms.TokenSource, documentID string, in models.CollegeProfileInput) (*models.CollegeProfile, error)
	Delete(ctx context.Context, src cms.TokenSource, documentID string) error
}

// CollegeProfileService manages the college profile of the session user.
type CollegeProfileService struct {
	repo      collegeProfileRepository
	users     userFetcher
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCollegeProfileService constructs CollegeProfileService.
func NewCollegeProfileService(repo collegeProfileRepository, users userFetcher, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CollegeProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CollegeProfileService{repo: repo, users: users, cache: cache, validator: validate, logger: logger}
}

// Setup creates the college profile and remembers its name in the session.
func (s *CollegeProfileService) Setup(ctx context.Context, session *models.Session, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	in = in.Normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	created, err := s.repo.Create(ctx, session, in)
	if err != nil {
		return nil, err
	}
	session.CollegeName = created.CollegeName
	if session.CollegeName == "" {
		session.CollegeName = in.CollegeName
	}
	return created, nil
}

// Current returns the college profile owned by the session user. The user is
// resolved through users/me when the session does not hold one yet.
func (s *CollegeProfileService) Current(ctx context.Context, session *models.Session) (*models.CollegeProfile, error) {
	user, err := s.user(ctx, session)
	if err != nil {
		return nil, err
	}

	profile, err := s.repo.FindForUser(ctx, session, user.ID)
	if errors.Is(err, appErrors.ErrNotFound) && user.DocumentID != "" {
		profile, err = s.repo.FindByOwnerDocumentID(ctx, session, user.DocumentID)
	}
	if err != nil {
		return nil, err
	}
	if profile.CollegeName != "" {
		session.CollegeName = profile.CollegeName
	}
	return profile, nil
}

// Update replaces the profile identified by documentID.
func (s *CollegeProfileService) Update(ctx context.Context, session *models.Session, documentID string, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	in = in.Normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	previous := session.CollegeName
	updated, err := s.repo.Update(ctx, session, documentID, in)
	if err != nil {
		return nil, err
	}
	if updated.CollegeName != "" {
		session.CollegeName = updated.CollegeName
	}
	if previous != "" && previous != session.CollegeName {
		s.cache.Invalidate(ctx, directoryPattern(previous))
	}
	return updated, nil
}

// Delete removes the session user's college profile.
func (s *CollegeProfileService) Delete(ctx context.Context, session *models.Session) error {
	profile, err := s.Current(ctx, session)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, session, profile.DocumentID); err != nil {
		return err
	}
	s.cache.Invalidate(ctx, directoryPattern(profile.CollegeName))
	session.CollegeName = ""
	s.logger.Info("college profile deleted", zap.String("document_id", profile.DocumentID))
	return nil
}

// HasCompleted reports whether the session user has a complete college profile.
// A missing profile is not an error.
func (s *CollegeProfileService) HasCompleted(ctx context.Context, session *models.Session) (bool, error) {
	profile, err := s.Current(ctx, session)
	if errors.Is(err, appErrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.Complete(), nil
}

func (s *CollegeProfileService) user(ctx context.Context, session *models.Session) (*models.User, error) {
	if !session.Authenticated() {
		return nil, appErrors.Clone(appErrors.ErrUnauthorized, "authentication token missing")
	}
	if session.User != nil && session.User.ID != 0 {
		return session.User, nil
	}
	user, err := s.users.Me(ctx, session)
	if err != nil {
		return nil, err
	}
	session.User = user
	return user, nil
}
