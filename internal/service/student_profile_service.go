package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

type studentProfileRepository interface {
	FindByStudentID(ctx context.Context, src cms.TokenSource, studentID string) (*models.StudentProfile, error)
	ListByCollege(ctx context.Context, src cms.TokenSource, collegeName string) ([]models.StudentProfile, error)
	Create(ctx context.Context, src cms.TokenSource, in models.StudentProfileInput) (*models.StudentProfile, error)
	Update(ctx context.Context, src cms.TokenSource, documentID string, in models.StudentProfileInput) (*models.StudentProfile, error)
}

type mediaRepository interface {
	Upload(ctx context.Context, src cms.TokenSource, file cms.File) (*models.Media, error)
}

// StudentProfileService manages student profiles and their media.
type StudentProfileService struct {
	repo      studentProfileRepository
	media     mediaRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStudentProfileService constructs StudentProfileService.
func NewStudentProfileService(repo studentProfileRepository, media mediaRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *StudentProfileService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StudentProfileService{repo: repo, media: media, cache: cache, validator: validate, logger: logger}
}

// Get returns the profile for studentID.
func (s *StudentProfileService) Get(ctx context.Context, src cms.TokenSource, studentID string) (*models.StudentProfile, error) {
	studentID = strings.TrimSpace(studentID)
	if studentID == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "userId is required")
	}
	return s.repo.FindByStudentID(ctx, src, studentID)
}

// Create stores a new student profile.
func (s *StudentProfileService) Create(ctx context.Context, src cms.TokenSource, in models.StudentProfileInput) (*models.StudentProfile, error) {
	in = in.Normalize()
	if err := s.validator.Struct(in); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid payload")
	}
	created, err := s.repo.Create(ctx, src, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, in.College, created.College)
	return created, nil
}

// Update changes the fields set in in. Empty fields are left untouched.
func (s *StudentProfileService) Update(ctx context.Context, src cms.TokenSource, documentID string, in models.StudentProfileInput) (*models.StudentProfile, error) {
	in = in.Normalize()
	if in.Email != "" {
		if err := s.validator.Var(in.Email, "email"); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid email")
		}
	}
	updated, err := s.repo.Update(ctx, src, documentID, in)
	if err != nil {
		return nil, err
	}
	// The previous college is unknown here, so every listing is dropped.
	s.cache.Invalidate(ctx, allDirectories)
	return updated, nil
}

// UploadMedia forwards a file to the media library.
func (s *StudentProfileService) UploadMedia(ctx context.Context, src cms.TokenSource, file cms.File) (*models.Media, error) {
	if file.Content == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "file is required")
	}
	return s.media.Upload(ctx, src, file)
}

// HasCompleted reports whether studentID has a complete profile. A missing
// profile is not an error.
func (s *StudentProfileService) HasCompleted(ctx context.Context, src cms.TokenSource, studentID string) (bool, error) {
	profile, err := s.Get(ctx, src, studentID)
	if errors.Is(err, appErrors.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return profile.Complete(), nil
}

func (s *StudentProfileService) invalidate(ctx context.Context, colleges ...string) {
	seen := make(map[string]struct{}, len(colleges))
	for _, college := range colleges {
		if college == "" {
			continue
		}
		if _, ok := seen[college]; ok {
			continue
		}
		seen[college] = struct{}{}
		s.cache.Invalidate(ctx, directoryPattern(college))
	}
}
