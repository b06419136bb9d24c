package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
)

const studentProfilesResource = "student-profiles"

// StudentProfileRepository reads and writes student-profiles in the CMS.
type StudentProfileRepository struct {
	store *ProfileStore[models.StudentProfile, models.StudentProfileInput]
}

// NewStudentProfileRepository constructs the repository.
func NewStudentProfileRepository(client *cms.Client, logger *zap.Logger) *StudentProfileRepository {
	return &StudentProfileRepository{
		store: NewProfileStore[models.StudentProfile, models.StudentProfileInput](client, studentProfilesResource, logger),
	}
}

// FindByStudentID returns the profile carrying the given studentId.
func (r *StudentProfileRepository) FindByStudentID(ctx context.Context, src cms.TokenSource, studentID string) (*models.StudentProfile, error) {
	q := cms.Query{
		Filters:  []cms.Filter{cms.Eq(studentID, "studentId")},
		Populate: "*",
	}
	return r.store.First(ctx, src, q)
}

// ListByCollege returns every student whose college field equals collegeName.
func (r *StudentProfileRepository) ListByCollege(ctx context.Context, src cms.TokenSource, collegeName string) ([]models.StudentProfile, error) {
	q := cms.Query{
		Filters:  []cms.Filter{cms.Eq(collegeName, "college")},
		Populate: "*",
	}
	return r.store.List(ctx, src, q)
}

// Create stores a new student profile.
func (r *StudentProfileRepository) Create(ctx context.Context, src cms.TokenSource, in models.StudentProfileInput) (*models.StudentProfile, error) {
	return r.store.Create(ctx, src, in)
}

// Update replaces the profile identified by documentID.
func (r *StudentProfileRepository) Update(ctx context.Context, src cms.TokenSource, documentID string, in models.StudentProfileInput) (*models.StudentProfile, error) {
	return r.store.Update(ctx, src, documentID, in)
}
