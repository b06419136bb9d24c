package repository

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
)

const collegeProfilesResource = "college-profiles"

// CollegeProfileRepository reads and writes college-profiles in the CMS.
type CollegeProfileRepository struct {
	store *ProfileStore[models.CollegeProfile, models.CollegeProfileInput]
}

// NewCollegeProfileRepository constructs the repository.
func NewCollegeProfileRepository(client *cms.Client, logger *zap.Logger) *CollegeProfileRepository {
	return &CollegeProfileRepository{
		store: NewProfileStore[models.CollegeProfile, models.CollegeProfileInput](client, collegeProfilesResource, logger),
	}
}

// FindForUser returns the profile whose user relation has the given numeric id.
func (r *CollegeProfileRepository) FindForUser(ctx context.Context, src cms.TokenSource, userID int64) (*models.CollegeProfile, error) {
	q := cms.Query{
		Filters:  []cms.Filter{cms.Eq(strconv.FormatInt(userID, 10), "user", "id")},
		Populate: "*",
	}
	return r.store.First(ctx, src, q)
}

// FindByOwnerDocumentID returns the profile whose userId field equals documentID.
func (r *CollegeProfileRepository) FindByOwnerDocumentID(ctx context.Context, src cms.TokenSource, documentID string) (*models.CollegeProfile, error) {
	q := cms.Query{
		Filters:  []cms.Filter{cms.Eq(documentID, "userId")},
		Populate: "*",
	}
	return r.store.First(ctx, src, q)
}

// Create stores a new college profile.
func (r *CollegeProfileRepository) Create(ctx context.Context, src cms.TokenSource, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	return r.store.Create(ctx, src, in)
}

// Update replaces the profile identified by documentID.
func (r *CollegeProfileRepository) Update(ctx context.Context, src cms.TokenSource, documentID string, in models.CollegeProfileInput) (*models.CollegeProfile, error) {
	return r.store.Update(ctx, src, documentID, in)
}

// Delete removes the profile identified by documentID.
func (r *CollegeProfileRepository) Delete(ctx context.Context, src cms.TokenSource, documentID string) error {
	return r.store.Delete(ctx, src, documentID)
}
