package repository

import (
	"context"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
)

// MediaRepository forwards uploads to the CMS media library.
type MediaRepository struct {
	client *cms.Client
}

// NewMediaRepository constructs the repository.
func NewMediaRepository(client *cms.Client) *MediaRepository {
	return &MediaRepository{client: client}
}

// Upload stores file and returns the first stored entry with its URL resolved.
func (r *MediaRepository) Upload(ctx context.Context, src cms.TokenSource, file cms.File) (*models.Media, error) {
	stored, err := r.client.Upload(ctx, src, file)
	if err != nil {
		return nil, err
	}
	first := stored[0]
	return &models.Media{
		ID:   first.ID,
		Name: first.Name,
		URL:  r.client.AssetURL(first.URL),
		Mime: first.Mime,
		Size: first.Size,
	}, nil
}
