package repository

import (
	"context"

	"github.com/fomo-campus/fomo-portal/internal/models"
	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

const usersMeEndpoint = "users/me"

// UserRepository resolves the account behind a CMS token.
type UserRepository struct {
	client *cms.Client
}

// NewUserRepository constructs the repository.
func NewUserRepository(client *cms.Client) *UserRepository {
	return &UserRepository{client: client}
}

// Me returns the user that owns the token. users/me is not enveloped.
func (r *UserRepository) Me(ctx context.Context, src cms.TokenSource) (*models.User, error) {
	var user models.User
	if err := r.client.Fetch(ctx, src, usersMeEndpoint, &user); err != nil {
		return nil, err
	}
	if user.ID == 0 && user.DocumentID == "" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "user not found")
	}
	return &user, nil
}
