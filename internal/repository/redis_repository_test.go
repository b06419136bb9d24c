package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fomo-campus/fomo-portal/internal/models"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSessionRepositoryRoundTripAndExpiry(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	session := &models.Session{ID: "sid-1", Token: "jwt", User: &models.User{ID: 3, Username: "gec"}, CollegeName: "GEC"}
	require.NoError(t, repo.Save(ctx, session, time.Hour))
	assert.True(t, mr.Exists("session:sid-1"))

	loaded, err := repo.Get(ctx, "sid-1")
	require.NoError(t, err)
	assert.Equal(t, "jwt", loaded.Token)
	assert.Equal(t, "GEC", loaded.CollegeName)
	require.NotNil(t, loaded.User)
	assert.Equal(t, "gec", loaded.User.Username)

	mr.FastForward(2 * time.Hour)
	_, err = repo.Get(ctx, "sid-1")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestSessionRepositoryStoresBrowserKeys(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewSessionRepository(client)

	require.NoError(t, repo.Save(context.Background(), &models.Session{ID: "s", Token: "jwt", CollegeName: "GEC"}, time.Minute))
	raw, err := mr.Get("session:s")
	require.NoError(t, err)
	assert.Contains(t, raw, `"fomo_token":"jwt"`)
	assert.Contains(t, raw, `"collegeName":"GEC"`)
}

func TestSessionRepositoryDelete(t *testing.T) {
	_, client := newRedis(t)
	repo := NewSessionRepository(client)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &models.Session{ID: "s"}, time.Minute))
	require.NoError(t, repo.Delete(ctx, "s"))
	require.NoError(t, repo.Delete(ctx, "s"))
	_, err := repo.Get(ctx, "s")
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))

	assert.True(t, errors.Is(repo.Save(ctx, &models.Session{}, time.Minute), appErrors.ErrValidation))
}

func TestCacheRepositoryNamespacedKeys(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewCacheRepository(client, "directory", nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "college:GEC", []string{"a"}, time.Minute))
	assert.True(t, mr.Exists("directory:college:GEC"))

	var got []string
	require.NoError(t, repo.Get(ctx, "college:GEC", &got))
	assert.Equal(t, []string{"a"}, got)

	assert.ErrorIs(t, repo.Get(ctx, "college:other", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryDropsUndecodableEntries(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewCacheRepository(client, "directory", nil)

	require.NoError(t, mr.Set("directory:college:GEC", "{not json"))
	var got []string
	assert.ErrorIs(t, repo.Get(context.Background(), "college:GEC", &got), appErrors.ErrCacheMiss)
	assert.False(t, mr.Exists("directory:college:GEC"))
}

func TestCacheRepositoryDeleteByPattern(t *testing.T) {
	mr, client := newRedis(t)
	repo := NewCacheRepository(client, "directory", nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "college:A", 1, time.Minute))
	require.NoError(t, repo.Set(ctx, "college:B", 2, time.Minute))
	require.NoError(t, mr.Set("session:keep", "x"))

	require.NoError(t, repo.DeleteByPattern(ctx, "college:*"))
	assert.False(t, mr.Exists("directory:college:A"))
	assert.False(t, mr.Exists("directory:college:B"))
	assert.True(t, mr.Exists("session:keep"))
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "directory", nil)
	var got int
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", 1, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(context.Background(), "*"))
}
