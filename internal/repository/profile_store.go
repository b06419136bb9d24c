package repository

import (
	"context"

	"go.uber.org/zap"

	"github.com/fomo-campus/fomo-portal/pkg/cms"
	appErrors "github.com/fomo-campus/fomo-portal/pkg/errors"
)

const (
	listPageSize = 100
	listMaxPages = 50
)

// ProfileStore is the typed access path to one CMS collection. T is the
// record as read, In the payload accepted on writes.
type ProfileStore[T any, In any] struct {
	client   *cms.Client
	resource string
	logger   *zap.Logger
}

// NewProfileStore binds a store to the given collection, e.g. "college-profiles".
func NewProfileStore[T any, In any](client *cms.Client, resource string, logger *zap.Logger) *ProfileStore[T, In] {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileStore[T, In]{client: client, resource: resource, logger: logger}
}

// First returns the first record matching q. An empty match is ErrNotFound.
// When several records match, the first is kept and the count is logged.
func (s *ProfileStore[T, In]) First(ctx context.Context, src cms.TokenSource, q cms.Query) (*T, error) {
	var records []T
	meta, err := s.client.Get(ctx, src, s.resource, q, &records)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, s.resource+" not found")
	}
	if total := matchCount(meta, len(records)); total > 1 {
		s.logger.Warn("multiple records matched, using the first",
			zap.String("resource", s.resource),
			zap.String("query", q.Encode()),
			zap.Int("matches", total),
		)
	}
	return &records[0], nil
}

// List returns every record matching q, following pagination.
func (s *ProfileStore[T, In]) List(ctx context.Context, src cms.TokenSource, q cms.Query) ([]T, error) {
	all := make([]T, 0)
	for page := 1; page <= listMaxPages; page++ {
		var batch []T
		meta, err := s.client.Get(ctx, src, s.resource, q.WithPage(page, listPageSize), &batch)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if meta == nil || meta.Pagination.PageCount <= page || len(batch) == 0 {
			return all, nil
		}
	}
	s.logger.Warn("listing truncated",
		zap.String("resource", s.resource),
		zap.Int("records", len(all)),
	)
	return all, nil
}

// Create posts in and returns the created record as the CMS answered it.
func (s *ProfileStore[T, In]) Create(ctx context.Context, src cms.TokenSource, in In) (*T, error) {
	var created T
	if err := s.client.Create(ctx, src, s.resource, in, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

// Update replaces the record identified by documentID.
func (s *ProfileStore[T, In]) Update(ctx context.Context, src cms.TokenSource, documentID string, in In) (*T, error) {
	var updated T
	if err := s.client.Update(ctx, src, s.resource, documentID, in, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the record identified by documentID.
func (s *ProfileStore[T, In]) Delete(ctx context.Context, src cms.TokenSource, documentID string) error {
	return s.client.Delete(ctx, src, s.resource, documentID)
}

func matchCount(meta *cms.Meta, fetched int) int {
	if meta != nil && meta.Pagination.Total > fetched {
		return meta.Pagination.Total
	}
	return fetched
}
