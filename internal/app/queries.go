package app

import (
	"context"

	"github.com/MatthewGuile/hellopeter-cli/internal/domain"
)

// QueryService is the read side used by the serve surface.
type QueryService struct {
	store domain.ReviewStore
}

func NewQueryService(store domain.ReviewStore) *QueryService {
	return &QueryService{store: store}
}

func (s *QueryService) GetBusiness(ctx context.Context, slug string) (domain.Business, error) {
	return s.store.GetBusiness(ctx, slug)
}

func (s *QueryService) ListBusinesses(ctx context.Context) ([]domain.Business, error) {
	return s.store.ListBusinesses(ctx)
}

func (s *QueryService) ListReviews(ctx context.Context, slug string, limit int) ([]domain.Review, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	return s.store.ListReviews(ctx, slug, limit)
}

func (s *QueryService) GetStats(ctx context.Context, slug string) (domain.BusinessStats, error) {
	return s.store.GetStats(ctx, slug)
}
