package app

import (
	"context"
	"time"

	"emoji_map/internal/domain"
)

const placesCacheKey = "places:aggregate"

type QueryService struct {
	repo     domain.ReviewRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(r domain.ReviewRepository, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{repo: r, cache: c, cacheTTL: ttl}
}

// ListPlaces returns the aggregated place list for GET /reviews. The
// aggregate is recomputed from the raw review rows on every cache miss; it is
// never stored independently of its source reviews other than this TTL cache,
// which every mutation invalidates.
func (s *QueryService) ListPlaces(ctx context.Context) ([]domain.PlaceView, error) {
	var views []domain.PlaceView
	if ok, _ := s.cache.Get(ctx, placesCacheKey, &views); ok {
		return views, nil
	}

	reviews, places, err := s.repo.ListReviews(ctx)
	if err != nil {
		return nil, err
	}
	views = AggregatePlaces(reviews, places)

	// shallow copy of the outer slice; element internals are shared, and the
	// redis adapter serializes the value anyway
	_ = s.cache.Set(ctx, placesCacheKey, copyViews(views), int(s.cacheTTL.Seconds()))
	return views, nil
}

func copyViews(in []domain.PlaceView) []domain.PlaceView {
	if len(in) == 0 {
		return nil
	}
	out := make([]domain.PlaceView, len(in))
	copy(out, in)
	return out
}
