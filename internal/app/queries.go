package app

import (
	"context"
	"fmt"
	"time"

	"restaurant_booking/internal/domain"
)

// QueryService serves the read side with cache-aside over the ledger.
type QueryService struct {
	ledger   domain.Ledger
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewQueryService(l domain.Ledger, c domain.Cache, ttl time.Duration) *QueryService {
	return &QueryService{ledger: l, cache: c, cacheTTL: ttl}
}

func userStatsCacheKey(user, restaurant domain.ID) string {
	return fmt.Sprintf("user-stats:%s:%s", user, restaurant)
}

func dishStatsCacheKey(user, dish domain.ID) string {
	return fmt.Sprintf("dish-stats:%s:%s", user, dish)
}

func reviewCacheKey(user, restaurant domain.ID) string {
	return fmt.Sprintf("review:%s:%s", user, restaurant)
}

func (s *QueryService) GetUserStats(ctx context.Context, user, restaurant domain.ID) (domain.UserStatsView, error) {
	key := userStatsCacheKey(user, restaurant)
	var view domain.UserStatsView
	if ok, _ := s.cache.Get(ctx, key, &view); ok {
		return view, nil
	}
	rec, err := s.ledger.GetUserStats(ctx, user, restaurant)
	if err != nil {
		return domain.UserStatsView{}, err
	}
	view = userStatsView(rec)
	_ = s.cache.Set(ctx, key, view, int(s.cacheTTL.Seconds()))
	return view, nil
}

func (s *QueryService) GetDishStats(ctx context.Context, user, dish domain.ID) (domain.DishStatsView, error) {
	key := dishStatsCacheKey(user, dish)
	var view domain.DishStatsView
	if ok, _ := s.cache.Get(ctx, key, &view); ok {
		return view, nil
	}
	rec, err := s.ledger.GetDishStats(ctx, user, dish)
	if err != nil {
		return domain.DishStatsView{}, err
	}
	view = dishStatsView(rec)
	_ = s.cache.Set(ctx, key, view, int(s.cacheTTL.Seconds()))
	return view, nil
}

func (s *QueryService) GetReview(ctx context.Context, user, restaurant domain.ID) (domain.ReviewView, error) {
	key := reviewCacheKey(user, restaurant)
	var view domain.ReviewView
	if ok, _ := s.cache.Get(ctx, key, &view); ok {
		return view, nil
	}
	rec, err := s.ledger.GetReview(ctx, user, restaurant)
	if err != nil {
		return domain.ReviewView{}, err
	}
	view = reviewView(rec)
	_ = s.cache.Set(ctx, key, view, int(s.cacheTTL.Seconds()))
	return view, nil
}
