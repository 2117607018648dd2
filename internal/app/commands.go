package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"restaurant_booking/internal/adapters/observability"
	"restaurant_booking/internal/domain"
)

// AuxRefPolicy controls what BookTable accepts as dish-stats references.
type AuxRefPolicy string

const (
	// AuxRefCompat preserves the original behavior: any dish-stats record
	// reference is accepted and incremented, with no ownership check and no
	// binding to the booking's dish list.
	AuxRefCompat AuxRefPolicy = "compat"
	// AuxRefBound requires each referenced record to belong to the calling
	// user and to a dish listed in the booking.
	AuxRefBound AuxRefPolicy = "bound"
)

// BookingService owns the four state-mutating entry points. The caller
// identity is supplied already verified by the transport; the service trusts
// it completely.
type BookingService struct {
	ledger domain.Ledger
	cache  domain.Cache
	policy AuxRefPolicy
}

func NewBookingService(l domain.Ledger, c domain.Cache, policy AuxRefPolicy) *BookingService {
	if policy == "" {
		policy = AuxRefCompat
	}
	return &BookingService{ledger: l, cache: c, policy: policy}
}

// InitUserStats creates the visit counter for (user, restaurant) at zero.
// A second call for the same pair fails and leaves the record untouched.
func (s *BookingService) InitUserStats(ctx context.Context, user, restaurant domain.ID) (domain.UserStats, error) {
	rec := domain.UserStats{User: user, Restaurant: restaurant, VisitCount: 0}
	if err := s.ledger.CreateUserStats(ctx, rec); err != nil {
		observability.ObserveOp("init_user_stats", "error")
		return domain.UserStats{}, err
	}
	s.invalidateUserStats(ctx, user, restaurant)
	observability.ObserveOp("init_user_stats", "ok")
	return rec, nil
}

// InitDishStats creates the order counter for (user, dish) at zero. The name
// is truncated to the buffer capacity, silently; that is the contract, not a
// validation failure.
func (s *BookingService) InitDishStats(ctx context.Context, user, dish domain.ID, name string) (domain.DishStats, error) {
	rec := domain.DishStats{User: user, Dish: dish, Count: 0}
	rec.SetName(name)
	if err := s.ledger.CreateDishStats(ctx, rec); err != nil {
		observability.ObserveOp("init_dish_stats", "error")
		return domain.DishStats{}, err
	}
	s.invalidateDishStats(ctx, user, dish)
	observability.ObserveOp("init_dish_stats", "ok")
	return rec, nil
}

// BookTableResult reports the state committed by one booking.
type BookTableResult struct {
	VisitCount uint64
	DishCounts []uint64
}

// BookTable increments the caller's visit counter for the restaurant, then
// walks the dish updates and increments each referenced dish-stats record.
// Each write commits on its own: a failure partway leaves earlier increments
// in place (there is no multi-record transaction).
//
// dishIDs is carried on the wire but not used for addressing under the
// compat policy; the bound policy checks each referenced record against it.
func (s *BookingService) BookTable(ctx context.Context, user, restaurant domain.ID, dishIDs []domain.ID, updates []domain.DishUpdate) (BookTableResult, error) {
	stats, err := s.ledger.UpdateUserStats(ctx, user, restaurant, func(rec *domain.UserStats) error {
		rec.VisitCount++
		return nil
	})
	if err != nil {
		observability.ObserveOp("book_table", "error")
		return BookTableResult{}, err
	}
	s.invalidateUserStats(ctx, user, restaurant)

	res := BookTableResult{VisitCount: stats.VisitCount}
	for i, upd := range updates {
		dish, err := s.ledger.UpdateDishStatsAt(ctx, upd.Stats, func(rec *domain.DishStats) error {
			if s.policy == AuxRefBound {
				if err := boundCheck(user, dishIDs, *rec); err != nil {
					return err
				}
			}
			rec.Count++
			return nil
		})
		if err != nil {
			if errors.Is(err, domain.ErrUnboundDishRef) {
				observability.ObserveOp("book_table", "rejected")
			} else {
				observability.ObserveOp("book_table", "error")
			}
			return res, fmt.Errorf("dish update %d: %w", i, err)
		}
		s.invalidateDishStats(ctx, dish.User, dish.Dish)
		res.DishCounts = append(res.DishCounts, dish.Count)
	}
	log.Debug().
		Str("user", user.String()).
		Str("restaurant", restaurant.String()).
		Uint64("visit_count", stats.VisitCount).
		Int("dish_updates", len(updates)).
		Msg("table booked")
	observability.ObserveOp("book_table", "ok")
	return res, nil
}

// boundCheck ties a referenced dish-stats record to the booking: the record
// must belong to the caller and its dish must be among the booked dishes.
func boundCheck(user domain.ID, dishIDs []domain.ID, rec domain.DishStats) error {
	if rec.User != user {
		return domain.ErrUnboundDishRef
	}
	for _, id := range dishIDs {
		if id == rec.Dish {
			return nil
		}
	}
	return domain.ErrUnboundDishRef
}

// SubmitReview stores the caller's one review of a restaurant. Validation
// happens before any record is touched; the record itself is created on
// first use and frozen once its text length is non-zero.
func (s *BookingService) SubmitReview(ctx context.Context, user, restaurant domain.ID, rating, confidence uint8, text string) (domain.Review, error) {
	if rating < 1 || rating > 5 {
		observability.ObserveOp("submit_review", "rejected")
		return domain.Review{}, domain.ErrInvalidRating
	}
	if confidence < 1 || confidence > 10 {
		observability.ObserveOp("submit_review", "rejected")
		return domain.Review{}, domain.ErrInvalidConfidenceLevel
	}

	// the written check and the write run as one serialized step in the
	// store: a concurrent duplicate submit cannot sneak in between them
	rec, err := s.ledger.UpdateReview(ctx, user, restaurant, func(r *domain.Review) error {
		if r.Written() {
			return domain.ErrReviewAlreadyExists
		}
		r.Rating = rating
		r.ConfidenceLevel = confidence
		r.SetText(text)
		return nil
	})
	if err != nil {
		if errors.Is(err, domain.ErrReviewAlreadyExists) {
			observability.ObserveOp("submit_review", "rejected")
		} else {
			observability.ObserveOp("submit_review", "error")
		}
		return domain.Review{}, err
	}
	s.invalidateReview(ctx, user, restaurant)
	observability.ObserveOp("submit_review", "ok")
	return rec, nil
}

// Cache invalidation; mutations always evict so readers never see a stale
// counter past the TTL they expect.

func (s *BookingService) invalidateUserStats(ctx context.Context, user, restaurant domain.ID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, userStatsCacheKey(user, restaurant))
}

func (s *BookingService) invalidateDishStats(ctx context.Context, user, dish domain.ID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, dishStatsCacheKey(user, dish))
}

func (s *BookingService) invalidateReview(ctx context.Context, user, restaurant domain.ID) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Del(ctx, reviewCacheKey(user, restaurant))
}
