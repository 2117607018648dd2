package ledger

import (
	"lukechampine.com/blake3"

	"restaurant_booking/internal/domain"
)

// Namespace tags, byte-for-byte the seeds the original program derived its
// record addresses from.
const (
	tagUserStats = "user-stats"
	tagDishStats = "dish-stats"
	tagReview    = "review"
)

// deriveKey computes the record address for (tag, a, b). Deterministic:
// the same inputs always address the same record.
func deriveKey(tag string, a, b domain.ID) domain.Key {
	h := blake3.New(domain.IDSize, nil)
	h.Write([]byte(tag))
	h.Write(a[:])
	h.Write(b[:])
	var k domain.Key
	copy(k[:], h.Sum(nil))
	return k
}

// UserStatsKey addresses the visit counter for (user, restaurant).
func UserStatsKey(user, restaurant domain.ID) domain.Key {
	return deriveKey(tagUserStats, user, restaurant)
}

// DishStatsKey addresses the order counter for (user, dish).
func DishStatsKey(user, dish domain.ID) domain.Key {
	return deriveKey(tagDishStats, user, dish)
}

// ReviewKey addresses the single-use review for (user, restaurant).
func ReviewKey(user, restaurant domain.ID) domain.Key {
	return deriveKey(tagReview, user, restaurant)
}
