package ledger

import (
	"encoding/binary"
	"fmt"

	"restaurant_booking/internal/domain"
)

// Fixed record layouts, little-endian integers. Sizes are part of the wire
// contract and never change once records exist.
const (
	UserStatsSize = 32 + 32 + 8                                // 72
	DishStatsSize = 32 + 32 + 8 + 4 + domain.DishNameCap       // 126
	ReviewSize    = 32 + 32 + 1 + 4 + domain.ReviewTextCap + 1 // 270
)

func encodeUserStats(r domain.UserStats) []byte {
	b := make([]byte, UserStatsSize)
	copy(b[0:32], r.User[:])
	copy(b[32:64], r.Restaurant[:])
	binary.LittleEndian.PutUint64(b[64:72], r.VisitCount)
	return b
}

func decodeUserStats(b []byte) (domain.UserStats, error) {
	var r domain.UserStats
	if len(b) != UserStatsSize {
		return r, fmt.Errorf("user stats: want %d bytes, got %d", UserStatsSize, len(b))
	}
	copy(r.User[:], b[0:32])
	copy(r.Restaurant[:], b[32:64])
	r.VisitCount = binary.LittleEndian.Uint64(b[64:72])
	return r, nil
}

func encodeDishStats(r domain.DishStats) []byte {
	b := make([]byte, DishStatsSize)
	copy(b[0:32], r.User[:])
	copy(b[32:64], r.Dish[:])
	binary.LittleEndian.PutUint64(b[64:72], r.Count)
	binary.LittleEndian.PutUint32(b[72:76], r.NameLen)
	copy(b[76:76+domain.DishNameCap], r.NameData[:])
	return b
}

func decodeDishStats(b []byte) (domain.DishStats, error) {
	var r domain.DishStats
	if len(b) != DishStatsSize {
		return r, fmt.Errorf("dish stats: want %d bytes, got %d", DishStatsSize, len(b))
	}
	copy(r.User[:], b[0:32])
	copy(r.Dish[:], b[32:64])
	r.Count = binary.LittleEndian.Uint64(b[64:72])
	r.NameLen = binary.LittleEndian.Uint32(b[72:76])
	copy(r.NameData[:], b[76:76+domain.DishNameCap])
	return r, nil
}

func encodeReview(r domain.Review) []byte {
	b := make([]byte, ReviewSize)
	copy(b[0:32], r.User[:])
	copy(b[32:64], r.Restaurant[:])
	b[64] = r.Rating
	binary.LittleEndian.PutUint32(b[65:69], r.ReviewLen)
	copy(b[69:69+domain.ReviewTextCap], r.ReviewData[:])
	b[69+domain.ReviewTextCap] = r.ConfidenceLevel
	return b
}

func decodeReview(b []byte) (domain.Review, error) {
	var r domain.Review
	if len(b) != ReviewSize {
		return r, fmt.Errorf("review: want %d bytes, got %d", ReviewSize, len(b))
	}
	copy(r.User[:], b[0:32])
	copy(r.Restaurant[:], b[32:64])
	r.Rating = b[64]
	r.ReviewLen = binary.LittleEndian.Uint32(b[65:69])
	copy(r.ReviewData[:], b[69:69+domain.ReviewTextCap])
	r.ConfidenceLevel = b[69+domain.ReviewTextCap]
	return r, nil
}
