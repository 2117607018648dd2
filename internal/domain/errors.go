package domain

import "errors"

var (
	// ErrNotFound: a record that must already exist is absent.
	ErrNotFound = errors.New("record not found")

	// ErrAlreadyInitialized: create on an occupied key.
	ErrAlreadyInitialized = errors.New("record already initialized")

	// ErrInvalidRating: rating outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")

	// ErrInvalidConfidenceLevel: confidence level outside 1..10.
	ErrInvalidConfidenceLevel = errors.New("confidence level must be between 1 and 10")

	// ErrReviewAlreadyExists: the write-once review record is already set.
	ErrReviewAlreadyExists = errors.New("you have already submitted a review for this restaurant")

	// ErrUnboundDishRef: bound mode only — a dish update references a record
	// the caller does not own or a dish not listed in the booking.
	ErrUnboundDishRef = errors.New("dish update not bound to booking")
)
