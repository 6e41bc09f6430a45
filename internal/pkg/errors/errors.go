package errors

import "errors"

// Common application errors shared across services and handlers.
var (
	// ErrNotFound is returned when a record or resource does not exist.
	ErrNotFound = errors.New("record not found")

	// ErrUnauthorized is returned for authentication failures (bad token, no session).
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the user lacks the rights for an action.
	ErrForbidden = errors.New("forbidden")

	// ErrValidation is returned for invalid input data.
	ErrValidation = errors.New("validation failed")

	// ErrExpiredToken is returned when a token has expired.
	ErrExpiredToken = errors.New("token is expired")

	// ErrConflict is returned for state conflicts (for example a duplicate enrollment).
	ErrConflict = errors.New("resource state conflict")
)

// Errors specific to the course and quiz lifecycle.
var (
	// ErrNotEnrolled is returned when the user tries to access course material
	// without an active enrollment.
	ErrNotEnrolled = errors.New("user is not enrolled in the course")

	// ErrAttemptNotFound is returned when no active quiz attempt exists for the user.
	ErrAttemptNotFound = errors.New("no active quiz attempt")

	// ErrAttemptExpired is returned when the attempt countdown has reached zero.
	ErrAttemptExpired = errors.New("quiz attempt has expired")

	// ErrAlreadySubmitted is returned when the attempt result was already persisted.
	ErrAlreadySubmitted = errors.New("quiz attempt already submitted")

	// ErrIncompleteAttempt is returned when a quiz is submitted manually
	// with unanswered questions. Expiry is exempt: the timer auto-submits
	// whatever was answered.
	ErrIncompleteAttempt = errors.New("quiz attempt has unanswered questions")

	// ErrSubscriptionRequired is returned when the course is gated behind a paid plan.
	ErrSubscriptionRequired = errors.New("active subscription required")
)
