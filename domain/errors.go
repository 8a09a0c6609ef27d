package domain

import "errors"

// Failure taxonomy for the recommendation core. Scoring itself never fails;
// everything here originates at the request boundary or the persistence layer.
var (
	// ErrValidation marks malformed input (unknown mood, missing genre).
	ErrValidation = errors.New("validation error")

	// ErrConflict means the conditional write lost against concurrent writers
	// for every attempt. The feedback was not recorded and may be re-submitted.
	ErrConflict = errors.New("policy store write conflict")

	// ErrUnavailable means the persistence backend was unreachable. Ranking
	// degrades to content-only; feedback submission reports failure.
	ErrUnavailable = errors.New("policy store unavailable")

	// ErrInvariant marks a corrupted persisted policy record. Should never
	// occur; the store falls back to defaults instead of propagating it.
	ErrInvariant = errors.New("policy store invariant violation")
)
