package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into coded domain errors.
//
// These represent factual states about stored rows, not validation failures:
// - ErrNotFound: entity does not exist in the store
// - ErrAlreadyUsed: a unique attribute (isbn, username, email, phone) is taken
// - ErrNoneAvailable: a counter-guarded resource is exhausted (no free copies)
// - ErrInvalidState: entity in the wrong state for the requested mutation
//
// For validation of caller input use pkg/domain-errors directly.
var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyUsed   = errors.New("already used")
	ErrNoneAvailable = errors.New("none available")
	ErrInvalidState  = errors.New("invalid state")
	ErrUnavailable   = errors.New("unavailable")
)
