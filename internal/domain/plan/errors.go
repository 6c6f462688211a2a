package plan

import "errors"

// Sentinel errors for plan operations. Callers classify failures with
// errors.Is; wrapped variants carry detail via fmt.Errorf("%w: ...").
var (
	// ErrValidation covers malformed or out-of-policy input.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a plan or item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition is returned for a lifecycle move the state
	// machine does not permit.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrPlanLocked is returned when an item mutation is attempted on a
	// plan whose state no longer permits it.
	ErrPlanLocked = errors.New("plan is locked")

	// ErrConcurrentModification is returned when an optimistic version
	// check fails; the caller should re-read and retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	// ErrEpisodeLinkConflict is returned when an item is already linked
	// to a different clinical episode.
	ErrEpisodeLinkConflict = errors.New("item already linked to another episode")

	// ErrStoreUnavailable wraps infrastructure failures from the
	// persistence layer.
	ErrStoreUnavailable = errors.New("store unavailable")
)
