package arena

import "github.com/pkg/errors"

// Sentinel validation errors. Guards are strict: any violation is
// rejected with a structured error, never silently normalized.
var (
	ErrAlreadyJoined      = errors.New("arena: player already joined")
	ErrArenaClosed        = errors.New("arena: arena is closed")
	ErrArenaFull          = errors.New("arena: arena is full")
	ErrDeadlinePassed     = errors.New("arena: registration deadline passed")
	ErrNotInCreatedPhase  = errors.New("arena: not in created phase")
	ErrNotInClosedPhase   = errors.New("arena: not in closed phase")
	ErrNotInLearningPhase = errors.New("arena: not in learning phase")
	ErrNotInActivePhase   = errors.New("arena: not in active phase")
	ErrNotFinished        = errors.New("arena: game not finished")

	// ErrAlreadyFinalized is returned (wrapped) by ProcessWinners. The
	// signer package declares its own, separate ErrAlreadyFinalized for
	// its finalize preconditions.
	ErrAlreadyFinalized = errors.New("arena: already finalized")

	// ErrFrozen marks an arena whose actor hit an invariant violation
	// and will accept no further mutation.
	ErrFrozen = errors.New("arena: frozen after invariant violation")

	ErrDeadlineExceeded = errors.New("arena: deadline exceeded")
)

// ValidationError wraps a sentinel with the context needed to act on
// it without re-inspecting error strings or guessing shapes downstream.
type ValidationError struct {
	Op   string
	Err  error
}

func (e *ValidationError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *ValidationError) Unwrap() error { return e.Err }

func validationErr(op string, err error) error {
	return &ValidationError{Op: op, Err: err}
}
