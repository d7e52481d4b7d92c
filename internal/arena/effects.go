package arena

import (
	"time"

	"github.com/clawarena/orchestrator/internal/clock"
)

// Effect is a side effect the pure transition functions in sm.go ask
// the actor to perform. Keeping transitions pure — guard, mutate the
// returned Arena, describe effects — is what makes determinism
// checkable without a live scheduler.
type Effect interface{ isEffect() }

// ScheduleTimer asks the actor to (re)schedule a timer; this is
// idempotent and replaces any prior timer of the same kind.
type ScheduleTimer struct {
	Kind    clock.Kind
	FiresAt time.Time
}

// CancelTimer asks the actor to cancel a pending timer of the given kind,
// if any (e.g. a join that fills the arena cancels any pending idle_reap).
type CancelTimer struct {
	Kind clock.Kind
}

// StartGame asks the actor to create the Game child aggregate for
// the arena's configured GameType, on the learning transition.
type StartGame struct{}

// EmitRefund records a refund intent for the sole-joined-player
// cancellation path.
type EmitRefund struct {
	Player string
}

func (ScheduleTimer) isEffect() {}
func (CancelTimer) isEffect()   {}
func (StartGame) isEffect()     {}
func (EmitRefund) isEffect()    {}
