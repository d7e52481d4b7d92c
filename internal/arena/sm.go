package arena

import (
	"time"

	"github.com/clawarena/orchestrator/internal/clock"
)

// Join applies the created->created player_join transition, or
// created->closed when the join fills the arena.
//
//	created | player_join(p) | p ∉ players ∧ ¬is_closed ∧ |players|<max ∧ now≤deadline | created
//
// It mutates a's Players in place and returns the scheduling side
// effects the caller (the arena actor) must apply.
func Join(a *Arena, player string, now time.Time) ([]Effect, error) {
	if a.IsClosed {
		return nil, validationErr("join", ErrArenaClosed)
	}
	if a.HasPlayer(player) {
		return nil, validationErr("join", ErrAlreadyJoined)
	}
	if len(a.Players) >= a.Config.MaxPlayers {
		return nil, validationErr("join", ErrArenaFull)
	}
	if a.Config.RegistrationDeadline != nil && now.After(*a.Config.RegistrationDeadline) {
		return nil, validationErr("join", ErrDeadlinePassed)
	}

	a.Players = append(a.Players, player)

	var effects []Effect
	if len(a.Players) == a.Config.MaxPlayers {
		a.IsClosed = true
		closed := now
		a.Timing.ClosedAt = &closed
		effects = append(effects,
			CancelTimer{Kind: clock.KindIdleReap},
			ScheduleTimer{Kind: clock.KindGameStartCountdown, FiresAt: now.Add(CountdownDuration)},
		)
	} else if len(a.Players) <= 1 {
		effects = append(effects, ScheduleTimer{Kind: clock.KindIdleReap, FiresAt: now.Add(IdleReapDuration)})
	}
	return effects, nil
}

// IdleReapFired applies the idle_reap-fires transitions.
func IdleReapFired(a *Arena, now time.Time) ([]Effect, error) {
	if a.IsClosed {
		// Already progressed past created (e.g. filled and closed
		// before the reap fired); nothing to do. Idempotent no-op.
		return nil, nil
	}
	switch n := len(a.Players); {
	case n == 0:
		cancelArena(a, now)
		return nil, nil
	case n == 1:
		cancelArena(a, now)
		return []Effect{EmitRefund{Player: a.Players[0]}}, nil
	default:
		return closeArena(a, now)
	}
}

// DeadlineFired applies the registration_deadline-fires transitions.
func DeadlineFired(a *Arena, now time.Time) ([]Effect, error) {
	if a.IsClosed {
		return nil, nil
	}
	if len(a.Players) < 2 {
		cancelArena(a, now)
		var effects []Effect
		if len(a.Players) == 1 {
			effects = append(effects, EmitRefund{Player: a.Players[0]})
		}
		return effects, nil
	}
	return closeArena(a, now)
}

func cancelArena(a *Arena, now time.Time) {
	a.IsClosed = true
	a.GameStatus = StatusCancelled
	closed := now
	a.Timing.ClosedAt = &closed
}

// closeArena short-circuits created->closed and immediately schedules
// the game-start countdown with no wait, whether closing happened via
// idle_reap firing on a full arena or via the registration deadline.
func closeArena(a *Arena, now time.Time) ([]Effect, error) {
	a.IsClosed = true
	closed := now
	a.Timing.ClosedAt = &closed
	return []Effect{
		CancelTimer{Kind: clock.KindIdleReap},
		ScheduleTimer{Kind: clock.KindGameStartCountdown, FiresAt: now},
	}, nil
}

// CountdownFired applies closed->learning.
func CountdownFired(a *Arena, now time.Time) ([]Effect, error) {
	if !a.IsClosed || a.GameStatus == StatusCancelled {
		return nil, validationErr("countdown_fired", ErrNotInClosedPhase)
	}
	a.GameStatus = StatusLearning
	started := now
	a.Timing.LearningStartedAt = &started
	return []Effect{
		StartGame{},
		ScheduleTimer{Kind: clock.KindLearningEnd, FiresAt: now.Add(LearningDuration)},
	}, nil
}

// LearningEndFired applies learning->active.
func LearningEndFired(a *Arena, now time.Time) ([]Effect, error) {
	if a.GameStatus != StatusLearning {
		return nil, validationErr("learning_end_fired", ErrNotInLearningPhase)
	}
	a.GameStatus = StatusActive
	started := now
	a.Timing.ActiveStartedAt = &started
	return nil, nil
}

// FinishGame applies active->finished once the game engine reports the
// final round resolved (round_deadline fired at max round, or all moves
// in at max round).
func FinishGame(a *Arena, now time.Time) ([]Effect, error) {
	if a.GameStatus != StatusActive {
		return nil, validationErr("finish_game", ErrNotInActivePhase)
	}
	a.GameStatus = StatusFinished
	finished := now
	a.Timing.FinishedAt = &finished
	return nil, nil
}

// ProcessWinners applies finished->finished (is_finalized set), once
// payouts have been computed and a signature obtained by the caller.
// The arena's Winners/Payouts/GameID/FinalizeSignature/UsedNonce fields
// must already be populated by the caller before invoking this — it only
// enforces the guard and flips is_finalized, keeping payout/signing logic
// (which needs external collaborators) out of the pure state machine.
func ProcessWinners(a *Arena, now time.Time) error {
	if a.GameStatus != StatusFinished {
		return validationErr("process_winners", ErrNotFinished)
	}
	if a.IsFinalized {
		return validationErr("process_winners", ErrAlreadyFinalized)
	}
	a.IsFinalized = true
	finalized := now
	a.Timing.FinalizedAt = &finalized
	return nil
}
