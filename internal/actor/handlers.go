package actor

import (
	"context"
	"math/big"
	"time"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/clawarena/orchestrator/internal/arena"
	"github.com/clawarena/orchestrator/internal/clock"
	"github.com/clawarena/orchestrator/internal/game"
	"github.com/clawarena/orchestrator/internal/payout"
	"github.com/clawarena/orchestrator/internal/signer"
	"github.com/clawarena/orchestrator/internal/store"
)

// transact loads the current document, applies a pure transition, and
// writes it back under CAS. Store I/O is retried with bounded backoff
// for transient infrastructure errors; a conflict or a validation
// failure from fn is returned immediately without retry, since
// per-arena leadership means a conflict here signals a bug, not a
// race to recover from.
func (a *Actor) transact(ctx context.Context, fn func(a *arena.Arena, now time.Time) ([]arena.Effect, error)) ([]arena.Effect, *arena.Arena, error) {
	now := a.clockSrc.Now()

	var current *arena.Arena
	if err := clock.Retry(ctx, clock.DefaultRetryConfig, func(attempt int) error {
		var err error
		current, err = a.st.LoadArena(ctx, a.address)
		return err
	}); err != nil {
		return nil, nil, err
	}

	effects, err := fn(current, now)
	if err != nil {
		return nil, nil, err
	}

	// A cancellation that refunds a sole joiner must land in the same CAS
	// write as the transition that produced it, not a separate update.
	for _, eff := range effects {
		if r, ok := eff.(arena.EmitRefund); ok {
			current.RefundIntents = append(current.RefundIntents, arena.RefundIntent{
				Player:    r.Player,
				Amount:    new(big.Int).Set(current.Config.EntryFee),
				Reason:    "solo_joiner_cancellation",
				CreatedAt: now,
			})
		}
	}

	var newVersion uint64
	if err := clock.Retry(ctx, clock.DefaultRetryConfig, func(attempt int) error {
		v, err := a.st.UpdateArena(ctx, a.address, current.Version, func(working *arena.Arena) error {
			*working = *current
			return nil
		})
		if err != nil {
			return err
		}
		newVersion = v
		return nil
	}); err != nil {
		return nil, nil, err
	}

	current.Version = newVersion
	a.mu.Lock()
	a.version = newVersion
	a.mu.Unlock()
	return effects, current, nil
}

func (a *Actor) handleJoin(ctx context.Context, player string, now time.Time) error {
	effects, _, err := a.transact(ctx, func(snap *arena.Arena, now time.Time) ([]arena.Effect, error) {
		return arena.Join(snap, player, now)
	})
	if err != nil {
		return err
	}
	a.applyEffects(effects)
	return nil
}

func (a *Actor) handleTimer(ctx context.Context, kind clock.Kind) {
	switch kind {
	case clock.KindIdleReap:
		a.handleTransition(ctx, kind, arena.IdleReapFired)
	case clock.KindRoundDeadline:
		a.handleRoundDeadline(ctx)
	case clock.KindGameStartCountdown:
		a.handleCountdownFired(ctx)
	case clock.KindLearningEnd:
		a.handleLearningEndFired(ctx)
	}
}

// handleTransition covers the timer-fired transitions that need no
// extra wiring beyond "run the pure function, apply its effects".
func (a *Actor) handleTransition(ctx context.Context, kind clock.Kind, fn func(a *arena.Arena, now time.Time) ([]arena.Effect, error)) {
	effects, _, err := a.transact(ctx, fn)
	if err != nil {
		a.log.Warn("timer transition failed", zap.String("kind", string(kind)), zap.Error(err))
		return
	}
	a.applyEffects(effects)
}

// handleCountdownFired runs closed->learning and, because StartGame needs
// the post-transition player list, constructs the Game child aggregate
// here rather than inside applyEffects. The first round does not start
// yet: that waits for the learning window to elapse.
func (a *Actor) handleCountdownFired(ctx context.Context) {
	effects, snap, err := a.transact(ctx, arena.CountdownFired)
	if err != nil {
		a.log.Warn("countdown transition failed", zap.Error(err))
		return
	}
	a.applyEffects(effects)

	seed := game.DeriveGameSeed(snap.Address, snap.Timing.CreatedAt, gameTypeFrom(snap.Config.GameType))
	g := game.NewGame(snap.GameID, gameTypeFrom(snap.Config.GameType), snap.Players, seed)

	a.mu.Lock()
	a.game = g
	a.mu.Unlock()
}

// handleLearningEndFired runs learning->active once the 60-second
// learning window has elapsed, then starts the game's first round now
// that moves are accepted.
func (a *Actor) handleLearningEndFired(ctx context.Context) {
	effects, _, err := a.transact(ctx, arena.LearningEndFired)
	if err != nil {
		a.log.Warn("learning_end transition failed", zap.Error(err))
		return
	}
	a.applyEffects(effects)

	a.mu.Lock()
	g := a.game
	a.mu.Unlock()
	if g == nil {
		a.freeze("learning_end_fired", errors.New("actor: no game to start"))
		return
	}

	now := a.clockSrc.Now()
	if err := game.StartRound(g, now, arena.MoveTimeoutDefault); err != nil {
		a.freeze("start_round", err)
		return
	}
	a.sched.Schedule(clock.Key{ArenaID: a.address, Kind: clock.KindRoundDeadline}, g.RoundDeadline, a.enqueueTimer(clock.KindRoundDeadline))
}

func (a *Actor) handleSubmitMove(ctx context.Context, player string, move any, now time.Time) (game.MoveResult, error) {
	a.mu.Lock()
	g := a.game
	a.mu.Unlock()
	if g == nil {
		return game.MoveResult{}, game.ErrGameNotActive
	}

	result, err := game.SubmitMove(g, player, move, now)
	if err != nil {
		return game.MoveResult{}, err
	}
	if result.RoundResolved {
		a.advanceRound(ctx, g)
	}
	return result, nil
}

// handleRoundDeadline fills in auto-moves for anyone who hasn't acted
// and then advances the round.
func (a *Actor) handleRoundDeadline(ctx context.Context) {
	a.mu.Lock()
	g := a.game
	a.mu.Unlock()
	if g == nil {
		return
	}
	now := a.clockSrc.Now()
	if err := game.ApplyAbsenteeAutoMoves(g, now); err != nil {
		a.freeze("apply_absentee_auto_moves", err)
		return
	}
	a.advanceRound(ctx, g)
}

// advanceRound resolves the just-finished round and either starts the
// next one or finalizes the game into active->finished.
func (a *Actor) advanceRound(ctx context.Context, g *game.Game) {
	finished, err := game.FinishRound(g)
	if err != nil {
		a.freeze("finish_round", err)
		return
	}
	if !finished {
		now := a.clockSrc.Now()
		if err := game.StartRound(g, now, arena.MoveTimeoutDefault); err != nil {
			a.freeze("start_round", err)
			return
		}
		a.sched.Schedule(clock.Key{ArenaID: a.address, Kind: clock.KindRoundDeadline}, g.RoundDeadline, a.enqueueTimer(clock.KindRoundDeadline))
		return
	}

	a.sched.Cancel(clock.Key{ArenaID: a.address, Kind: clock.KindRoundDeadline})

	_, snap, err := a.transact(ctx, func(snap *arena.Arena, now time.Time) ([]arena.Effect, error) {
		effects, err := arena.FinishGame(snap, now)
		if err != nil {
			return nil, err
		}
		scores := make(map[string]int, len(g.Players))
		for p, ps := range g.Players {
			scores[p] = ps.Score
		}
		snap.Results = &arena.GameResults{Scores: scores}
		return effects, nil
	})
	if err != nil {
		a.log.Warn("finish_game transition failed", zap.Error(err))
		return
	}
	a.log.Info("game finished", zap.Strings("winners", g.Winners), zap.String("game_id", snap.GameID))
}

// handleFinalize computes the payout split, requests a signature, and
// flips the arena into finalized once the signer succeeds.
func (a *Actor) handleFinalize(ctx context.Context, params FinalizeParams) (signer.FinalizeResult, error) {
	a.mu.Lock()
	g := a.game
	a.mu.Unlock()

	current, err := a.st.LoadArena(ctx, a.address)
	if err != nil {
		return signer.FinalizeResult{}, err
	}
	if g == nil || len(g.Winners) == 0 {
		return signer.FinalizeResult{}, game.ErrGameNotActive
	}

	payoutScheme := payout.Scheme(current.Config.PayoutScheme)
	amounts, err := payout.Split(current.Config.EntryFee, len(current.Players), current.Config.ProtocolFeeBps, g.Winners, payoutScheme)
	if err != nil {
		return signer.FinalizeResult{}, err
	}

	arenaAddr, err := signer.ParseAddress(current.Address)
	if err != nil {
		return signer.FinalizeResult{}, err
	}
	players := make([]signer.Address, 0, len(current.Players))
	for _, p := range current.Players {
		addr, err := signer.ParseAddress(p)
		if err != nil {
			return signer.FinalizeResult{}, err
		}
		players = append(players, addr)
	}
	winners := make([]signer.Address, 0, len(g.Winners))
	for _, w := range g.Winners {
		addr, err := signer.ParseAddress(w)
		if err != nil {
			return signer.FinalizeResult{}, err
		}
		winners = append(winners, addr)
	}

	req := signer.FinalizeRequest{
		ChainID:            params.ChainID,
		ArenaAddress:       arenaAddr,
		Players:            players,
		Winners:            winners,
		Amounts:            amounts,
		ProposedNonce:      current.UsedNonce + 1,
		LastUsedNonce:      current.UsedNonce,
		Pool:               current.Pool(),
		ProtocolFeeBps:     current.Config.ProtocolFeeBps,
		IsClosed:           current.IsClosed,
		IsFinalized:        current.IsFinalized,
		GameStatusFinished: current.GameStatus == arena.StatusFinished,
	}

	result, err := signer.Finalize(ctx, params.SigningSvc, req)
	if err != nil {
		return signer.FinalizeResult{}, err
	}

	_, _, err = a.transact(ctx, func(snap *arena.Arena, now time.Time) ([]arena.Effect, error) {
		snap.Winners = g.Winners
		snap.Payouts = amounts
		snap.UsedNonce = result.Nonce
		snap.FinalizeSignature = result.Signature[:]
		if err := arena.ProcessWinners(snap, now); err != nil {
			return nil, err
		}
		return nil, nil
	})
	if err != nil {
		return signer.FinalizeResult{}, err
	}

	for i, w := range g.Winners {
		record := store.PayoutRecord{ArenaAddress: a.address, Winner: w, Amount: amounts[i].String()}
		if err := clock.Retry(ctx, clock.DefaultRetryConfig, func(attempt int) error {
			return a.st.AppendPayoutRecord(ctx, record)
		}); err != nil {
			a.log.Error("append payout record failed", zap.String("winner", w), zap.Error(err))
		}

		delta := store.LeaderboardDelta{Player: w, DeltaWins: 1, DeltaPayout: amounts[i].String(), DeltaGames: 1}
		if err := clock.Retry(ctx, clock.DefaultRetryConfig, func(attempt int) error {
			return a.st.UpdateLeaderboard(ctx, delta)
		}); err != nil {
			a.log.Error("update leaderboard failed", zap.String("winner", w), zap.Error(err))
		}
	}

	return result, nil
}
