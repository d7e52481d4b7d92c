// Package actor wires the pure arena state machine (internal/arena),
// the game engine (internal/game), payout arithmetic
// (internal/payout), and the finalize signer (internal/signer) to the
// external collaborators (internal/store, internal/chainadapter)
// through a per-arena mailbox: one buffered channel plus one
// processing goroutine per arena, so events for a single arena are
// always handled in strict arrival order, while many arenas run
// concurrently across worker threads.
package actor

import (
	"context"
	"time"

	"github.com/sasha-s/go-deadlock"
	"go.uber.org/zap"

	"github.com/clawarena/orchestrator/internal/arena"
	"github.com/clawarena/orchestrator/internal/clock"
	"github.com/clawarena/orchestrator/internal/game"
	"github.com/clawarena/orchestrator/internal/signer"
	"github.com/clawarena/orchestrator/internal/store"
)

// mailboxCapacity bounds the per-arena event queue. Work within an
// actor stays CPU-light and bounded, so a deep backlog signals a
// stuck actor rather than needing an unbounded queue.
const mailboxCapacity = 256

// joinEvent, timerEvent, submitMoveEvent, and finalizeEvent are the
// mailbox's event union. Timer callbacks and external commands share
// the same mailbox; when a timer fires it enqueues an event rather
// than mutating directly.
type joinEvent struct {
	player string
	now    time.Time
	reply  chan error
}

type timerEvent struct {
	kind clock.Kind
}

type submitMoveEvent struct {
	player string
	move   any
	now    time.Time
	reply  chan submitMoveReply
}

type submitMoveReply struct {
	result game.MoveResult
	err    error
}

type finalizeEvent struct {
	ctx   context.Context
	req   FinalizeParams
	reply chan finalizeReply
}

type finalizeReply struct {
	result signer.FinalizeResult
	err    error
}

// FinalizeParams carries the external inputs a finalize request needs
// beyond what's already in the persisted arena document.
type FinalizeParams struct {
	ChainID    uint64
	SigningSvc signer.SigningService
}

// Actor owns one arena's mailbox and processing loop.
type Actor struct {
	address string
	st      store.Store
	sched   *clock.Scheduler
	clockSrc clock.Clock
	log     *zap.Logger

	mailbox chan any

	// mu guards the fields below, which external readers (a status API,
	// the autonomous agent's fill-rate feedback) may inspect without
	// going through the mailbox.
	mu      deadlock.Mutex
	version uint64
	frozen  bool
	game    *game.Game
}

// New constructs an Actor for an already-persisted arena document.
func New(address string, st store.Store, sched *clock.Scheduler, clockSrc clock.Clock, log *zap.Logger) *Actor {
	return &Actor{
		address:  address,
		st:       st,
		sched:    sched,
		clockSrc: clockSrc,
		log:      log.Named("arena").With(zap.String("address", address)),
		mailbox:  make(chan any, mailboxCapacity),
	}
}

// Run handles mailbox events one at a time until ctx is cancelled,
// then returns ctx.Err(); events still queued at that moment are not
// handled.
func (a *Actor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-a.mailbox:
			a.handle(ctx, ev)
		}
	}
}

func (a *Actor) handle(ctx context.Context, ev any) {
	a.mu.Lock()
	frozen := a.frozen
	a.mu.Unlock()
	if frozen {
		a.replyFrozen(ev)
		return
	}

	switch e := ev.(type) {
	case joinEvent:
		e.reply <- a.handleJoin(ctx, e.player, e.now)
	case timerEvent:
		a.handleTimer(ctx, e.kind)
	case submitMoveEvent:
		res, err := a.handleSubmitMove(ctx, e.player, e.move, e.now)
		e.reply <- submitMoveReply{result: res, err: err}
	case finalizeEvent:
		res, err := a.handleFinalize(e.ctx, e.req)
		e.reply <- finalizeReply{result: res, err: err}
	}
}

func (a *Actor) replyFrozen(ev any) {
	switch e := ev.(type) {
	case joinEvent:
		e.reply <- arena.ErrFrozen
	case submitMoveEvent:
		e.reply <- submitMoveReply{err: arena.ErrFrozen}
	case finalizeEvent:
		e.reply <- finalizeReply{err: arena.ErrFrozen}
	}
}

// freeze stops the actor from accepting new mailbox events beyond
// this drain-and-diagnose step, and logs at Error, on an invariant
// violation.
func (a *Actor) freeze(reason string, err error) {
	a.mu.Lock()
	a.frozen = true
	a.mu.Unlock()
	a.log.Error("arena actor frozen on invariant violation", zap.String("reason", reason), zap.Error(err))
}

// Join enqueues a player-join command and blocks for its result.
func (a *Actor) Join(ctx context.Context, player string, now time.Time) error {
	reply := make(chan error, 1)
	select {
	case a.mailbox <- joinEvent{player: player, now: now, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// SubmitMove enqueues a move submission and blocks for its result.
func (a *Actor) SubmitMove(ctx context.Context, player string, move any, now time.Time) (game.MoveResult, error) {
	reply := make(chan submitMoveReply, 1)
	select {
	case a.mailbox <- submitMoveEvent{player: player, move: move, now: now, reply: reply}:
	case <-ctx.Done():
		return game.MoveResult{}, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.result, r.err
	case <-ctx.Done():
		return game.MoveResult{}, ctx.Err()
	}
}

// Finalize enqueues a finalize request and blocks for its result.
func (a *Actor) Finalize(ctx context.Context, params FinalizeParams) (signer.FinalizeResult, error) {
	reply := make(chan finalizeReply, 1)
	select {
	case a.mailbox <- finalizeEvent{ctx: ctx, req: params, reply: reply}:
	case <-ctx.Done():
		return signer.FinalizeResult{}, ctx.Err()
	}
	select {
	case r := <-reply:
		return r.result, r.err
	case <-ctx.Done():
		return signer.FinalizeResult{}, ctx.Err()
	}
}

// enqueueTimer is the scheduler callback: it never mutates arena
// state directly, only enqueues an event.
func (a *Actor) enqueueTimer(kind clock.Kind) clock.Callback {
	return func(ctx context.Context) {
		select {
		case a.mailbox <- timerEvent{kind: kind}:
		case <-ctx.Done():
		}
	}
}

func (a *Actor) applyEffects(effects []arena.Effect) {
	for _, eff := range effects {
		switch e := eff.(type) {
		case arena.ScheduleTimer:
			a.sched.Schedule(clock.Key{ArenaID: a.address, Kind: e.Kind}, e.FiresAt, a.enqueueTimer(e.Kind))
		case arena.CancelTimer:
			a.sched.Cancel(clock.Key{ArenaID: a.address, Kind: e.Kind})
		case arena.StartGame:
			// handled by the caller with access to the just-mutated
			// Arena snapshot; see handleCountdownFired.
		case arena.EmitRefund:
			// the refund intent is appended to the Arena document by
			// the caller's mutator, alongside the state transition that
			// produced it, so it lands in the same CAS write.
		}
	}
}

func gameTypeFrom(g arena.GameType) game.Type { return game.Type(string(g)) }
