// Package agent implements the autonomous host agent: a cron-driven
// cycle that reads demand signals, picks a tier by weighted selection,
// samples parameters, and decides whether to create a new arena.
package agent

import (
	"context"
	"math/big"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/clawarena/orchestrator/internal/arena"
	"github.com/clawarena/orchestrator/internal/clock"
	"github.com/clawarena/orchestrator/internal/store"
)

// DefaultCreationInterval is the cycle's default creation interval.
const DefaultCreationInterval = 30 * time.Minute

// gameTypes is the pool the agent draws from when it has no stronger
// signal for which mini-game a newly created arena should host.
var gameTypes = []arena.GameType{
	arena.GameClaw, arena.GamePrediction, arena.GameSpeed, arena.GameBlackjack,
}

// CreateFunc inserts a freshly-assembled arena into the system — in
// production this wraps store.CreateArena plus whatever announcement
// the external interface layer wants to fan out; tests can substitute a
// func that just records the call.
type CreateFunc func(ctx context.Context, a *arena.Arena) error

// Agent runs the autonomous host cycle.
type Agent struct {
	store          store.Store
	create         CreateFunc
	clockSrc       clock.Clock
	treasuryAddr   string
	log            *zap.Logger
	fillStats      *FillStats
	rng            *rand.Rand
	cron           *cron.Cron
	retry          clock.RetryConfig
}

// New builds an Agent. treasuryAddress is stamped onto every arena
// this agent creates.
func New(st store.Store, create CreateFunc, clockSrc clock.Clock, treasuryAddress string, log *zap.Logger) *Agent {
	return &Agent{
		store:        st,
		create:       create,
		clockSrc:     clockSrc,
		treasuryAddr: treasuryAddress,
		log:          log,
		fillStats:    NewFillStats(),
		rng:          rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0xa11e57)),
		retry:        clock.DefaultRetryConfig,
	}
}

// Start schedules the recurring cycle via robfig/cron, then blocks
// until ctx is cancelled, stops the cron scheduler, and returns nil.
// It returns an error only if the schedule cannot be registered.
func (a *Agent) Start(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultCreationInterval
	}
	a.cron = cron.New(cron.WithSeconds())
	spec := everyDuration(interval)
	if _, err := a.cron.AddFunc(spec, func() { a.RunCycle(ctx) }); err != nil {
		return err
	}
	a.cron.Start()
	<-ctx.Done()
	stopCtx := a.cron.Stop()
	<-stopCtx.Done()
	return nil
}

// everyDuration renders a cron.WithSeconds spec equivalent to "every d",
// since robfig/cron has no native interval syntax.
func everyDuration(d time.Duration) string {
	return "@every " + d.String()
}

// TriggerIfStarved lets the orchestrator call the cycle immediately when
// active_count drops below the minimum, rather than waiting for the
// next scheduled cron tick.
func (a *Agent) TriggerIfStarved(ctx context.Context) {
	count, err := a.store.ActiveCount(ctx)
	if err != nil {
		a.log.Error("agent: active count read failed", zap.Error(err))
		return
	}
	if count < minActive {
		a.RunCycle(ctx)
	}
}

// RunCycle performs one full creation-decision cycle.
func (a *Agent) RunCycle(ctx context.Context) {
	now := a.clockSrc.Now()
	tc := ClassifyTime(now)

	activeCount, err := a.store.ActiveCount(ctx)
	if err != nil {
		a.log.Error("agent: cycle aborted, active count read failed", zap.Error(err))
		return
	}

	tier, ok := ChooseTier(tc, a.fillStats, a.rng)
	a.fillStats.TickCycle()
	if !ok {
		a.log.Info("agent: no eligible tier this cycle", zap.Bool("peak", tc.Peak), zap.Bool("weekend", tc.Weekend))
		return
	}
	policy, _ := PolicyFor(tier)

	decision := Decide(tc, activeCount, tier, a.fillStats.FillRate(tier))
	a.log.Info("agent: cycle decision",
		zap.String("tier", string(tier)),
		zap.Bool("create", decision.Create),
		zap.String("reason", decision.Reason),
		zap.Int("active_count", activeCount),
	)
	if !decision.Create {
		return
	}

	entryFee, maxPlayers := SampleParams(policy, a.rng)
	a.createWithRetry(ctx, tier, policy, entryFee, maxPlayers, decision.Reason, now)
}

// createWithRetry retries a failed creation command up to 3 times at
// 60s spacing, then gives up and logs for operator escalation.
func (a *Agent) createWithRetry(ctx context.Context, tier Tier, policy TierPolicy, entryFee *big.Int, maxPlayers int, reason string, now time.Time) {
	cfg := arena.Config{
		Name:           FlairName(tier, a.rng),
		EntryFee:       entryFee,
		MaxPlayers:     maxPlayers,
		ProtocolFeeBps: policy.ProtocolFeeBps,
		TreasuryAddress: a.treasuryAddr,
		GameType:       gameTypes[a.rng.IntN(len(gameTypes))],
		Network:        arena.NetworkTestnet,
		CreatedBy:      arena.CreatedByAgent,
		CreationReason: reason,
	}
	newArena := &arena.Arena{
		Address:    uuid.NewString(),
		Config:     cfg,
		GameStatus: arena.StatusWaiting,
		Timing:     arena.Timing{CreatedAt: now},
	}

	retryCfg := clock.RetryConfig{Base: 60 * time.Second, Cap: 60 * time.Second, MaxAttempts: 4}
	err := clock.Retry(ctx, retryCfg, func(attempt int) error {
		return a.create(ctx, newArena)
	})
	if err != nil {
		a.fillStats.RecordFill(tier, false)
		a.log.Error("agent: arena creation failed after retries, escalating",
			zap.String("tier", string(tier)), zap.Error(err))
		return
	}
	a.log.Info("agent: arena created",
		zap.String("address", newArena.Address),
		zap.String("tier", string(tier)),
		zap.String("name", cfg.Name),
	)
}

// NoteFillOutcome feeds back whether a previously created arena of the
// given tier filled before its deadline, closing the loop the agent's
// fill-rate weighting depends on.
func (a *Agent) NoteFillOutcome(tier Tier, filled bool) {
	a.fillStats.RecordFill(tier, filled)
}

// NextTournamentAt is the post-finalize countdown, exposed for the
// external interface layer to publish.
func (a *Agent) NextTournamentAt(now time.Time) time.Time {
	tc := ClassifyTime(now)
	return NextTournamentAt(now, tc, a.rng)
}
