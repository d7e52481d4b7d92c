package actor

import (
	"context"
	"math/big"
	"testing"
	"time"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clawarena/orchestrator/internal/arena"
	"github.com/clawarena/orchestrator/internal/clock"
	"github.com/clawarena/orchestrator/internal/game"
	"github.com/clawarena/orchestrator/internal/signer"
	"github.com/clawarena/orchestrator/internal/store"
)

func newTestAddress(t *testing.T) string {
	t.Helper()
	key, err := gethcrypto.GenerateKey()
	require.NoError(t, err)
	var a signer.Address
	copy(a[:], gethcrypto.PubkeyToAddress(key.PublicKey).Bytes())
	return a.String()
}

// TestLifecycle_JoinThroughFinalize drives a two-player Claw arena from its
// first join through a signed finalize, exercising the actor's full
// mailbox-serialized path: join, close-on-fill, countdown, learning,
// round play, game finish, and payout signing.
func TestLifecycle_JoinThroughFinalize(t *testing.T) {
	st := store.NewMemStore()
	start := time.Date(2026, 1, 1, 15, 0, 0, 0, time.UTC)
	vc := clock.NewVirtualClock(start)
	sched := clock.NewScheduler(vc, zap.NewNop(), time.Second)
	log := zap.NewNop()

	arenaAddress := newTestAddress(t)
	p1 := newTestAddress(t)
	p2 := newTestAddress(t)

	newArena := &arena.Arena{
		Address: arenaAddress,
		Config: arena.Config{
			Name:           "Test Claw Arena",
			EntryFee:       big.NewInt(1000),
			MaxPlayers:     2,
			ProtocolFeeBps: 200,
			GameType:       arena.GameClaw,
			Network:        arena.NetworkTestnet,
			CreatedBy:      arena.CreatedByAdmin,
		},
		GameStatus: arena.StatusWaiting,
		Timing:     arena.Timing{CreatedAt: start},
	}
	require.NoError(t, st.CreateArena(context.Background(), newArena))

	act := New(arenaAddress, st, sched, vc, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go act.Run(ctx)

	require.NoError(t, act.Join(ctx, p1, vc.Now()))
	loaded, err := st.LoadArena(ctx, arenaAddress)
	require.NoError(t, err)
	require.False(t, loaded.IsClosed, "arena must stay open until it fills")

	require.NoError(t, act.Join(ctx, p2, vc.Now()))
	loaded, err = st.LoadArena(ctx, arenaAddress)
	require.NoError(t, err)
	require.True(t, loaded.IsClosed, "arena must close the instant it fills")
	require.True(t, sched.Pending(clock.Key{ArenaID: arenaAddress, Kind: clock.KindGameStartCountdown}))

	vc.Advance(arena.CountdownDuration)
	sched.RunDue(ctx)
	require.Eventually(t, func() bool {
		a, err := st.LoadArena(ctx, arenaAddress)
		return err == nil && a.GameStatus == arena.StatusLearning
	}, time.Second, time.Millisecond, "closed->learning must fire on countdown")
	require.True(t, sched.Pending(clock.Key{ArenaID: arenaAddress, Kind: clock.KindLearningEnd}))
	require.False(t, sched.Pending(clock.Key{ArenaID: arenaAddress, Kind: clock.KindRoundDeadline}),
		"the first round must not start before the learning window elapses")

	vc.Advance(arena.LearningDuration)
	sched.RunDue(ctx)
	require.Eventually(t, func() bool {
		a, err := st.LoadArena(ctx, arenaAddress)
		return err == nil && a.GameStatus == arena.StatusActive
	}, time.Second, time.Millisecond, "learning->active must fire once the learning window elapses")
	require.Eventually(t, func() bool {
		return sched.Pending(clock.Key{ArenaID: arenaAddress, Kind: clock.KindRoundDeadline})
	}, time.Second, time.Millisecond, "the first round must start once play is active")

	for i := 0; i < game.ClawAttemptsPerPlayer; i++ {
		res, err := act.SubmitMove(ctx, p1, game.ClawMove{X: 10, Y: 10}, vc.Now())
		require.NoError(t, err)
		require.False(t, res.RoundResolved, "claw's round stays open until both players exhaust every grab")
	}

	for i := 0; i < game.ClawAttemptsPerPlayer-1; i++ {
		res, err := act.SubmitMove(ctx, p2, game.ClawMove{X: 90, Y: 90}, vc.Now())
		require.NoError(t, err)
		require.False(t, res.RoundResolved)
	}
	resLast, err := act.SubmitMove(ctx, p2, game.ClawMove{X: 90, Y: 90}, vc.Now())
	require.NoError(t, err)
	require.True(t, resLast.RoundResolved, "the round resolves once every player has used all grabs")

	loaded, err = st.LoadArena(ctx, arenaAddress)
	require.NoError(t, err)
	require.Equal(t, arena.StatusFinished, loaded.GameStatus, "claw's single round finishes the game immediately")

	opKey, err := gethcrypto.GenerateKey()
	require.NoError(t, err)
	svc := signer.NewLocalKeySigner(opKey)

	result, err := act.Finalize(ctx, FinalizeParams{ChainID: 1, SigningSvc: svc})
	require.NoError(t, err)
	require.Equal(t, uint64(1), result.Nonce)

	recovered, err := signer.Recover(result.Digest, result.Signature)
	require.NoError(t, err)
	require.Equal(t, svc.OperatorAddress(), recovered)

	loaded, err = st.LoadArena(ctx, arenaAddress)
	require.NoError(t, err)
	require.True(t, loaded.IsFinalized)
	require.Len(t, loaded.Winners, 2)
	require.Len(t, loaded.Payouts, 2)

	total := big.NewInt(0)
	for _, p := range loaded.Payouts {
		total.Add(total, p)
	}
	require.Equal(t, big.NewInt(1960), total, "payouts must sum to pool minus the 2% protocol fee")

	require.Len(t, st.PayoutRecords(), 2)

	_, err = act.Finalize(ctx, FinalizeParams{ChainID: 1, SigningSvc: svc})
	require.ErrorIs(t, err, signer.ErrAlreadyFinalized)
}

// TestLifecycle_IdleArenaCancelsAndRefunds drives a single joiner through
// the idle-reap path, since only one player ever joins before the reap
// timer fires.
func TestLifecycle_IdleArenaCancelsAndRefunds(t *testing.T) {
	st := store.NewMemStore()
	start := time.Date(2026, 1, 1, 3, 0, 0, 0, time.UTC)
	vc := clock.NewVirtualClock(start)
	sched := clock.NewScheduler(vc, zap.NewNop(), time.Second)
	log := zap.NewNop()

	arenaAddress := newTestAddress(t)
	p1 := newTestAddress(t)

	newArena := &arena.Arena{
		Address: arenaAddress,
		Config: arena.Config{
			Name:           "Idle Test Arena",
			EntryFee:       big.NewInt(1000),
			MaxPlayers:     4,
			ProtocolFeeBps: 200,
			GameType:       arena.GameClaw,
		},
		GameStatus: arena.StatusWaiting,
		Timing:     arena.Timing{CreatedAt: start},
	}
	require.NoError(t, st.CreateArena(context.Background(), newArena))

	act := New(arenaAddress, st, sched, vc, log)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go act.Run(ctx)

	require.NoError(t, act.Join(ctx, p1, vc.Now()))
	require.True(t, sched.Pending(clock.Key{ArenaID: arenaAddress, Kind: clock.KindIdleReap}))

	vc.Advance(arena.IdleReapDuration)
	sched.RunDue(ctx)

	require.Eventually(t, func() bool {
		a, err := st.LoadArena(ctx, arenaAddress)
		return err == nil && a.GameStatus == arena.StatusCancelled
	}, time.Second, time.Millisecond, "a lone joiner must be cancelled once idle_reap fires")

	loaded, err := st.LoadArena(ctx, arenaAddress)
	require.NoError(t, err)
	require.True(t, loaded.IsClosed)
	require.Len(t, loaded.RefundIntents, 1)
	require.Equal(t, p1, loaded.RefundIntents[0].Player)
	require.Equal(t, 0, loaded.RefundIntents[0].Amount.Cmp(big.NewInt(1000)))
}
