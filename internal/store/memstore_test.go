package store

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/clawarena/orchestrator/internal/arena"
)

func newTestArena(address string) *arena.Arena {
	return &arena.Arena{
		Address: address,
		Config: arena.Config{
			Name:       "Test Arena",
			EntryFee:   big.NewInt(1000),
			MaxPlayers: 4,
		},
		GameStatus: arena.StatusWaiting,
		Timing:     arena.Timing{CreatedAt: time.Unix(0, 0)},
	}
}

func TestMemStore_CreateArenaStartsAtVersionOne(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.CreateArena(context.Background(), newTestArena("arena-1")))

	loaded, err := m.LoadArena(context.Background(), "arena-1")
	require.NoError(t, err)
	require.Equal(t, uint64(1), loaded.Version)
}

func TestMemStore_CreateArenaRejectsDuplicateAddress(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.CreateArena(context.Background(), newTestArena("arena-1")))
	err := m.CreateArena(context.Background(), newTestArena("arena-1"))
	require.ErrorIs(t, err, ErrConflict)
}

func TestMemStore_LoadArenaNotFound(t *testing.T) {
	m := NewMemStore()
	_, err := m.LoadArena(context.Background(), "nonexistent")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_LoadArenaReturnsAnIndependentClone(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.CreateArena(context.Background(), newTestArena("arena-1")))

	loaded, err := m.LoadArena(context.Background(), "arena-1")
	require.NoError(t, err)
	loaded.Players = append(loaded.Players, "mutated-after-load")

	reloaded, err := m.LoadArena(context.Background(), "arena-1")
	require.NoError(t, err)
	require.Empty(t, reloaded.Players, "mutating a loaded clone must not affect the stored document")
}

func TestMemStore_UpdateArenaAppliesMutationAndBumpsVersion(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.CreateArena(context.Background(), newTestArena("arena-1")))

	newVersion, err := m.UpdateArena(context.Background(), "arena-1", 1, func(a *arena.Arena) error {
		a.Players = append(a.Players, "alice")
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, uint64(2), newVersion)

	loaded, err := m.LoadArena(context.Background(), "arena-1")
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, loaded.Players)
	require.Equal(t, uint64(2), loaded.Version)
}

func TestMemStore_UpdateArenaRejectsStaleExpectedVersion(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.CreateArena(context.Background(), newTestArena("arena-1")))

	_, err := m.UpdateArena(context.Background(), "arena-1", 1, func(a *arena.Arena) error {
		a.Players = append(a.Players, "alice")
		return nil
	})
	require.NoError(t, err)

	_, err = m.UpdateArena(context.Background(), "arena-1", 1, func(a *arena.Arena) error {
		a.Players = append(a.Players, "bob")
		return nil
	})
	require.ErrorIs(t, err, ErrConflict)
}

func TestMemStore_UpdateArenaNotFound(t *testing.T) {
	m := NewMemStore()
	_, err := m.UpdateArena(context.Background(), "ghost", 1, func(a *arena.Arena) error { return nil })
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemStore_UpdateArenaMutatorErrorAbortsWithNoWrite(t *testing.T) {
	m := NewMemStore()
	require.NoError(t, m.CreateArena(context.Background(), newTestArena("arena-1")))

	_, err := m.UpdateArena(context.Background(), "arena-1", 1, func(a *arena.Arena) error {
		return errMutatorBoom
	})
	require.ErrorIs(t, err, errMutatorBoom)

	loaded, loadErr := m.LoadArena(context.Background(), "arena-1")
	require.NoError(t, loadErr)
	require.Equal(t, uint64(1), loaded.Version, "a mutator error must not bump the version")
}

var errMutatorBoom = errors.New("mutator boom")

func TestMemStore_ActiveCountExcludesFinalizedAndCancelled(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	active := newTestArena("active")
	require.NoError(t, m.CreateArena(ctx, active))

	finalized := newTestArena("finalized")
	finalized.IsFinalized = true
	require.NoError(t, m.CreateArena(ctx, finalized))

	cancelled := newTestArena("cancelled")
	cancelled.GameStatus = arena.StatusCancelled
	require.NoError(t, m.CreateArena(ctx, cancelled))

	count, err := m.ActiveCount(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestMemStore_AppendPayoutRecordIsOrderPreservingAndAppendOnly(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	require.NoError(t, m.AppendPayoutRecord(ctx, PayoutRecord{ArenaAddress: "a1", Winner: "alice", Amount: "700"}))
	require.NoError(t, m.AppendPayoutRecord(ctx, PayoutRecord{ArenaAddress: "a1", Winner: "bob", Amount: "300"}))

	recs := m.PayoutRecords()
	require.Len(t, recs, 2)
	require.Equal(t, "alice", recs[0].Winner)
	require.Equal(t, "bob", recs[1].Winner)
}

func TestMemStore_UpdateLeaderboardAccumulatesAcrossCalls(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()

	require.NoError(t, m.UpdateLeaderboard(ctx, LeaderboardDelta{
		Player: "alice", DeltaWins: 1, DeltaPayout: "700", DeltaGames: 1,
	}))
	require.NoError(t, m.UpdateLeaderboard(ctx, LeaderboardDelta{
		Player: "alice", DeltaWins: 1, DeltaPayout: "300", DeltaGames: 1,
	}))

	e, ok := m.leaderboard["alice"]
	require.True(t, ok)
	require.Equal(t, 2, e.wins)
	require.Equal(t, 2, e.games)
	require.Equal(t, "1000", e.payout)
}

func TestMemStore_UpdateLeaderboardInitializesNewPlayerAtZero(t *testing.T) {
	m := NewMemStore()
	ctx := context.Background()
	require.NoError(t, m.UpdateLeaderboard(ctx, LeaderboardDelta{
		Player: "fresh", DeltaWins: 0, DeltaPayout: "0", DeltaGames: 1,
	}))
	e, ok := m.leaderboard["fresh"]
	require.True(t, ok)
	require.Equal(t, "0", e.payout)
}
