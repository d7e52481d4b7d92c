package chainadapter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFakeAdapter_HasPlayerJoinedReflectsSeededState(t *testing.T) {
	f := NewFakeAdapter()
	ctx := context.Background()

	joined, err := f.HasPlayerJoined(ctx, "arena-1", "alice")
	require.NoError(t, err)
	require.False(t, joined)

	f.SeedJoin("arena-1", "alice")
	joined, err = f.HasPlayerJoined(ctx, "arena-1", "alice")
	require.NoError(t, err)
	require.True(t, joined)

	joined, err = f.HasPlayerJoined(ctx, "arena-1", "bob")
	require.NoError(t, err)
	require.False(t, joined, "seeding one player must not leak to another")
}

func TestFakeAdapter_ObserveFinalizationReturnsNotYetObservedUntilSeeded(t *testing.T) {
	f := NewFakeAdapter()
	ctx := context.Background()

	_, err := f.ObserveFinalization(ctx, "arena-1")
	require.ErrorIs(t, err, ErrNotYetObserved)

	want := FinalizationResult{TxHash: "0xabc", Success: true}
	f.SeedFinalization("arena-1", want)

	got, err := f.ObserveFinalization(ctx, "arena-1")
	require.NoError(t, err)
	require.Equal(t, want, got)
}
