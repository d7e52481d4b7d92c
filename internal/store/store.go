// Package store defines the persistence boundary: a CAS-style arena
// document store plus write-through payout and leaderboard aggregates.
// The core only ever depends on the Store interface; memstore.go is an
// in-memory reference implementation used by tests and local/dev
// runs.
package store

import (
	"context"

	"github.com/pkg/errors"

	"github.com/clawarena/orchestrator/internal/arena"
)

// ErrNotFound is returned by LoadArena when no document exists for an
// address.
var ErrNotFound = errors.New("store: arena not found")

// ErrConflict is returned by UpdateArena when the caller's expected
// version no longer matches the stored version — another writer won
// the race. Per-arena leadership should make this rare in practice,
// but the store still enforces it rather than trusting callers.
var ErrConflict = errors.New("store: version conflict")

// Mutator transforms a cloned arena snapshot in place. Returning an
// error aborts the update with no write performed.
type Mutator func(a *arena.Arena) error

// PayoutRecord is a single winner payment, write-through logged
// alongside a successful finalize.
type PayoutRecord struct {
	ArenaAddress string
	Winner       string
	Amount       string // decimal string; big.Int values may exceed int64
}

// LeaderboardDelta accumulates into a player's running aggregates.
type LeaderboardDelta struct {
	Player      string
	DeltaWins   int
	DeltaPayout string // decimal string, added to the player's running total
	DeltaGames  int
}

// Store is the persistence boundary.
type Store interface {
	LoadArena(ctx context.Context, address string) (*arena.Arena, error)
	UpdateArena(ctx context.Context, address string, expectedVersion uint64, mutate Mutator) (newVersion uint64, err error)
	AppendPayoutRecord(ctx context.Context, rec PayoutRecord) error
	UpdateLeaderboard(ctx context.Context, delta LeaderboardDelta) error

	// CreateArena inserts a brand-new arena document at version 1,
	// backing arena creation without routing through UpdateArena
	// against a not-yet-existing key.
	CreateArena(ctx context.Context, a *arena.Arena) error

	// ActiveCount reports the number of arenas the autonomous agent
	// should count toward its minimum/maximum active thresholds: created
	// or past-created but not yet finalized or cancelled.
	ActiveCount(ctx context.Context) (int, error)
}
