package store

import (
	"context"
	"sync"

	"github.com/clawarena/orchestrator/internal/arena"
)

// leaderboardEntry mirrors the aggregate fields UpdateLeaderboard
// accumulates into.
type leaderboardEntry struct {
	wins   int
	payout string // decimal string; accumulated via addDecimal
	games  int
}

// MemStore is an in-memory Store: a map-keyed document table
// generalized to versioned per-document CAS, one version-stamped
// document per arena address.
type MemStore struct {
	mu           sync.Mutex
	arenas       map[string]*arena.Arena
	payouts      []PayoutRecord
	leaderboard  map[string]*leaderboardEntry
}

func NewMemStore() *MemStore {
	return &MemStore{
		arenas:      make(map[string]*arena.Arena),
		leaderboard: make(map[string]*leaderboardEntry),
	}
}

func (m *MemStore) CreateArena(ctx context.Context, a *arena.Arena) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.arenas[a.Address]; ok {
		return ErrConflict
	}
	clone := a.Clone()
	clone.Version = 1
	m.arenas[a.Address] = clone
	return nil
}

func (m *MemStore) LoadArena(ctx context.Context, address string) (*arena.Arena, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.arenas[address]
	if !ok {
		return nil, ErrNotFound
	}
	return a.Clone(), nil
}

func (m *MemStore) UpdateArena(ctx context.Context, address string, expectedVersion uint64, mutate Mutator) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	a, ok := m.arenas[address]
	if !ok {
		return 0, ErrNotFound
	}
	if a.Version != expectedVersion {
		return 0, ErrConflict
	}

	working := a.Clone()
	if err := mutate(working); err != nil {
		return 0, err
	}
	working.Version = a.Version + 1
	m.arenas[address] = working
	return working.Version, nil
}

func (m *MemStore) AppendPayoutRecord(ctx context.Context, rec PayoutRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payouts = append(m.payouts, rec)
	return nil
}

func (m *MemStore) UpdateLeaderboard(ctx context.Context, delta LeaderboardDelta) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.leaderboard[delta.Player]
	if !ok {
		e = &leaderboardEntry{payout: "0"}
		m.leaderboard[delta.Player] = e
	}
	e.wins += delta.DeltaWins
	e.games += delta.DeltaGames
	e.payout = addDecimal(e.payout, delta.DeltaPayout)
	return nil
}

func (m *MemStore) ActiveCount(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, a := range m.arenas {
		if !a.IsFinalized && a.GameStatus != arena.StatusCancelled {
			n++
		}
	}
	return n, nil
}

// PayoutRecords is a test helper exposing the append-only log.
func (m *MemStore) PayoutRecords() []PayoutRecord {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]PayoutRecord, len(m.payouts))
	copy(out, m.payouts)
	return out
}
