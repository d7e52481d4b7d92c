package chainadapter

import (
	"context"
	"sync"
)

// FakeAdapter is an in-memory ChainAdapter for tests, letting a test
// pre-seed joins and finalization outcomes without a live chain.
type FakeAdapter struct {
	mu            sync.Mutex
	joined        map[string]bool // "arena:player" -> joined
	finalizations map[string]FinalizationResult
}

func NewFakeAdapter() *FakeAdapter {
	return &FakeAdapter{
		joined:        make(map[string]bool),
		finalizations: make(map[string]FinalizationResult),
	}
}

func (f *FakeAdapter) SeedJoin(arenaAddress, player string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.joined[arenaAddress+":"+player] = true
}

func (f *FakeAdapter) SeedFinalization(arenaAddress string, result FinalizationResult) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finalizations[arenaAddress] = result
}

func (f *FakeAdapter) HasPlayerJoined(ctx context.Context, arenaAddress, player string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.joined[arenaAddress+":"+player], nil
}

func (f *FakeAdapter) ObserveFinalization(ctx context.Context, arenaAddress string) (FinalizationResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.finalizations[arenaAddress]
	if !ok {
		return FinalizationResult{}, ErrNotYetObserved
	}
	return res, nil
}
