// Package chainadapter implements the thin on-chain boundary: a
// pre-join sanity check against chain state, and polling for a
// submitted finalize's on-chain outcome. Neither operation mutates
// arena state.
package chainadapter

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotYetObserved is returned while a submitted finalize has not yet
// landed on chain.
var ErrNotYetObserved = errors.New("chainadapter: finalization not yet observed")

// FinalizationResult is what observe_finalization reports once a
// previously submitted finalize transaction lands.
type FinalizationResult struct {
	TxHash  string
	Success bool
}

// ChainAdapter is the on-chain adapter contract.
type ChainAdapter interface {
	HasPlayerJoined(ctx context.Context, arenaAddress, player string) (bool, error)
	ObserveFinalization(ctx context.Context, arenaAddress string) (FinalizationResult, error)
}
