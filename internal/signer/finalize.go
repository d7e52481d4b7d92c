package signer

import (
	"context"
	"math/big"
)

// FinalizeRequest carries everything Finalize needs to validate and
// sign a terminal arena's result.
type FinalizeRequest struct {
	ChainID           uint64
	ArenaAddress      Address
	Players           []Address // full player set, for winner-membership checks
	Winners           []Address // rank order
	Amounts           []*big.Int
	ProposedNonce     uint64
	LastUsedNonce     uint64
	Pool              *big.Int
	ProtocolFeeBps    int
	IsClosed          bool
	IsFinalized       bool
	GameStatusFinished bool
}

// FinalizeResult is returned on success.
type FinalizeResult struct {
	Digest    [32]byte
	Signature Signature
	Nonce     uint64
}

// Finalize checks the five validation preconditions, builds the
// canonical digest, and asks svc to sign it. On any precondition
// failure it returns one of this package's sentinel errors and
// performs no signing call.
func Finalize(ctx context.Context, svc SigningService, req FinalizeRequest) (FinalizeResult, error) {
	if err := validate(req); err != nil {
		return FinalizeResult{}, err
	}

	digest := Digest(req.ChainID, req.ArenaAddress, req.Winners, req.Amounts, req.ProposedNonce)

	sig, err := svc.Sign(ctx, digest)
	if err != nil {
		return FinalizeResult{}, errWrap(ErrSigningServiceDown, err)
	}
	return FinalizeResult{Digest: digest, Signature: sig, Nonce: req.ProposedNonce}, nil
}

func validate(req FinalizeRequest) error {
	// 1. Terminal state: finished, closed, not yet finalized.
	if !req.IsClosed || !req.GameStatusFinished {
		return ErrArenaNotClosed
	}
	if req.IsFinalized {
		return ErrAlreadyFinalized
	}

	// 2. Every winner must be a known player.
	players := make(map[Address]bool, len(req.Players))
	for _, p := range req.Players {
		players[p] = true
	}
	for _, w := range req.Winners {
		if !players[w] {
			return ErrInvalidWinner
		}
	}

	// 3. |winners| = |amounts| >= 1.
	if len(req.Winners) == 0 || len(req.Winners) != len(req.Amounts) {
		return ErrInvalidWinner
	}

	// 4. Sum(amounts) <= pool - fee.
	fee := feeOf(req.Pool, req.ProtocolFeeBps)
	available := new(big.Int).Sub(req.Pool, fee)
	total := big.NewInt(0)
	for _, a := range req.Amounts {
		total.Add(total, a)
	}
	if total.Cmp(available) > 0 {
		return ErrPayoutExceedsEscrow
	}

	// 5. Nonce must be exactly one greater than the last consumed nonce.
	if req.ProposedNonce != req.LastUsedNonce+1 {
		return ErrNonceReused
	}

	return nil
}

func feeOf(pool *big.Int, bps int) *big.Int {
	num := new(big.Int).Mul(pool, big.NewInt(int64(bps)))
	return num.Div(num, big.NewInt(10000))
}

// errWrap keeps the sentinel as the identity callers check with
// errors.Is while preserving the underlying cause for logs.
func errWrap(sentinel, cause error) error {
	return &wrappedError{sentinel: sentinel, cause: cause}
}

type wrappedError struct {
	sentinel error
	cause    error
}

func (e *wrappedError) Error() string { return e.sentinel.Error() + ": " + e.cause.Error() }
func (e *wrappedError) Unwrap() error { return e.sentinel }
func (e *wrappedError) Cause() error  { return e.cause }
