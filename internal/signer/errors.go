package signer

import "github.com/pkg/errors"

// Error taxonomy, one sentinel per named exit code.
var (
	ErrArenaNotClosed      = errors.New("signer: arena_not_closed")
	ErrAlreadyFinalized    = errors.New("signer: already_finalized")
	ErrInvalidWinner       = errors.New("signer: invalid_winner")
	ErrPayoutExceedsEscrow = errors.New("signer: payout_exceeds_escrow")
	ErrNonceReused         = errors.New("signer: nonce_reused")
	ErrSigningServiceDown  = errors.New("signer: signing_service_unavailable")
)
