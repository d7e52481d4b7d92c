// Package payout implements the fee deduction, winner split, and
// remainder policy entirely in 256-bit-safe integer arithmetic
// (math/big.Int), never floats.
package payout

import (
	"math/big"

	"github.com/pkg/errors"
)

// Scheme selects how the net pool is divided among ranked winners.
// Equal is the default; the weighted schemes are an optional policy
// variant, selected per arena configuration.
type Scheme string

const (
	SchemeEqual          Scheme = "equal"
	SchemeWeighted60_40  Scheme = "weighted_60_40"
	SchemeWeighted70_20_10 Scheme = "weighted_70_20_10"
)

var bps10000 = big.NewInt(10000)

// Split computes the payout algorithm:
//
//	pool        = entry_fee * n_players
//	fee         = (pool * protocol_fee_bps) / 10000
//	available   = pool - fee
//	per_winner  = available / k               (equal scheme)
//	remainder   = available - per_winner * k
//	payouts[i]  = per_winner + (1 if i < remainder else 0)
//
// winners must already be in rank order; Split never reorders them. It
// returns one payout per winner, front-loading any integer-division
// remainder onto the highest-ranked winners, which in the weighted
// schemes becomes "round the fractional shares down, then hand the
// leftover to rank 1".
func Split(entryFee *big.Int, nPlayers int, protocolFeeBps int, winners []string, scheme Scheme) ([]*big.Int, error) {
	if entryFee == nil || entryFee.Sign() < 0 {
		return nil, errors.New("payout: entry fee must be non-negative")
	}
	if nPlayers <= 0 {
		return nil, errors.New("payout: n_players must be positive")
	}
	if protocolFeeBps < 0 || protocolFeeBps > 10000 {
		return nil, errors.New("payout: protocol_fee_bps out of range")
	}
	k := len(winners)
	if k < 1 {
		return nil, errors.New("payout: at least one winner is required")
	}

	pool := Pool(entryFee, nPlayers)
	fee := Fee(pool, protocolFeeBps)
	available := new(big.Int).Sub(pool, fee)

	switch scheme {
	case "", SchemeEqual:
		return equalSplit(available, k), nil
	case SchemeWeighted60_40:
		return weightedSplit(available, k, []int{60, 40})
	case SchemeWeighted70_20_10:
		return weightedSplit(available, k, []int{70, 20, 10})
	default:
		return nil, errors.Errorf("payout: unknown scheme %q", scheme)
	}
}

// Pool returns entry_fee * n_players.
func Pool(entryFee *big.Int, nPlayers int) *big.Int {
	return new(big.Int).Mul(entryFee, big.NewInt(int64(nPlayers)))
}

// Fee returns floor(pool * protocol_fee_bps / 10000).
func Fee(pool *big.Int, protocolFeeBps int) *big.Int {
	num := new(big.Int).Mul(pool, big.NewInt(int64(protocolFeeBps)))
	return num.Div(num, bps10000)
}

func equalSplit(available *big.Int, k int) []*big.Int {
	kBig := big.NewInt(int64(k))
	perWinner := new(big.Int).Div(available, kBig)
	remainder := new(big.Int).Sub(available, new(big.Int).Mul(perWinner, kBig))

	payouts := make([]*big.Int, k)
	one := big.NewInt(1)
	for i := 0; i < k; i++ {
		p := new(big.Int).Set(perWinner)
		if big.NewInt(int64(i)).Cmp(remainder) < 0 {
			p.Add(p, one)
		}
		payouts[i] = p
	}
	return payouts
}

// weightedSplit divides available by integer weights summing to 100,
// flooring each share, then hands the full leftover (from flooring) to
// the top-ranked winner so the total still sums exactly to available.
func weightedSplit(available *big.Int, k int, weightsPct []int) ([]*big.Int, error) {
	if k != len(weightsPct) {
		return nil, errors.Errorf("payout: weighted scheme expects %d winners, got %d", len(weightsPct), k)
	}
	hundred := big.NewInt(100)
	payouts := make([]*big.Int, k)
	sum := big.NewInt(0)
	for i, w := range weightsPct {
		share := new(big.Int).Mul(available, big.NewInt(int64(w)))
		share.Div(share, hundred)
		payouts[i] = share
		sum.Add(sum, share)
	}
	leftover := new(big.Int).Sub(available, sum)
	payouts[0].Add(payouts[0], leftover)
	return payouts, nil
}
