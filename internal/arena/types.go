// Package arena implements the per-arena state machine: phase
// transitions, guards, and invariants, driven by a strictly ordered
// mailbox per arena actor.
package arena

import (
	"math/big"
	"time"
)

// GameType enumerates the four mini-game protocols an arena can host.
type GameType string

const (
	GameClaw        GameType = "claw"
	GamePrediction  GameType = "prediction"
	GameSpeed       GameType = "speed"
	GameBlackjack   GameType = "blackjack"
)

// Network distinguishes the chain an arena's escrow lives on.
type Network string

const (
	NetworkTestnet Network = "testnet"
	NetworkMainnet Network = "mainnet"
)

// CreatedBy records who originated the arena.
type CreatedBy string

const (
	CreatedByAdmin CreatedBy = "admin"
	CreatedByAgent CreatedBy = "agent"
)

// GameStatus is the game_status component of an arena's composite
// phase: the full state is determined by (is_closed, is_finalized,
// game_status, |players|).
type GameStatus string

const (
	StatusNone      GameStatus = "none"
	StatusWaiting   GameStatus = "waiting"
	StatusLearning  GameStatus = "learning"
	StatusActive    GameStatus = "active"
	StatusFinished  GameStatus = "finished"
	StatusCancelled GameStatus = "cancelled"
)

// Config holds the immutable-after-creation configuration of an arena.
type Config struct {
	Name                string
	EntryFee            *big.Int // 256-bit unsigned, smallest chain unit
	MaxPlayers          int      // 2..64
	ProtocolFeeBps      int      // 0..1000
	TreasuryAddress     string
	RegistrationDeadline *time.Time // nil means "none"
	GameType            GameType
	Network             Network
	CreatedBy           CreatedBy
	CreationReason      string
	PayoutScheme        string // see internal/payout; "" defaults to equal split
}

// RefundIntent is an off-chain record produced when an arena cancels
// with exactly one paid-in player.
type RefundIntent struct {
	Player    string
	Amount    *big.Int
	Reason    string
	CreatedAt time.Time
}

// Timing carries every timestamp anchor an arena's lifecycle needs.
type Timing struct {
	CreatedAt         time.Time
	ClosedAt          *time.Time
	LearningStartedAt *time.Time
	ActiveStartedAt   *time.Time
	FinishedAt        *time.Time
	FinalizedAt       *time.Time
}

// Arena is the root aggregate.
type Arena struct {
	Address string
	Config  Config

	Players []string // ordered, first-join order preserved

	IsClosed    bool
	IsFinalized bool
	GameStatus  GameStatus

	Timing Timing

	GameID  string
	Winners []string // ordered by final rank
	Payouts []*big.Int
	Results *GameResults

	UsedNonce        uint64
	FinalizeSignature []byte

	RefundIntents []RefundIntent

	// Version is the optimistic-concurrency token for Store.UpdateArena.
	Version uint64
}

// GameResults is the per-player score book-keeping.
type GameResults struct {
	Scores map[string]int
}

// Clone deep-copies an Arena so actor-internal mutation never aliases
// a caller's copy, the same clone-by-reload discipline a CAS store
// needs around its updates.
func (a *Arena) Clone() *Arena {
	if a == nil {
		return nil
	}
	c := *a
	c.Players = append([]string(nil), a.Players...)
	c.Winners = append([]string(nil), a.Winners...)
	c.Payouts = make([]*big.Int, len(a.Payouts))
	for i, p := range a.Payouts {
		if p != nil {
			c.Payouts[i] = new(big.Int).Set(p)
		}
	}
	c.RefundIntents = append([]RefundIntent(nil), a.RefundIntents...)
	for i, r := range c.RefundIntents {
		if r.Amount != nil {
			c.RefundIntents[i].Amount = new(big.Int).Set(r.Amount)
		}
	}
	c.FinalizeSignature = append([]byte(nil), a.FinalizeSignature...)
	for _, p := range []**time.Time{&c.Config.RegistrationDeadline, &c.Timing.ClosedAt,
		&c.Timing.LearningStartedAt, &c.Timing.ActiveStartedAt, &c.Timing.FinishedAt, &c.Timing.FinalizedAt} {
		if *p != nil {
			t := **p
			*p = &t
		}
	}
	if a.Config.EntryFee != nil {
		c.Config.EntryFee = new(big.Int).Set(a.Config.EntryFee)
	}
	if a.Results != nil {
		scores := make(map[string]int, len(a.Results.Scores))
		for k, v := range a.Results.Scores {
			scores[k] = v
		}
		c.Results = &GameResults{Scores: scores}
	}
	return &c
}

// HasPlayer reports whether p has already joined.
func (a *Arena) HasPlayer(p string) bool {
	for _, q := range a.Players {
		if q == p {
			return true
		}
	}
	return false
}

// Pool returns entry_fee * |players|, the gross prize pool.
func (a *Arena) Pool() *big.Int {
	n := big.NewInt(int64(len(a.Players)))
	if a.Config.EntryFee == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Mul(a.Config.EntryFee, n)
}
