package game

import "math/rand/v2"

// MoveResult is the return value of the shared submit-move contract:
// submit_move(game_id, player, move) -> MoveResult.
type MoveResult struct {
	Player        string
	NewScore      int
	RoundResolved bool
}

// Variant is the per-game-type contract. Every method is pure given
// its inputs (including rng, which callers seed deterministically via
// NewRNG/RoundSeed) so that replay and auto-play are reproducible.
type Variant interface {
	// MaxRounds is the type-dependent round count (claw=1,
	// prediction=3, speed=10, blackjack=5).
	MaxRounds() int

	// InitialChallenge produces the round's prompt/state.
	InitialChallenge(round int, players []string, rng *rand.Rand) any

	// ValidateMove checks a submitted move against the current
	// challenge and returns the score delta it earns, or an error.
	ValidateMove(player string, move any, challenge any) (int, error)

	// AutoMove is the deterministic-given-seed fallback used uniformly
	// for absent players and for orchestrator-run games without real
	// input. There is exactly one auto-move path (engine-side),
	// exercised both on timeout and on explicit auto-play requests.
	AutoMove(player string, challenge any, rng *rand.Rand) any

	// FinalRanking orders players by final rank with the variant's
	// documented tie-break.
	FinalRanking(g *Game) []string
}

// Variants maps each Type to its Variant implementation. Populated by
// each variant file's init().
var Variants = map[Type]Variant{}

func register(t Type, v Variant) { Variants[t] = v }
