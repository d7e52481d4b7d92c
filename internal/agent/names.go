package agent

import "math/rand/v2"

// flair adjective/noun lists back the arena's display-name generation.
// Kept short and on-theme; not meant to be exhaustive.
var flairAdjectives = []string{
	"Rusty", "Golden", "Midnight", "Frantic", "Lucky", "Iron", "Velvet",
	"Crimson", "Feral", "Silent",
}

var flairNouns = []string{
	"Claw", "Showdown", "Gambit", "Wager", "Circuit", "Arena", "Heist",
	"Rumble", "Jackpot", "Standoff",
}

// FlairName generates a display name for a newly created arena.
func FlairName(tier Tier, rng *rand.Rand) string {
	adj := flairAdjectives[rng.IntN(len(flairAdjectives))]
	noun := flairNouns[rng.IntN(len(flairNouns))]
	return adj + " " + noun + " (" + string(tier) + ")"
}
