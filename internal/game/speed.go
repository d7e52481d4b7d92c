package game

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/pkg/errors"
)

// SpeedChallengeKind enumerates the three reaction-test flavors of
// the Speed variant.
type SpeedChallengeKind string

const (
	SpeedMath    SpeedChallengeKind = "math"
	SpeedPattern SpeedChallengeKind = "pattern"
	SpeedReaction SpeedChallengeKind = "reaction"
)

// SpeedTimeLimit is the per-round time limit.
const SpeedTimeLimit = 10 * time.Second

// SpeedChallenge is one round's prompt.
type SpeedChallenge struct {
	Kind       SpeedChallengeKind
	Prompt     string
	Answer     string
	GoAtMillis int64 // reaction only: millis into the round the go-signal fires
}

// SpeedMove is a player's answer and how long it took to submit it.
type SpeedMove struct {
	Answer          string
	ResponseTimeMs  int
	SubmittedBeforeGo bool // reaction only
}

type speedVariant struct{}

func init() { register(TypeSpeed, speedVariant{}) }

func (speedVariant) MaxRounds() int { return 10 }

func (speedVariant) InitialChallenge(round int, players []string, rng *rand.Rand) any {
	switch SpeedChallengeKind([]string{"math", "pattern", "reaction"}[rng.IntN(3)]) {
	case SpeedMath:
		a, b := rng.IntN(50)+1, rng.IntN(50)+1
		return &SpeedChallenge{Kind: SpeedMath, Prompt: fmt.Sprintf("%d + %d", a, b), Answer: fmt.Sprintf("%d", a+b)}
	case SpeedPattern:
		start := rng.IntN(10) + 1
		step := rng.IntN(5) + 1
		seq := []int{start, start + step, start + 2*step, start + 3*step}
		return &SpeedChallenge{
			Kind:   SpeedPattern,
			Prompt: fmt.Sprintf("%d, %d, %d, %d, ?", seq[0], seq[1], seq[2], seq[3]),
			Answer: fmt.Sprintf("%d", start+4*step),
		}
	default:
		return &SpeedChallenge{
			Kind:       SpeedReaction,
			Prompt:     "wait for go",
			Answer:     "go",
			GoAtMillis: int64(1000 + rng.IntN(3000)),
		}
	}
}

func (speedVariant) ValidateMove(player string, move any, challenge any) (int, error) {
	m, ok := move.(SpeedMove)
	if !ok {
		return 0, errors.Errorf("speed: move has wrong type %T", move)
	}
	c, ok := challenge.(*SpeedChallenge)
	if !ok {
		return 0, errors.Errorf("speed: challenge has wrong type %T", challenge)
	}

	if c.Kind == SpeedReaction && m.SubmittedBeforeGo {
		return 0, nil // "too early" scores 0 and counts as answered
	}
	if m.ResponseTimeMs < 0 || int64(m.ResponseTimeMs) > SpeedTimeLimit.Milliseconds() {
		return 0, nil // timed out
	}
	if m.Answer != c.Answer {
		return 0, nil
	}
	score := 100 - m.ResponseTimeMs/50
	if score < 10 {
		score = 10
	}
	return score, nil
}

func (speedVariant) AutoMove(player string, challenge any, rng *rand.Rand) any {
	c, ok := challenge.(*SpeedChallenge)
	if !ok {
		return SpeedMove{}
	}
	// Deterministic absent-player fallback: answers correctly at a
	// fixed, unhurried response time rather than scoring zero outright.
	// Auto-move is a deterministic fallback, not a forced loss.
	return SpeedMove{Answer: c.Answer, ResponseTimeMs: 4000}
}

func (speedVariant) FinalRanking(g *Game) []string {
	order := g.JoinOrder()
	sort.SliceStable(order, func(i, j int) bool {
		return g.Players[order[i]].Score > g.Players[order[j]].Score
	})
	return order
}
