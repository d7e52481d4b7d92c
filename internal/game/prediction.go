package game

import (
	"math"
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
)

// PredictionChallenge is one round's numeric guessing question.
type PredictionChallenge struct {
	Min, Max float64
	Target   float64 // hidden from players; used only by ValidateMove
}

// PredictionMove is a player's numeric guess.
type PredictionMove struct {
	Guess float64
}

type predictionVariant struct{}

func init() { register(TypePrediction, predictionVariant{}) }

func (predictionVariant) MaxRounds() int { return 3 }

func (predictionVariant) InitialChallenge(round int, players []string, rng *rand.Rand) any {
	min, max := 0.0, 100.0
	target := min + rng.Float64()*(max-min)
	return &PredictionChallenge{Min: min, Max: max, Target: target}
}

func (predictionVariant) ValidateMove(player string, move any, challenge any) (int, error) {
	m, ok := move.(PredictionMove)
	if !ok {
		return 0, errors.Errorf("prediction: move has wrong type %T", move)
	}
	c, ok := challenge.(*PredictionChallenge)
	if !ok {
		return 0, errors.Errorf("prediction: challenge has wrong type %T", challenge)
	}
	span := c.Max - c.Min
	if span <= 0 {
		return 0, errors.New("prediction: invalid challenge range")
	}
	diff := m.Guess - c.Target
	if diff < 0 {
		diff = -diff
	}
	score := 100 - int(math.Round(diff/span*100))
	if score < 0 {
		score = 0
	}
	return score, nil
}

func (predictionVariant) AutoMove(player string, challenge any, rng *rand.Rand) any {
	c, ok := challenge.(*PredictionChallenge)
	if !ok {
		return PredictionMove{}
	}
	return PredictionMove{Guess: c.Min + rng.Float64()*(c.Max-c.Min)}
}

// FinalRanking sums per-round scores (already accumulated in
// g.Players[*].Score by the engine) and breaks ties by join order.
func (predictionVariant) FinalRanking(g *Game) []string {
	order := g.JoinOrder()
	sort.SliceStable(order, func(i, j int) bool {
		return g.Players[order[i]].Score > g.Players[order[j]].Score
	})
	return order
}
