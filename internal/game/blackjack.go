package game

import (
	"math/rand/v2"
	"sort"

	"github.com/pkg/errors"
)

// Card is a standard playing card; Rank is 1 (ace) .. 13 (king).
type Card struct {
	Rank int
	Suit int // 0..3, unused beyond producing a full 52-card deck
}

func freshDeck(rng *rand.Rand) []Card {
	deck := make([]Card, 0, 52)
	for suit := 0; suit < 4; suit++ {
		for rank := 1; rank <= 13; rank++ {
			deck = append(deck, Card{Rank: rank, Suit: suit})
		}
	}
	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck
}

// cardValue returns a card's blackjack value treating every ace as 11;
// HandTotal then downgrades aces to 1 as needed.
func cardValue(c Card) int {
	switch {
	case c.Rank == 1:
		return 11
	case c.Rank >= 10:
		return 10
	default:
		return c.Rank
	}
}

// HandTotal applies the ace-downgrade rule: an ace counts 11 unless
// the total exceeds 21 and aces remain, in which case each such ace
// becomes 1 until the total is 21 or under, or no aces remain.
func HandTotal(cards []Card) int {
	total := 0
	aces := 0
	for _, c := range cards {
		total += cardValue(c)
		if c.Rank == 1 {
			aces++
		}
	}
	for total > 21 && aces > 0 {
		total -= 10
		aces--
	}
	return total
}

func isBlackjack(cards []Card) bool {
	return len(cards) == 2 && HandTotal(cards) == 21
}

// BlackjackHandOutcome enumerates the per-hand outcomes and their
// point values.
type BlackjackHandOutcome string

const (
	OutcomeBust      BlackjackHandOutcome = "bust"
	OutcomeWin       BlackjackHandOutcome = "win"
	OutcomeTie       BlackjackHandOutcome = "tie"
	OutcomeLoss      BlackjackHandOutcome = "loss"
	OutcomeBlackjack BlackjackHandOutcome = "blackjack"
)

var blackjackOutcomeScore = map[BlackjackHandOutcome]int{
	OutcomeBust:      -10,
	OutcomeWin:       20,
	OutcomeTie:       5,
	OutcomeLoss:      0,
	OutcomeBlackjack: 30,
}

// BlackjackChallenge is one hand's deal: a fresh deck, the dealer's
// cards, and each player's starting cards.
type BlackjackChallenge struct {
	Deck         []Card
	deckPos      int
	DealerCards  []Card
	PlayerCards  map[string][]Card
	PlayerStood  map[string]bool
	PlayerBusted map[string]bool
}

func (c *BlackjackChallenge) draw() Card {
	card := c.Deck[c.deckPos]
	c.deckPos++
	return card
}

// BlackjackMove is a player's action for the current hand.
type BlackjackMove struct {
	Action string // "hit" or "stand"
}

type blackjackVariant struct{}

func init() { register(TypeBlackjack, blackjackVariant{}) }

func (blackjackVariant) MaxRounds() int { return 5 }

func (blackjackVariant) InitialChallenge(round int, players []string, rng *rand.Rand) any {
	deck := freshDeck(rng)
	c := &BlackjackChallenge{
		Deck:         deck,
		PlayerCards:  make(map[string][]Card, len(players)),
		PlayerStood:  make(map[string]bool, len(players)),
		PlayerBusted: make(map[string]bool, len(players)),
	}
	c.DealerCards = []Card{c.draw(), c.draw()}
	for _, p := range players {
		c.PlayerCards[p] = []Card{c.draw(), c.draw()}
	}
	return c
}

// ValidateMove implements hit/stand. Unlike the other three variants,
// blackjack allows multiple hits per hand until the player stands or
// busts, so the engine calls ValidateMove repeatedly within one round
// rather than once.
func (blackjackVariant) ValidateMove(player string, move any, challenge any) (int, error) {
	m, ok := move.(BlackjackMove)
	if !ok {
		return 0, errors.Errorf("blackjack: move has wrong type %T", move)
	}
	c, ok := challenge.(*BlackjackChallenge)
	if !ok {
		return 0, errors.Errorf("blackjack: challenge has wrong type %T", challenge)
	}
	if c.PlayerStood[player] || c.PlayerBusted[player] {
		return 0, errors.New("blackjack: hand already concluded for player")
	}

	switch m.Action {
	case "stand":
		c.PlayerStood[player] = true
		return 0, nil
	case "hit":
		c.PlayerCards[player] = append(c.PlayerCards[player], c.draw())
		if HandTotal(c.PlayerCards[player]) > 21 {
			c.PlayerBusted[player] = true
		}
		return 0, nil
	default:
		return 0, errors.Errorf("blackjack: unknown action %q", m.Action)
	}
}

func (blackjackVariant) AutoMove(player string, challenge any, rng *rand.Rand) any {
	c, ok := challenge.(*BlackjackChallenge)
	if !ok {
		return BlackjackMove{Action: "stand"}
	}
	// Deterministic basic strategy stand-in: hit below 17, else stand.
	if HandTotal(c.PlayerCards[player]) < 17 {
		return BlackjackMove{Action: "hit"}
	}
	return BlackjackMove{Action: "stand"}
}

// ResolveHand plays out the dealer's hand (draw to 17+) and returns
// each player's score delta for this hand. Called by the engine once
// every player has stood or busted.
func ResolveHand(c *BlackjackChallenge, players []string) map[string]int {
	for HandTotal(c.DealerCards) < 17 {
		c.DealerCards = append(c.DealerCards, c.draw())
	}
	dealerTotal := HandTotal(c.DealerCards)
	dealerBust := dealerTotal > 21
	dealerBJ := isBlackjack(c.DealerCards)

	deltas := make(map[string]int, len(players))
	for _, p := range players {
		cards := c.PlayerCards[p]
		total := HandTotal(cards)

		var outcome BlackjackHandOutcome
		switch {
		case c.PlayerBusted[p] || total > 21:
			outcome = OutcomeBust
		case isBlackjack(cards) && !dealerBJ:
			outcome = OutcomeBlackjack
		case dealerBust:
			outcome = OutcomeWin
		case total > dealerTotal:
			outcome = OutcomeWin
		case total == dealerTotal:
			outcome = OutcomeTie
		default:
			outcome = OutcomeLoss
		}
		deltas[p] = blackjackOutcomeScore[outcome]
	}
	return deltas
}

func (blackjackVariant) FinalRanking(g *Game) []string {
	order := g.JoinOrder()
	sort.SliceStable(order, func(i, j int) bool {
		return g.Players[order[i]].Score > g.Players[order[j]].Score
	})
	return order
}
