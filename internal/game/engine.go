package game

import (
	"time"

	"github.com/pkg/errors"
)

var (
	ErrGameNotActive     = errors.New("game: not active")
	ErrNotParticipant    = errors.New("game: player is not a participant")
	ErrMoveAlreadyInRound = errors.New("game: move already submitted for this round")
)

// StartRound advances g into round+1, building that round's challenge
// from the variant and a deterministic per-round RNG. Called once on
// learning->active (round 1) and again every time a round resolves
// and MaxRounds has not been reached.
func StartRound(g *Game, now time.Time, roundDuration time.Duration) error {
	v, ok := Variants[g.Type]
	if !ok {
		return errors.Errorf("game: unknown type %q", g.Type)
	}
	g.Status = StatusActive
	g.RoundNumber++
	rng := NewRNG(RoundSeed(g.Seed, g.RoundNumber))
	g.CurrentChallenge = v.InitialChallenge(g.RoundNumber, g.JoinOrder(), rng)
	g.RoundDeadline = now.Add(roundDuration)
	for _, ps := range g.Players {
		ps.Status = PlayerActive
	}
	return nil
}

// SubmitMove implements the submit_move(game_id, player, move) ->
// MoveResult contract.
func SubmitMove(g *Game, player string, move any, now time.Time) (MoveResult, error) {
	if g.Status != StatusActive {
		return MoveResult{}, ErrGameNotActive
	}
	ps, ok := g.Players[player]
	if !ok {
		return MoveResult{}, ErrNotParticipant
	}

	v := Variants[g.Type]
	multiMovePerRound := g.Type == TypeBlackjack || g.Type == TypeClaw
	if !multiMovePerRound && ps.Status == PlayerMoved {
		return MoveResult{}, ErrMoveAlreadyInRound
	}

	delta, err := v.ValidateMove(player, move, g.CurrentChallenge)
	if err != nil {
		return MoveResult{}, err
	}
	ps.Score += delta
	ps.Status = PlayerMoved
	if c, ok := g.CurrentChallenge.(*BlackjackChallenge); ok {
		switch {
		case c.PlayerBusted[player]:
			ps.Status = PlayerBusted
		case c.PlayerStood[player]:
			ps.Status = PlayerStood
		}
	}
	g.MoveLog = append(g.MoveLog, RecordedMove{Player: player, Round: g.RoundNumber, Move: move, Auto: false, At: now})

	resolved := roundResolved(g)
	return MoveResult{Player: player, NewScore: ps.Score, RoundResolved: resolved}, nil
}

// roundResolved reports whether every active player has moved (or, for
// Blackjack, stood or busted; or, for Claw, exhausted every grab).
func roundResolved(g *Game) bool {
	switch g.Type {
	case TypeBlackjack:
		c, ok := g.CurrentChallenge.(*BlackjackChallenge)
		if !ok {
			return false
		}
		for p := range g.Players {
			if !c.PlayerStood[p] && !c.PlayerBusted[p] {
				return false
			}
		}
		return true
	case TypeClaw:
		c, ok := g.CurrentChallenge.(*ClawChallenge)
		if !ok {
			return false
		}
		for p := range g.Players {
			grab, ok := c.grabs[p]
			if !ok || grab.attemptsUsed < c.AttemptsPerPlayer {
				return false
			}
		}
		return true
	}
	for _, ps := range g.Players {
		if ps.Status != PlayerMoved {
			return false
		}
	}
	return true
}

// ApplyAbsenteeAutoMoves fills in AutoMove for every player who has
// not yet acted this round: absent players receive an auto_move drawn
// from a pre-registered seed so state stays deterministic regardless
// of tardiness. Called when a round deadline fires with some players
// still unmoved.
func ApplyAbsenteeAutoMoves(g *Game, now time.Time) error {
	v := Variants[g.Type]
	rng := NewRNG(RoundSeed(g.Seed, g.RoundNumber))

	if g.Type == TypeBlackjack {
		c, ok := g.CurrentChallenge.(*BlackjackChallenge)
		if !ok {
			return errors.New("game: blackjack challenge missing")
		}
		for _, p := range g.JoinOrder() {
			for !c.PlayerStood[p] && !c.PlayerBusted[p] {
				move := v.AutoMove(p, g.CurrentChallenge, rng)
				if _, err := SubmitMove(g, p, move, now); err != nil {
					return err
				}
				g.MoveLog[len(g.MoveLog)-1].Auto = true
				if bm, ok := move.(BlackjackMove); ok && bm.Action == "stand" {
					break
				}
			}
		}
		return nil
	}

	if g.Type == TypeClaw {
		c, ok := g.CurrentChallenge.(*ClawChallenge)
		if !ok {
			return errors.New("game: claw challenge missing")
		}
		for _, p := range g.JoinOrder() {
			for c.grabs[p] == nil || c.grabs[p].attemptsUsed < c.AttemptsPerPlayer {
				move := v.AutoMove(p, g.CurrentChallenge, rng)
				if _, err := SubmitMove(g, p, move, now); err != nil {
					return err
				}
				g.MoveLog[len(g.MoveLog)-1].Auto = true
			}
		}
		return nil
	}

	for _, p := range g.JoinOrder() {
		if g.Players[p].Status == PlayerMoved {
			continue
		}
		move := v.AutoMove(p, g.CurrentChallenge, rng)
		if _, err := SubmitMove(g, p, move, now); err != nil {
			return err
		}
		g.MoveLog[len(g.MoveLog)-1].Auto = true
	}
	return nil
}

// FinishRound resolves the current round's aggregate scoring (only
// Blackjack needs this — dealer play and hand settlement happen once per
// hand, not per move) and reports whether the game has reached its final
// round.
func FinishRound(g *Game) (finished bool, err error) {
	if g.Type == TypeBlackjack {
		c, ok := g.CurrentChallenge.(*BlackjackChallenge)
		if !ok {
			return false, errors.New("game: blackjack challenge missing")
		}
		deltas := ResolveHand(c, g.JoinOrder())
		for p, d := range deltas {
			g.Players[p].Score += d
		}
	}
	if g.RoundNumber >= g.MaxRounds {
		g.Status = StatusFinished
		g.Winners = Variants[g.Type].FinalRanking(g)
		return true, nil
	}
	return false, nil
}
