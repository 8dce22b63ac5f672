// internal/game/resolve.go
//
// Round resolution.
// Given both plays for the current round, compares the hidden attribute,
// awards points (1 + accumulated carry) to a decisive winner or grows the
// carry pot on a tie, and checks for match and series end — including the
// mercy rule, which ends a match early once the trailing player cannot
// mathematically catch up.

package game

import "github.com/thirdedge/go-server/internal/cards"

// scoreRound computes a single round's outcome. Deterministic: the same
// cards, attribute index, and carry always produce the same result.
func scoreRound(p1, p2 cards.Card, attr, carry int) (winner string, pts, newCarry int) {
	p1v := p1.Attrs[attr]
	p2v := p2.Attrs[attr]
	pts = 1 + carry
	switch {
	case p1v > p2v:
		return "p1", pts, 0
	case p2v > p1v:
		return "p2", pts, 0
	default:
		return "tie", pts, carry + 1
	}
}

// resolveRound resolves the current round of g in place. Both play slots must
// be populated. Appends the RoundResult, advances the round counter, clears
// both plays, and applies match/series end transitions.
func resolveRound(g *Game) error {
	m := &g.Match
	if m.P1Play == "" || m.P2Play == "" {
		return Reject(ErrInternal, "round_not_ready")
	}
	if m.Seq == nil || m.Round >= len(m.Seq) {
		return Reject(ErrInternal, "sequence_exhausted")
	}

	p1Card, ok1 := cards.ByID(m.P1Play)
	p2Card, ok2 := cards.ByID(m.P2Play)
	if !ok1 || !ok2 {
		return Reject(ErrInternal, "unknown_card")
	}

	attr := m.Seq[m.Round]
	winner, pts, newCarry := scoreRound(p1Card, p2Card, attr, m.Carry)

	switch winner {
	case "p1":
		m.Score[0] += pts
	case "p2":
		m.Score[1] += pts
	}

	m.History = append(m.History, RoundResult{
		Round:    m.Round,
		Attr:     attr,
		P1CardID: m.P1Play,
		P2CardID: m.P2Play,
		P1Attrs:  p1Card.Attrs,
		P2Attrs:  p2Card.Attrs,
		P1V:      p1Card.Attrs[attr],
		P2V:      p2Card.Attrs[attr],
		Winner:   winner,
		Pts:      pts,
	})
	m.Carry = newCarry
	m.Round++
	m.P1Play = ""
	m.P2Play = ""

	if matchOver(m) {
		endMatch(g)
	}
	return nil
}

// matchOver reports whether the match has ended: all rounds resolved, or the
// mercy rule — the gap exceeds every point still reachable (remaining rounds
// plus the live carry pot).
func matchOver(m *Match) bool {
	if m.Round >= RoundsPerMatch {
		return true
	}
	rem := RoundsPerMatch - m.Round
	return m.Score[0] > m.Score[1]+rem+m.Carry ||
		m.Score[1] > m.Score[0]+rem+m.Carry
}

// endMatch credits the series score and moves the game to match_end, or to
// series_end once a player reaches the series target. A tied final score
// awards neither player a series point.
func endMatch(g *Game) {
	switch {
	case g.Match.Score[0] > g.Match.Score[1]:
		g.SeriesScore[0]++
	case g.Match.Score[1] > g.Match.Score[0]:
		g.SeriesScore[1]++
	}
	if g.SeriesScore[0] >= SeriesTarget || g.SeriesScore[1] >= SeriesTarget {
		g.Status = StatusSeriesEnd
	} else {
		g.Status = StatusMatchEnd
	}
}
