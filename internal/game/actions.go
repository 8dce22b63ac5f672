// internal/game/actions.go
//
// Action application.
// Apply is the single entry point that validates an actor, checks the phase
// machine, validates the typed payload against current state, and mutates the
// snapshot. Each action type is its own variant with a strongly-typed payload;
// there is no stringly-typed payload branching past the decode boundary.
//
// Apply works on a private snapshot (see Game.Clone); persistence and the
// compare-and-swap save are the dispatch package's concern.

package game

import "github.com/thirdedge/go-server/internal/cards"

// Action is a player-submitted action: one variant per action type.
type Action interface {
	Type() ActionType
}

// RosterAction submits a player's 12-card series roster.
type RosterAction struct {
	Cards []string
}

func (RosterAction) Type() ActionType { return ActionRoster }

// HandAction submits a player's 9-card hand for the current match.
type HandAction struct {
	Cards []string
}

func (HandAction) Type() ActionType { return ActionHand }

// PlayAction reveals one card for the current round.
type PlayAction struct {
	Card string
}

func (PlayAction) Type() ActionType { return ActionPlay }

// NextMatchAction advances the series to the next match after match_end.
type NextMatchAction struct{}

func (NextMatchAction) Type() ActionType { return ActionNextMatch }

// Join adds the second player to a waiting game and opens the roster phase.
func (g *Game) Join(p Player) error {
	if g.Status != StatusWaiting {
		return Reject(ErrWrongPhase, "room_not_joinable")
	}
	p2 := p
	g.P2 = &p2
	g.Status = StatusRoster
	return nil
}

// Apply validates and applies act for playerID, mutating g in place.
// Returns (true, nil) when g changed, (false, nil) when the action was an
// idempotent duplicate safely absorbed, or (false, err) on rejection — in
// which case g must be discarded, not saved.
func Apply(g *Game, playerID string, act Action, rng Rand) (bool, error) {
	num := g.PlayerNum(playerID)
	if num == 0 {
		return false, Reject(ErrForbidden, "not_in_game")
	}
	if err := CheckPhase(g, act.Type()); err != nil {
		return false, err
	}

	switch a := act.(type) {
	case RosterAction:
		if err := g.applyRoster(num, a); err != nil {
			return false, err
		}
		return true, nil
	case HandAction:
		if err := g.applyHand(num, a, rng); err != nil {
			return false, err
		}
		return true, nil
	case PlayAction:
		return g.applyPlay(num, a)
	case NextMatchAction:
		g.nextMatch()
		return true, nil
	default:
		return false, Reject(ErrBadPayload, "unsupported_action")
	}
}

// applyRoster stores a validated 12-card roster and, once both rosters are
// present, advances to the hand phase. Resubmission while still in the roster
// phase overwrites the previous draft.
func (g *Game) applyRoster(num int, a RosterAction) error {
	if !cards.ValidateIDs(a.Cards, RosterSize) || hasDuplicate(a.Cards) {
		return Reject(ErrBadPayload, "invalid_roster")
	}
	m := &g.Match
	if num == 1 {
		m.P1Roster = append([]string(nil), a.Cards...)
	} else {
		m.P2Roster = append([]string(nil), a.Cards...)
	}
	if m.P1Roster != nil && m.P2Roster != nil {
		g.Status = StatusHand
	}
	return nil
}

// applyHand stores a validated 9-card hand drawn from the caller's roster.
// When the second hand lands the match starts: the hidden sequence is
// generated and the round state zeroed.
func (g *Game) applyHand(num int, a HandAction, rng Rand) error {
	if !cards.ValidateIDs(a.Cards, HandSize) || hasDuplicate(a.Cards) {
		return Reject(ErrBadPayload, "invalid_hand")
	}
	m := &g.Match
	roster := m.P1Roster
	if num == 2 {
		roster = m.P2Roster
	}
	if roster == nil {
		return Reject(ErrBadPayload, "roster_not_set")
	}
	owned := make(map[string]bool, len(roster))
	for _, id := range roster {
		owned[id] = true
	}
	for _, id := range a.Cards {
		if !owned[id] {
			return Reject(ErrBadPayload, "card_not_in_roster")
		}
	}

	if num == 1 {
		m.P1Hand = append([]string(nil), a.Cards...)
	} else {
		m.P2Hand = append([]string(nil), a.Cards...)
	}

	if m.P1Hand != nil && m.P2Hand != nil {
		g.Status = StatusPlaying
		m.Seq = GenSeq(rng)
		m.Round = 0
		m.Score = [2]int{}
		m.Carry = 0
		m.History = nil
		m.P1Play = ""
		m.P2Play = ""
	}
	return nil
}

// applyPlay records the caller's card for the current round and, if the
// opponent has already played, resolves the round. A retried submission of
// the identical card — whether the play slot still holds it or the round just
// resolved with it — is absorbed as a no-op rather than rejected.
func (g *Game) applyPlay(num int, a PlayAction) (bool, error) {
	m := &g.Match
	hand := m.P1Hand
	myPlay, otherPlay := m.P1Play, m.P2Play
	if num == 2 {
		hand = m.P2Hand
		myPlay, otherPlay = m.P2Play, m.P1Play
	}

	inHand := false
	for _, id := range hand {
		if id == a.Card {
			inHand = true
			break
		}
	}
	if a.Card == "" || !inHand {
		return false, Reject(ErrBadPayload, "card_not_in_hand")
	}

	if myPlay != "" {
		if myPlay == a.Card {
			return false, nil // duplicate submit, already pending
		}
		return false, Reject(ErrBadPayload, "already_played_this_round")
	}

	for _, h := range m.History {
		prev := h.P1CardID
		if num == 2 {
			prev = h.P2CardID
		}
		if prev == a.Card {
			if h.Round == m.Round-1 {
				return false, nil // duplicate submit, round already resolved
			}
			return false, Reject(ErrBadPayload, "card_already_played")
		}
	}

	if num == 1 {
		m.P1Play = a.Card
	} else {
		m.P2Play = a.Card
	}

	// Second writer to land resolves the round.
	if otherPlay != "" {
		if err := resolveRound(g); err != nil {
			return false, err
		}
	}
	return true, nil
}

// nextMatch resets the match sub-state for the next match in the series.
// Rosters are retained; hands, plays, history, and the sequence are cleared.
func (g *Game) nextMatch() {
	g.MatchNum++
	g.Status = StatusHand
	m := &g.Match
	m.Seq = nil
	m.Round = 0
	m.Score = [2]int{}
	m.Carry = 0
	m.History = nil
	m.P1Hand = nil
	m.P2Hand = nil
	m.P1Play = ""
	m.P2Play = ""
}

// hasDuplicate reports whether ids contains a repeated entry.
func hasDuplicate(ids []string) bool {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			return true
		}
		seen[id] = true
	}
	return false
}
