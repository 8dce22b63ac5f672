// internal/game/types.go
//
// Core type definitions for the match engine.
// Defines:
//   - Status: the game's phase (waiting → roster → hand → playing → …).
//   - Player: participant identity.
//   - RoundResult: immutable record of one resolved round.
//   - Match: mutable per-match sub-state (seq, score, carry, hands, plays).
//   - Game: the root aggregate, one per room.

package game

import "time"

const (
	// RosterSize is the number of cards a player drafts for a series.
	RosterSize = 12
	// HandSize is the number of roster cards brought into one match.
	HandSize = 9
	// RoundsPerMatch is the maximum number of rounds in a match.
	RoundsPerMatch = 9
	// SeriesTarget is the number of match wins that decides a series.
	SeriesTarget = 2
)

// Status represents a game's current phase.
// Transitions are strictly forward; see phase.go.
type Status string

const (
	StatusWaiting   Status = "waiting"    // created, second player not yet joined
	StatusRoster    Status = "roster"     // both players drafting 12-card rosters
	StatusHand      Status = "hand"       // both players picking 9-card hands
	StatusPlaying   Status = "playing"    // rounds being played
	StatusMatchEnd  Status = "match_end"  // match decided, series continues
	StatusSeriesEnd Status = "series_end" // series decided (terminal)
)

// Player identifies a participant in a game.
type Player struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// RoundResult records how one round resolved. Appended to Match.History and
// never mutated afterwards.
type RoundResult struct {
	Round    int    `json:"round"`
	Attr     int    `json:"attr"`
	P1CardID string `json:"p1CardId"`
	P2CardID string `json:"p2CardId"`
	P1Attrs  [3]int `json:"p1Attrs"`
	P2Attrs  [3]int `json:"p2Attrs"`
	P1V      int    `json:"p1v"`
	P2V      int    `json:"p2v"`
	Winner   string `json:"winner"` // "p1" | "p2" | "tie"
	Pts      int    `json:"pts"`
}

// Match holds the mutable state of the current match within a series.
// Reset wholly at series start; partially (rosters kept) on next_match.
type Match struct {
	// Seq is the hidden attribute sequence: a random ordering of the multiset
	// {0,0,0,1,1,1,2,2,2}. Generated once when both hands are confirmed and
	// never exposed to clients in full.
	Seq []int `json:"seq,omitempty"`

	Round   int           `json:"round"` // next round to resolve, 0-based
	Score   [2]int        `json:"score"`
	Carry   int           `json:"carry"`
	History []RoundResult `json:"history"`

	P1Roster []string `json:"p1Roster,omitempty"`
	P2Roster []string `json:"p2Roster,omitempty"`

	P1Hand []string `json:"p1Hand,omitempty"`
	P2Hand []string `json:"p2Hand,omitempty"`

	P1Play string `json:"p1Play,omitempty"`
	P2Play string `json:"p2Play,omitempty"`
}

// Game is the root aggregate, one per room code.
type Game struct {
	Code   string `json:"code"`
	Status Status `json:"status"`

	P1 Player  `json:"p1"`
	P2 *Player `json:"p2,omitempty"` // nil until a second player joins

	SeriesScore [2]int `json:"seriesScore"`
	MatchNum    int    `json:"matchNum"` // 1-based

	Match Match `json:"match"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Version is a monotonically incrementing write stamp used by the store
	// for compare-and-swap saves. Zero for a never-saved game.
	Version int64 `json:"version"`
}

// NewGame constructs a fresh game in the waiting phase for its creator.
func NewGame(code string, creator Player) *Game {
	now := time.Now().UTC()
	return &Game{
		Code:      code,
		Status:    StatusWaiting,
		P1:        creator,
		MatchNum:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// PlayerNum maps a player id to 1 or 2, or 0 for non-participants.
func (g *Game) PlayerNum(playerID string) int {
	if g.P1.ID == playerID {
		return 1
	}
	if g.P2 != nil && g.P2.ID == playerID {
		return 2
	}
	return 0
}

// Terminal reports whether the game accepts no further actions.
func (g *Game) Terminal() bool {
	return g.Status == StatusSeriesEnd
}

// Clone returns a deep copy of g. Dispatch applies actions to a clone so a
// failed conditional save never leaves a half-mutated shared snapshot.
func (g *Game) Clone() *Game {
	cp := *g
	if g.P2 != nil {
		p2 := *g.P2
		cp.P2 = &p2
	}
	cp.Match.Seq = append([]int(nil), g.Match.Seq...)
	cp.Match.History = append([]RoundResult(nil), g.Match.History...)
	cp.Match.P1Roster = append([]string(nil), g.Match.P1Roster...)
	cp.Match.P2Roster = append([]string(nil), g.Match.P2Roster...)
	cp.Match.P1Hand = append([]string(nil), g.Match.P1Hand...)
	cp.Match.P2Hand = append([]string(nil), g.Match.P2Hand...)
	return &cp
}
