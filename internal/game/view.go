// internal/game/view.go
//
// Player-scoped projection of a game.
// The view never exposes the opponent's roster or hand contents, nor the
// hidden attribute sequence — only per-round attributes already revealed
// through resolved history entries, readiness flags, and the opponent's
// remaining card count.

package game

// PlayerView is the read-only state a single player may see.
type PlayerView struct {
	Status      Status `json:"status"`
	PlayerNum   int    `json:"playerNum"`
	SeriesScore [2]int `json:"seriesScore"`
	MatchNum    int    `json:"matchNum"`

	OpponentJoined bool `json:"opponentJoined"`

	Round      int           `json:"round"`
	MatchScore [2]int        `json:"matchScore"`
	Carry      int           `json:"carry"`
	History    []RoundResult `json:"history"`

	MyRosterReady       bool `json:"myRosterReady"`
	OpponentRosterReady bool `json:"opponentRosterReady"`

	MyHandReady       bool `json:"myHandReady"`
	OpponentHandReady bool `json:"opponentHandReady"`

	MyRoster []string `json:"myRoster,omitempty"`
	MyHand   []string `json:"myHand,omitempty"`

	MyPlayReady       bool `json:"myPlayReady"`
	OpponentPlayReady bool `json:"opponentPlayReady"`

	OpponentCardsLeft int `json:"opponentCardsLeft"`
}

// ViewFor builds the projection of g for playerID.
// Fails with ErrForbidden for non-participants.
func ViewFor(g *Game, playerID string) (*PlayerView, error) {
	num := g.PlayerNum(playerID)
	if num == 0 {
		return nil, Reject(ErrForbidden, "not_in_game")
	}

	m := &g.Match
	v := &PlayerView{
		Status:         g.Status,
		PlayerNum:      num,
		SeriesScore:    g.SeriesScore,
		MatchNum:       g.MatchNum,
		OpponentJoined: g.P2 != nil,
		Round:          m.Round,
		MatchScore:     m.Score,
		Carry:          m.Carry,
		History:        append([]RoundResult(nil), m.History...),
	}
	if v.History == nil {
		v.History = []RoundResult{}
	}

	if num == 1 {
		v.MyRosterReady = m.P1Roster != nil
		v.OpponentRosterReady = m.P2Roster != nil
		v.MyHandReady = m.P1Hand != nil
		v.OpponentHandReady = m.P2Hand != nil
		v.MyRoster = append([]string(nil), m.P1Roster...)
		v.MyHand = append([]string(nil), m.P1Hand...)
		v.MyPlayReady = m.P1Play != ""
		v.OpponentPlayReady = m.P2Play != ""
		v.OpponentCardsLeft = cardsLeft(m.P2Hand, m.History, 2)
	} else {
		v.MyRosterReady = m.P2Roster != nil
		v.OpponentRosterReady = m.P1Roster != nil
		v.MyHandReady = m.P2Hand != nil
		v.OpponentHandReady = m.P1Hand != nil
		v.MyRoster = append([]string(nil), m.P2Roster...)
		v.MyHand = append([]string(nil), m.P2Hand...)
		v.MyPlayReady = m.P2Play != ""
		v.OpponentPlayReady = m.P1Play != ""
		v.OpponentCardsLeft = cardsLeft(m.P1Hand, m.History, 1)
	}
	return v, nil
}

// cardsLeft counts the opponent's unplayed hand cards — hand size minus plays
// recorded in resolved history. Before the hand lands the full size is
// reported.
func cardsLeft(hand []string, history []RoundResult, num int) int {
	if hand == nil {
		return HandSize
	}
	played := make(map[string]bool, len(history))
	for _, h := range history {
		if num == 1 {
			played[h.P1CardID] = true
		} else {
			played[h.P2CardID] = true
		}
	}
	return len(hand) - len(played)
}
