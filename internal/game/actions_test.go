package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/thirdedge/go-server/internal/cards"
)

const (
	alice = "p_alice"
	bob   = "p_bob"
)

// twoPlayerGame returns a game in the roster phase with both players seated.
func twoPlayerGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("TEST", Player{ID: alice, Name: "Player 1"})
	require.NoError(t, g.Join(Player{ID: bob, Name: "Player 2"}))
	require.Equal(t, StatusRoster, g.Status)
	return g
}

// universeIDs returns n card ids from the universe starting at offset from.
func universeIDs(t *testing.T, from, n int) []string {
	t.Helper()
	all := cards.All()
	require.LessOrEqual(t, from+n, len(all))
	ids := make([]string, 0, n)
	for _, c := range all[from : from+n] {
		ids = append(ids, c.ID)
	}
	return ids
}

// mustApply applies act and requires a state change.
func mustApply(t *testing.T, g *Game, playerID string, act Action) {
	t.Helper()
	changed, err := Apply(g, playerID, act, NewSeededRand(1))
	require.NoError(t, err)
	require.True(t, changed)
}

// startMatch drives a fresh two-player game to the playing phase and installs
// a known attribute sequence.
func startMatch(t *testing.T, p1Hand, p2Hand []string) *Game {
	t.Helper()
	g := twoPlayerGame(t)
	mustApply(t, g, alice, RosterAction{Cards: universeIDs(t, 0, 12)})
	mustApply(t, g, bob, RosterAction{Cards: universeIDs(t, 12, 12)})
	require.Equal(t, StatusHand, g.Status)

	mustApply(t, g, alice, HandAction{Cards: p1Hand})
	mustApply(t, g, bob, HandAction{Cards: p2Hand})
	require.Equal(t, StatusPlaying, g.Status)

	// Seq is private to the server; tests fix it for scripted rounds.
	g.Match.Seq = []int{0, 0, 0, 1, 1, 1, 2, 2, 2}
	return g
}

func TestJoinOnlyInWaiting(t *testing.T) {
	g := twoPlayerGame(t)
	err := g.Join(Player{ID: "p_carol", Name: "Player 2"})
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestApplyRejectsStrangers(t *testing.T) {
	g := twoPlayerGame(t)
	_, err := Apply(g, "p_carol", RosterAction{Cards: universeIDs(t, 0, 12)}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Equal(t, "not_in_game", ReasonCode(err))
}

func TestRosterValidation(t *testing.T) {
	g := twoPlayerGame(t)

	// Wrong cardinality.
	_, err := Apply(g, alice, RosterAction{Cards: universeIDs(t, 0, 9)}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)

	// Out-of-universe id.
	bad := universeIDs(t, 0, 11)
	bad = append(bad, "c999")
	_, err = Apply(g, alice, RosterAction{Cards: bad}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)

	// Duplicate id.
	dup := universeIDs(t, 0, 11)
	dup = append(dup, dup[0])
	_, err = Apply(g, alice, RosterAction{Cards: dup}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)
	assert.Equal(t, "invalid_roster", ReasonCode(err))

	// One valid roster does not advance the phase.
	mustApply(t, g, alice, RosterAction{Cards: universeIDs(t, 0, 12)})
	assert.Equal(t, StatusRoster, g.Status)

	// Second roster opens the hand phase.
	mustApply(t, g, bob, RosterAction{Cards: universeIDs(t, 12, 12)})
	assert.Equal(t, StatusHand, g.Status)
}

func TestHandValidation(t *testing.T) {
	g := twoPlayerGame(t)
	mustApply(t, g, alice, RosterAction{Cards: universeIDs(t, 0, 12)})
	mustApply(t, g, bob, RosterAction{Cards: universeIDs(t, 12, 12)})

	// Hand cards must come from the caller's own roster.
	_, err := Apply(g, alice, HandAction{Cards: universeIDs(t, 12, 9)}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)
	assert.Equal(t, "card_not_in_roster", ReasonCode(err))

	// Wrong cardinality.
	_, err = Apply(g, alice, HandAction{Cards: universeIDs(t, 0, 12)}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)

	mustApply(t, g, alice, HandAction{Cards: universeIDs(t, 0, 9)})
	assert.Equal(t, StatusHand, g.Status, "one hand does not start the match")
	assert.Nil(t, g.Match.Seq)

	mustApply(t, g, bob, HandAction{Cards: universeIDs(t, 12, 9)})
	assert.Equal(t, StatusPlaying, g.Status)
	require.NotNil(t, g.Match.Seq)
	assert.Len(t, g.Match.Seq, RoundsPerMatch)
	assert.Equal(t, 0, g.Match.Round)
	assert.Empty(t, g.Match.History)
}

func TestFullMatchNineRounds(t *testing.T) {
	// Scripted so the lead never exceeds the catchable gap: p1 takes rounds
	// 0,2,4,6,8 and p2 takes 1,3,5,7 for a 5-4 finish.
	p1Hand := []string{"c0", "c8", "c3", "c4", "c2", "c6", "c1", "c9", "c10"}
	p2Hand := []string{"c14", "c15", "c16", "c18", "c12", "c17", "c13", "c19", "c20"}
	g := startMatch(t, p1Hand, p2Hand)

	wantWinners := []string{"p1", "p2", "p1", "p2", "p1", "p2", "p1", "p2", "p1"}
	for i := 0; i < RoundsPerMatch; i++ {
		mustApply(t, g, alice, PlayAction{Card: p1Hand[i]})
		assert.Equal(t, i, g.Match.Round, "round does not advance on one play")
		mustApply(t, g, bob, PlayAction{Card: p2Hand[i]})

		require.Len(t, g.Match.History, i+1)
		assert.Equal(t, i+1, g.Match.Round, "history length tracks round")
		last := g.Match.History[i]
		assert.Equal(t, wantWinners[i], last.Winner, "round %d", i)
		assert.Equal(t, 1, last.Pts)
		assert.Empty(t, g.Match.P1Play)
		assert.Empty(t, g.Match.P2Play)
	}

	assert.Equal(t, [2]int{5, 4}, g.Match.Score)
	assert.Equal(t, [2]int{1, 0}, g.SeriesScore)
	assert.Equal(t, StatusMatchEnd, g.Status)
}

func TestMercyRuleEndsMatchEarly(t *testing.T) {
	// p1 wins every round; after round five the 5-0 lead beats rem=4.
	p1Hand := []string{"c0", "c3", "c9", "c2", "c5", "c11", "c1", "c4", "c10"}
	p2Hand := []string{"c14", "c16", "c20", "c12", "c19", "c15", "c13", "c18", "c17"}
	g := startMatch(t, p1Hand, p2Hand)

	for i := 0; i < 5; i++ {
		mustApply(t, g, alice, PlayAction{Card: p1Hand[i]})
		mustApply(t, g, bob, PlayAction{Card: p2Hand[i]})
	}

	assert.Equal(t, [2]int{5, 0}, g.Match.Score)
	assert.Equal(t, 5, g.Match.Round)
	assert.Equal(t, StatusMatchEnd, g.Status, "mercy rule fires with rounds remaining")
	assert.Equal(t, [2]int{1, 0}, g.SeriesScore)

	// No further plays are accepted.
	_, err := Apply(g, alice, PlayAction{Card: p1Hand[5]}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestTieGrowsCarryIntoNextDecisiveRound(t *testing.T) {
	g := twoPlayerGame(t)
	// Overlapping rosters are legal; both draft the same twelve cards.
	mustApply(t, g, alice, RosterAction{Cards: universeIDs(t, 0, 12)})
	mustApply(t, g, bob, RosterAction{Cards: universeIDs(t, 0, 12)})
	mustApply(t, g, alice, HandAction{Cards: universeIDs(t, 0, 9)})
	mustApply(t, g, bob, HandAction{Cards: universeIDs(t, 0, 9)})
	g.Match.Seq = []int{0, 0, 0, 1, 1, 1, 2, 2, 2}

	// Identical cards tie: pot grows, nobody scores.
	mustApply(t, g, alice, PlayAction{Card: "c0"})
	mustApply(t, g, bob, PlayAction{Card: "c0"})
	assert.Equal(t, [2]int{0, 0}, g.Match.Score)
	assert.Equal(t, 1, g.Match.Carry)
	assert.Equal(t, "tie", g.Match.History[0].Winner)

	// Decisive round claims 1 + carry. c3=(18,6,3) beats c5=(3,18,6) on attr 0.
	mustApply(t, g, alice, PlayAction{Card: "c3"})
	mustApply(t, g, bob, PlayAction{Card: "c5"})
	assert.Equal(t, [2]int{2, 0}, g.Match.Score)
	assert.Equal(t, 0, g.Match.Carry)
	assert.Equal(t, 2, g.Match.History[1].Pts)
}

func TestPlayValidation(t *testing.T) {
	p1Hand := universeIDs(t, 0, 9)
	p2Hand := universeIDs(t, 12, 9)
	g := startMatch(t, p1Hand, p2Hand)

	// Not in hand (c11 is in the roster but was not brought into the hand).
	_, err := Apply(g, alice, PlayAction{Card: "c11"}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)
	assert.Equal(t, "card_not_in_hand", ReasonCode(err))

	// Empty card id.
	_, err = Apply(g, alice, PlayAction{}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)

	mustApply(t, g, alice, PlayAction{Card: "c0"})

	// A different card in the same round is a re-submission, not a swap.
	_, err = Apply(g, alice, PlayAction{Card: "c1"}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)
	assert.Equal(t, "already_played_this_round", ReasonCode(err))
}

func TestDuplicatePlayIsIdempotent(t *testing.T) {
	p1Hand := universeIDs(t, 0, 9)
	p2Hand := universeIDs(t, 12, 9)
	g := startMatch(t, p1Hand, p2Hand)

	mustApply(t, g, alice, PlayAction{Card: "c0"})

	// Identical retry while the play is still pending: absorbed, no change.
	changed, err := Apply(g, alice, PlayAction{Card: "c0"}, NewSeededRand(1))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, "c0", g.Match.P1Play)

	mustApply(t, g, bob, PlayAction{Card: "c12"})
	require.Len(t, g.Match.History, 1)
	score := g.Match.Score

	// Identical retry after the round just resolved: still absorbed.
	changed, err = Apply(g, alice, PlayAction{Card: "c0"}, NewSeededRand(1))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Len(t, g.Match.History, 1, "no double-append")
	assert.Equal(t, score, g.Match.Score, "no double-count")
	assert.Equal(t, 1, g.Match.Round)

	// Replaying the card in a later round is rejected.
	mustApply(t, g, alice, PlayAction{Card: "c1"})
	mustApply(t, g, bob, PlayAction{Card: "c13"})
	_, err = Apply(g, alice, PlayAction{Card: "c0"}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrBadPayload)
	assert.Equal(t, "card_already_played", ReasonCode(err))
}

func TestScoresMonotonicAndHistoryTracksRound(t *testing.T) {
	p1Hand := []string{"c0", "c8", "c3", "c4", "c2", "c6", "c1", "c9", "c10"}
	p2Hand := []string{"c14", "c15", "c16", "c18", "c12", "c17", "c13", "c19", "c20"}
	g := startMatch(t, p1Hand, p2Hand)

	prev := [2]int{}
	for i := 0; i < RoundsPerMatch; i++ {
		mustApply(t, g, alice, PlayAction{Card: p1Hand[i]})
		mustApply(t, g, bob, PlayAction{Card: p2Hand[i]})

		assert.Equal(t, len(g.Match.History), g.Match.Round)
		assert.GreaterOrEqual(t, g.Match.Score[0], prev[0])
		assert.GreaterOrEqual(t, g.Match.Score[1], prev[1])
		assert.GreaterOrEqual(t, g.Match.Carry, 0)
		prev = g.Match.Score
	}
}

func TestNextMatchKeepsRostersAndSeries(t *testing.T) {
	p1Hand := []string{"c0", "c3", "c9", "c2", "c5", "c11", "c1", "c4", "c10"}
	p2Hand := []string{"c14", "c16", "c20", "c12", "c19", "c15", "c13", "c18", "c17"}
	g := startMatch(t, p1Hand, p2Hand)

	for i := 0; i < 5; i++ {
		mustApply(t, g, alice, PlayAction{Card: p1Hand[i]})
		mustApply(t, g, bob, PlayAction{Card: p2Hand[i]})
	}
	require.Equal(t, StatusMatchEnd, g.Status)

	mustApply(t, g, bob, NextMatchAction{})
	assert.Equal(t, 2, g.MatchNum)
	assert.Equal(t, StatusHand, g.Status)
	assert.Equal(t, [2]int{1, 0}, g.SeriesScore)

	// Rosters retained; everything else reset.
	assert.Equal(t, universeIDs(t, 0, 12), g.Match.P1Roster)
	assert.Equal(t, universeIDs(t, 12, 12), g.Match.P2Roster)
	assert.Nil(t, g.Match.Seq)
	assert.Nil(t, g.Match.P1Hand)
	assert.Nil(t, g.Match.P2Hand)
	assert.Empty(t, g.Match.History)
	assert.Equal(t, [2]int{0, 0}, g.Match.Score)
	assert.Equal(t, 0, g.Match.Carry)

	// The opponent's identical click lands in the wrong phase now.
	_, err := Apply(g, alice, NextMatchAction{}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestSeriesEndIsTerminal(t *testing.T) {
	p1Hand := []string{"c0", "c3", "c9", "c2", "c5", "c11", "c1", "c4", "c10"}
	p2Hand := []string{"c14", "c16", "c20", "c12", "c19", "c15", "c13", "c18", "c17"}
	g := startMatch(t, p1Hand, p2Hand)

	playMercyMatch := func() {
		for i := 0; i < 5; i++ {
			mustApply(t, g, alice, PlayAction{Card: p1Hand[i]})
			mustApply(t, g, bob, PlayAction{Card: p2Hand[i]})
		}
	}

	playMercyMatch()
	require.Equal(t, StatusMatchEnd, g.Status)
	mustApply(t, g, alice, NextMatchAction{})

	// Match two, same script.
	mustApply(t, g, alice, HandAction{Cards: p1Hand})
	mustApply(t, g, bob, HandAction{Cards: p2Hand})
	g.Match.Seq = []int{0, 0, 0, 1, 1, 1, 2, 2, 2}
	playMercyMatch()

	assert.Equal(t, [2]int{2, 0}, g.SeriesScore)
	assert.Equal(t, StatusSeriesEnd, g.Status)

	_, err := Apply(g, alice, NextMatchAction{}, NewSeededRand(1))
	assert.ErrorIs(t, err, ErrWrongPhase)
}
