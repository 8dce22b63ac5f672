package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestViewForRejectsStrangers(t *testing.T) {
	g := twoPlayerGame(t)
	_, err := ViewFor(g, "p_carol")
	assert.ErrorIs(t, err, ErrForbidden)
}

func TestViewHidesOpponentInformation(t *testing.T) {
	p1Hand := universeIDs(t, 0, 9)
	p2Hand := universeIDs(t, 12, 9)
	g := startMatch(t, p1Hand, p2Hand)

	// Resolve two rounds so history and counts have content.
	mustApply(t, g, alice, PlayAction{Card: "c0"})
	mustApply(t, g, bob, PlayAction{Card: "c12"})
	mustApply(t, g, alice, PlayAction{Card: "c1"})
	mustApply(t, g, bob, PlayAction{Card: "c13"})

	// p1 queues a play for round three.
	mustApply(t, g, alice, PlayAction{Card: "c2"})

	v, err := ViewFor(g, alice)
	require.NoError(t, err)

	assert.Equal(t, 1, v.PlayerNum)
	assert.True(t, v.OpponentJoined)
	assert.Equal(t, 2, v.Round)
	assert.Len(t, v.History, 2)
	assert.Equal(t, p1Hand, v.MyHand)
	assert.True(t, v.MyPlayReady)
	assert.False(t, v.OpponentPlayReady)
	assert.Equal(t, 7, v.OpponentCardsLeft, "nine minus two resolved plays")

	// The serialized view carries no opponent cards and no hidden sequence.
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	body := string(raw)
	assert.NotContains(t, body, `"seq"`)
	for _, id := range p2Hand[2:] {
		assert.NotContains(t, body, `"`+id+`"`, "unplayed opponent card leaked")
	}

	// The opposing view is symmetric.
	v2, err := ViewFor(g, bob)
	require.NoError(t, err)
	assert.Equal(t, 2, v2.PlayerNum)
	assert.Equal(t, p2Hand, v2.MyHand)
	assert.False(t, v2.MyPlayReady)
	assert.True(t, v2.OpponentPlayReady)
	assert.Equal(t, 7, v2.OpponentCardsLeft)
}

func TestViewBeforeHandsReportsFullOpponentCount(t *testing.T) {
	g := twoPlayerGame(t)
	v, err := ViewFor(g, alice)
	require.NoError(t, err)
	assert.Equal(t, HandSize, v.OpponentCardsLeft)
	assert.False(t, v.MyRosterReady)
	assert.False(t, v.OpponentRosterReady)
	assert.NotNil(t, v.History)
	assert.Empty(t, v.History)
}
