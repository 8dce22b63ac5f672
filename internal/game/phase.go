// internal/game/phase.go
//
// Phase state machine.
// Legal forward transitions, each triggered by exactly one operation:
//
//   waiting --join--> roster --both rosters--> hand --both hands--> playing
//   playing --9 rounds or mercy rule--> match_end --next_match--> hand
//   playing --series decided--> series_end (terminal)
//
// An action whose required source status does not match the game's current
// status is rejected, never silently ignored. There are no backward
// transitions.

package game

// ActionType names the player-submitted actions the dispatcher accepts.
type ActionType string

const (
	ActionRoster    ActionType = "roster"
	ActionHand      ActionType = "hand"
	ActionPlay      ActionType = "play"
	ActionNextMatch ActionType = "next_match"
)

// requiredStatus is the single source phase each action is legal in.
var requiredStatus = map[ActionType]Status{
	ActionRoster:    StatusRoster,
	ActionHand:      StatusHand,
	ActionPlay:      StatusPlaying,
	ActionNextMatch: StatusMatchEnd,
}

// phaseReason maps an action to its stable wrong-phase reason code.
var phaseReason = map[ActionType]string{
	ActionRoster:    "not_in_roster_phase",
	ActionHand:      "not_in_hand_phase",
	ActionPlay:      "not_in_playing_phase",
	ActionNextMatch: "not_in_match_end_phase",
}

// CheckPhase validates that t is legal in g's current status.
func CheckPhase(g *Game, t ActionType) error {
	want, ok := requiredStatus[t]
	if !ok {
		return Reject(ErrBadPayload, "unsupported_action")
	}
	if g.Status != want {
		return Reject(ErrWrongPhase, phaseReason[t])
	}
	return nil
}
