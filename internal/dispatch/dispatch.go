// internal/dispatch/dispatch.go
//
// Action dispatch against the persistent store.
// The engine (internal/game) mutates snapshots; this package owns the I/O
// around it: load a snapshot, apply the action to a private clone, and issue
// the conditional save. Two players' submissions are expected to race — the
// loser of the compare-and-swap reloads the fresh snapshot and revalidates
// exactly once before giving up with a conflict.
//
// Also owns room-code allocation and player identity minting.

package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/thirdedge/go-server/internal/game"
	"github.com/thirdedge/go-server/internal/store"
)

// codeAlphabet excludes ambiguous characters (no I, O, 0, 1).
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// codeLength is the room code length players share out of band.
const codeLength = 4

// maxCodeAttempts bounds room-code generation retries.
const maxCodeAttempts = 20

// Dispatcher routes game operations through the store with optimistic
// concurrency control.
type Dispatcher struct {
	store store.Store
	rng   game.Rand
}

// New constructs a Dispatcher over the given store and randomness source.
func New(st store.Store, rng game.Rand) *Dispatcher {
	return &Dispatcher{store: st, rng: rng}
}

// Session identifies a player's seat in a room.
type Session struct {
	Code      string `json:"code"`
	PlayerID  string `json:"playerId"`
	PlayerNum int    `json:"playerNum"`
}

// CreateGame allocates a fresh game in the waiting phase under a unique room
// code and returns the creator's session.
func (d *Dispatcher) CreateGame(ctx context.Context) (*Session, error) {
	playerID := newPlayerID()
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code := d.newRoomCode()
		g := game.NewGame(code, game.Player{ID: playerID, Name: "Player 1"})
		err := d.store.Insert(ctx, g)
		if errors.Is(err, store.ErrCodeTaken) {
			continue
		}
		if err != nil {
			log.Error().Err(err).Str("code", code).Msg("insert game")
			return nil, game.Reject(game.ErrInternal, "store_unavailable")
		}
		log.Info().Str("code", code).Msg("game created")
		return &Session{Code: code, PlayerID: playerID, PlayerNum: 1}, nil
	}
	return nil, game.Reject(game.ErrInternal, "room_code_exhausted")
}

// JoinGame seats the second player in a waiting room and opens the roster
// phase. The code is case-insensitive.
func (d *Dispatcher) JoinGame(ctx context.Context, code string) (*Session, error) {
	code = normalizeCode(code)
	playerID := newPlayerID()

	err := d.mutate(ctx, code, func(g *game.Game) (bool, error) {
		return true, g.Join(game.Player{ID: playerID, Name: "Player 2"})
	})
	if err != nil {
		// A room that exists but is past waiting is as good as absent to a
		// join request.
		if errors.Is(err, game.ErrWrongPhase) {
			return nil, game.Reject(game.ErrNotFound, "room_not_found")
		}
		return nil, err
	}
	log.Info().Str("code", code).Msg("player joined")
	return &Session{Code: code, PlayerID: playerID, PlayerNum: 2}, nil
}

// Submit applies a player action to the game under code.
func (d *Dispatcher) Submit(ctx context.Context, code, playerID string, act game.Action) error {
	code = normalizeCode(code)
	err := d.mutate(ctx, code, func(g *game.Game) (bool, error) {
		return game.Apply(g, playerID, act, d.rng)
	})
	if err == nil {
		log.Debug().Str("code", code).Str("action", string(act.Type())).Msg("action applied")
	}
	return err
}

// View returns the player-scoped projection of the game under code.
func (d *Dispatcher) View(ctx context.Context, code, playerID string) (*game.PlayerView, error) {
	code = normalizeCode(code)
	g, err := d.store.Get(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, game.Reject(game.ErrNotFound, "room_not_found")
		}
		log.Error().Err(err).Str("code", code).Msg("load game")
		return nil, game.Reject(game.ErrInternal, "store_unavailable")
	}
	return game.ViewFor(g, playerID)
}

// mutate runs fn against a fresh snapshot and conditionally saves the result.
// On a lost compare-and-swap it reloads and revalidates once; a second loss
// surfaces as a conflict the caller may retry. fn returning changed=false
// means the action was absorbed with no state change and nothing is written.
func (d *Dispatcher) mutate(ctx context.Context, code string, fn func(*game.Game) (bool, error)) error {
	const attempts = 2
	for attempt := 1; ; attempt++ {
		g, err := d.store.Get(ctx, code)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return game.Reject(game.ErrNotFound, "room_not_found")
			}
			log.Error().Err(err).Str("code", code).Msg("load game")
			return game.Reject(game.ErrInternal, "store_unavailable")
		}

		next := g.Clone()
		changed, err := fn(next)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}
		next.UpdatedAt = time.Now().UTC()

		err = d.store.Update(ctx, next)
		if err == nil {
			return nil
		}
		if errors.Is(err, store.ErrVersionConflict) && attempt < attempts {
			log.Debug().Str("code", code).Msg("conditional save lost race, retrying")
			continue
		}
		if errors.Is(err, store.ErrVersionConflict) {
			return game.Reject(game.ErrConflict, "concurrent_update")
		}
		log.Error().Err(err).Str("code", code).Msg("save game")
		return game.Reject(game.ErrInternal, "store_unavailable")
	}
}

// newPlayerID mints an opaque player identifier.
func newPlayerID() string {
	return "p_" + uuid.NewString()
}

// newRoomCode draws a 4-character code from the unambiguous alphabet.
func (d *Dispatcher) newRoomCode() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[d.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}

// normalizeCode upper-cases and trims a client-supplied room code.
func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
