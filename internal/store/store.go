// internal/store/store.go
//
// Persistence interface for game documents.
// Implementations must provide atomic conditional updates: a save only
// succeeds if the stored document still carries the version the caller read.
// That compare-and-swap is the sole serialization mechanism — request
// handling is assumed stateless and possibly distributed, so correctness can
// never rely on in-process locks around a game.

package store

import (
	"context"
	"errors"

	"github.com/thirdedge/go-server/internal/game"
)

var (
	// ErrNotFound indicates no game exists for the code.
	ErrNotFound = errors.New("store: game not found")
	// ErrCodeTaken indicates a non-terminal game already holds the code.
	ErrCodeTaken = errors.New("store: room code taken")
	// ErrVersionConflict indicates the conditional save lost a race: another
	// write landed after the caller's snapshot was read.
	ErrVersionConflict = errors.New("store: version conflict")
)

// Store persists game documents keyed by room code.
// Implementations may be backed by memory (development/tests), SQLite, or Redis.
type Store interface {
	// Get returns a snapshot of the game for code. Mutating the returned
	// value never affects the stored document.
	Get(ctx context.Context, code string) (*game.Game, error)

	// Insert stores a brand-new game and stamps Version 1 on it.
	// Fails with ErrCodeTaken while a non-terminal game holds the same code;
	// a terminal game may be displaced.
	Insert(ctx context.Context, g *game.Game) error

	// Update conditionally saves g: it succeeds only if the stored version
	// equals g.Version, and bumps g.Version on success. Fails with
	// ErrVersionConflict when the snapshot is stale.
	Update(ctx context.Context, g *game.Game) error
}
