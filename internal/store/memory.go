// internal/store/memory.go
//
// In-memory implementation of Store.
// Used in development and tests, or when durability is not required.
//
// Characteristics:
//   - Stores deep copies keyed by room code; Get hands out fresh copies, so
//     callers hold true snapshots.
//   - Concurrency-safe via RWMutex; the version check inside the write lock
//     supplies the compare-and-swap guarantee.
//   - State is lost when the process restarts.

package store

import (
	"context"
	"sync"

	"github.com/thirdedge/go-server/internal/game"
)

// memory is a map-based Store implementation.
type memory struct {
	mu    sync.RWMutex
	games map[string]*game.Game // keyed by room code
}

// NewMemory constructs an in-memory Store.
func NewMemory() Store {
	return &memory{games: make(map[string]*game.Game)}
}

func (m *memory) Get(ctx context.Context, code string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[code]
	if !ok {
		return nil, ErrNotFound
	}
	return g.Clone(), nil
}

func (m *memory) Insert(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if cur, ok := m.games[g.Code]; ok && !cur.Terminal() {
		return ErrCodeTaken
	}
	g.Version = 1
	m.games[g.Code] = g.Clone()
	return nil
}

func (m *memory) Update(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.games[g.Code]
	if !ok {
		return ErrNotFound
	}
	if cur.Version != g.Version {
		return ErrVersionConflict
	}
	g.Version++
	m.games[g.Code] = g.Clone()
	return nil
}
