// internal/store/redis.go
//
// Redis-backed implementation of Store.
// Game documents are stored as JSON under "game:<code>". Conditional saves
// use Redis optimistic transactions: WATCH the key, re-read and compare the
// version, and commit through a transactional pipeline that Redis aborts if
// the key changed in between (TxFailedErr → ErrVersionConflict).
//
// Suitable when several stateless server processes share one game space.

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/thirdedge/go-server/internal/game"
)

// redisStore persists games in a shared Redis instance.
type redisStore struct {
	client *redis.Client
}

// NewRedis constructs a Store backed by the given Redis client.
func NewRedis(client *redis.Client) Store {
	return &redisStore{client: client}
}

func gameKey(code string) string { return "game:" + code }

func (s *redisStore) Get(ctx context.Context, code string) (*game.Game, error) {
	val, err := s.client.Get(ctx, gameKey(code)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", code, err)
	}
	var g game.Game
	if err := json.Unmarshal([]byte(val), &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", code, err)
	}
	return &g, nil
}

func (s *redisStore) Insert(ctx context.Context, g *game.Game) error {
	key := gameKey(g.Code)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return fmt.Errorf("check code %s: %w", g.Code, err)
		}
		if err == nil {
			var cur game.Game
			if err := json.Unmarshal([]byte(val), &cur); err != nil {
				return fmt.Errorf("decode game %s: %w", g.Code, err)
			}
			if !cur.Terminal() {
				return ErrCodeTaken
			}
		}
		g.Version = 1
		doc, err := json.Marshal(g)
		if err != nil {
			return fmt.Errorf("encode game %s: %w", g.Code, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			return nil
		})
		return err
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrCodeTaken
	}
	return err
}

func (s *redisStore) Update(ctx context.Context, g *game.Game) error {
	key := gameKey(g.Code)
	err := s.client.Watch(ctx, func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key).Result()
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get game %s: %w", g.Code, err)
		}
		var cur game.Game
		if err := json.Unmarshal([]byte(val), &cur); err != nil {
			return fmt.Errorf("decode game %s: %w", g.Code, err)
		}
		if cur.Version != g.Version {
			return ErrVersionConflict
		}
		next := *g
		next.Version = g.Version + 1
		doc, err := json.Marshal(&next)
		if err != nil {
			return fmt.Errorf("encode game %s: %w", g.Code, err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, doc, 0)
			return nil
		})
		if err != nil {
			return err
		}
		g.Version = next.Version
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return ErrVersionConflict
	}
	return err
}
