// internal/store/sqlite.go
//
// SQLite-backed implementation of Store.
// The game aggregate is stored as a JSON document alongside a version column;
// the conditional UPDATE ... WHERE version=? provides the compare-and-swap.
// Schema lives in sql/001_init.sql and is applied by the migration runner.

package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/thirdedge/go-server/internal/game"
)

// sqliteStore persists games in a SQLite `games` table.
type sqliteStore struct {
	db *sql.DB
}

// NewSQLite constructs a Store backed by an open SQLite handle.
func NewSQLite(db *sql.DB) Store {
	return &sqliteStore{db: db}
}

func (s *sqliteStore) Get(ctx context.Context, code string) (*game.Game, error) {
	var doc string
	err := s.db.QueryRowContext(ctx,
		`SELECT doc FROM games WHERE code=?`, code,
	).Scan(&doc)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get game %s: %w", code, err)
	}
	var g game.Game
	if err := json.Unmarshal([]byte(doc), &g); err != nil {
		return nil, fmt.Errorf("decode game %s: %w", code, err)
	}
	return &g, nil
}

func (s *sqliteStore) Insert(ctx context.Context, g *game.Game) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var status string
	err = tx.QueryRowContext(ctx, `SELECT status FROM games WHERE code=?`, g.Code).Scan(&status)
	switch {
	case err == nil:
		if game.Status(status) != game.StatusSeriesEnd {
			return ErrCodeTaken
		}
		// Terminal game may be displaced by a fresh room with the same code.
		if _, err := tx.ExecContext(ctx, `DELETE FROM games WHERE code=?`, g.Code); err != nil {
			return fmt.Errorf("displace game %s: %w", g.Code, err)
		}
	case err != sql.ErrNoRows:
		return fmt.Errorf("check code %s: %w", g.Code, err)
	}

	g.Version = 1
	doc, err := json.Marshal(g)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.Code, err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO games (code, status, doc, version, updated_at) VALUES (?,?,?,?,?)`,
		g.Code, string(g.Status), string(doc), g.Version, now(),
	); err != nil {
		return fmt.Errorf("insert game %s: %w", g.Code, err)
	}
	return tx.Commit()
}

func (s *sqliteStore) Update(ctx context.Context, g *game.Game) error {
	next := *g
	next.Version = g.Version + 1
	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode game %s: %w", g.Code, err)
	}

	res, err := s.db.ExecContext(ctx,
		`UPDATE games SET status=?, doc=?, version=?, updated_at=? WHERE code=? AND version=?`,
		string(g.Status), string(doc), next.Version, now(), g.Code, g.Version,
	)
	if err != nil {
		return fmt.Errorf("update game %s: %w", g.Code, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Either the row is gone or another write bumped the version.
		var cur int64
		err := s.db.QueryRowContext(ctx, `SELECT version FROM games WHERE code=?`, g.Code).Scan(&cur)
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("recheck game %s: %w", g.Code, err)
		}
		return ErrVersionConflict
	}
	g.Version = next.Version
	return nil
}

// now formats the write timestamp the schema expects.
func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}
