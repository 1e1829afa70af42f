package access

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"latinbot/core/database"
)

// PostgresStore persists registry and grant state in the shared pool.
type PostgresStore struct {
	pool *database.Pool
}

// NewPostgresStore wraps the shared lazy pool.
func NewPostgresStore(pool *database.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// GetOrCreateUser upserts on the unique telegram_id. The upsert keeps an
// existing non-empty username when the update delivers none.
func (s *PostgresStore) GetOrCreateUser(ctx context.Context, telegramID int64, username string) (User, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return User{}, err
	}
	var u User
	err = db.GetContext(ctx, &u,
		`INSERT INTO users (telegram_id, username)
		 VALUES ($1, $2)
		 ON CONFLICT (telegram_id) DO UPDATE
		    SET username = CASE WHEN EXCLUDED.username <> '' THEN EXCLUDED.username ELSE users.username END
		 RETURNING id, telegram_id, username, is_subscribed, free_figures_opened`,
		telegramID, username,
	)
	if err != nil {
		return User{}, fmt.Errorf("upsert user: %w", err)
	}
	return u, nil
}

// WithUserLock runs fn inside one transaction holding a row lock on the
// user, creating the row first if the identity is unknown. The lock
// serializes concurrent entitlement checks per user; the (user_id,
// figure_id) primary key backs it up should the lock ever be bypassed.
func (s *PostgresStore) WithUserLock(ctx context.Context, telegramID int64, fn func(Tx) error) error {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return err
	}
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO users (telegram_id) VALUES ($1) ON CONFLICT (telegram_id) DO NOTHING`,
		telegramID,
	); err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}

	var u User
	if err := tx.GetContext(ctx, &u,
		`SELECT id, telegram_id, username, is_subscribed, free_figures_opened
		   FROM users WHERE telegram_id = $1 FOR UPDATE`,
		telegramID,
	); err != nil {
		return fmt.Errorf("lock user: %w", err)
	}

	if err := fn(&pgTx{ctx: ctx, tx: tx, user: u}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Stats reports registry totals.
func (s *PostgresStore) Stats(ctx context.Context) (Stats, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return Stats{}, err
	}
	var st Stats
	if err := db.GetContext(ctx, &st,
		`SELECT (SELECT count(*) FROM users)                               AS users,
		        (SELECT count(*) FROM users WHERE is_subscribed)           AS subscribers,
		        (SELECT count(*) FROM user_figure_accesses)                AS grants`,
	); err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

type pgTx struct {
	ctx  context.Context
	tx   *sqlx.Tx
	user User
}

func (t *pgTx) User() User { return t.user }

func (t *pgTx) HasGrant(figureID int64) (bool, error) {
	var exists bool
	err := t.tx.GetContext(t.ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM user_figure_accesses WHERE user_id = $1 AND figure_id = $2)`,
		t.user.ID, figureID,
	)
	if err != nil {
		return false, fmt.Errorf("has grant: %w", err)
	}
	return exists, nil
}

func (t *pgTx) GrantCount() (int, error) {
	var n int
	err := t.tx.GetContext(t.ctx, &n,
		`SELECT count(*) FROM user_figure_accesses WHERE user_id = $1`,
		t.user.ID,
	)
	if err != nil {
		return 0, fmt.Errorf("grant count: %w", err)
	}
	return n, nil
}

func (t *pgTx) AddGrant(figureID int64) error {
	if _, err := t.tx.ExecContext(t.ctx,
		`INSERT INTO user_figure_accesses (user_id, figure_id) VALUES ($1, $2)
		 ON CONFLICT (user_id, figure_id) DO NOTHING`,
		t.user.ID, figureID,
	); err != nil {
		return fmt.Errorf("add grant: %w", err)
	}
	return nil
}

func (t *pgTx) SetFreeFiguresOpened(n int) error {
	if _, err := t.tx.ExecContext(t.ctx,
		`UPDATE users SET free_figures_opened = $1 WHERE id = $2`,
		n, t.user.ID,
	); err != nil {
		return fmt.Errorf("update counter: %w", err)
	}
	t.user.FreeFiguresOpened = n
	return nil
}
