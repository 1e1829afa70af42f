package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"latinbot/core/database"
	"latinbot/core/logger"
)

// ErrNotFound is returned when a referenced catalogue id no longer resolves,
// typically because a stale token outlived a store edit.
var ErrNotFound = errors.New("catalog: not found")

// Store provides read-only access to the catalogue hierarchy.
type Store struct {
	pool *database.Pool
}

// NewStore wraps the shared lazy pool.
func NewStore(pool *database.Pool) *Store {
	return &Store{pool: pool}
}

// Programs lists all programs ordered by name.
func (s *Store) Programs(ctx context.Context) ([]Program, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var out []Program
	if err := db.SelectContext(ctx, &out,
		`SELECT id, name FROM programs ORDER BY name`,
	); err != nil {
		return nil, fmt.Errorf("catalog: list programs: %w", err)
	}
	logger.SVCCatalog.Debug("programs listed",
		slog.String("event", "catalog.programs"),
		slog.Int("count", len(out)),
		slog.Duration("duration", logger.Took(start)),
	)
	return out, nil
}

// Dances lists the dances of a program ordered by name.
func (s *Store) Dances(ctx context.Context, programID int64) ([]Dance, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	var out []Dance
	if err := db.SelectContext(ctx, &out,
		`SELECT id, name, program_id FROM dances WHERE program_id = $1 ORDER BY name`,
		programID,
	); err != nil {
		return nil, fmt.Errorf("catalog: list dances: %w", err)
	}
	return out, nil
}

// Figures lists the figures of a dance ordered by name.
func (s *Store) Figures(ctx context.Context, danceID int64) ([]Figure, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	var out []Figure
	if err := db.SelectContext(ctx, &out,
		`SELECT id, name, dance_id FROM figures WHERE dance_id = $1 ORDER BY name`,
		danceID,
	); err != nil {
		return nil, fmt.Errorf("catalog: list figures: %w", err)
	}
	return out, nil
}

// Figure fetches a single figure by id.
func (s *Store) Figure(ctx context.Context, id int64) (Figure, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return Figure{}, err
	}
	var f Figure
	err = db.GetContext(ctx, &f,
		`SELECT id, name, dance_id FROM figures WHERE id = $1`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Figure{}, ErrNotFound
	}
	if err != nil {
		return Figure{}, fmt.Errorf("catalog: get figure: %w", err)
	}
	return f, nil
}

// Author fetches a single author by id.
func (s *Store) Author(ctx context.Context, id int64) (Author, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return Author{}, err
	}
	var a Author
	err = db.GetContext(ctx, &a,
		`SELECT id, name FROM authors WHERE id = $1`, id,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return Author{}, ErrNotFound
	}
	if err != nil {
		return Author{}, fmt.Errorf("catalog: get author: %w", err)
	}
	return a, nil
}

// Authors lists the authors that have a technique variant for the figure,
// ordered by name.
func (s *Store) Authors(ctx context.Context, figureID int64) ([]Author, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	var out []Author
	if err := db.SelectContext(ctx, &out,
		`SELECT a.id, a.name
		   FROM figure_versions fv
		   JOIN authors a ON a.id = fv.author_id
		  WHERE fv.figure_id = $1
		  ORDER BY a.name`,
		figureID,
	); err != nil {
		return nil, fmt.Errorf("catalog: list authors: %w", err)
	}
	return out, nil
}

// Blocks lists the technique blocks of a (figure, author) variant in
// position order.
func (s *Store) Blocks(ctx context.Context, figureID, authorID int64) ([]Block, error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return nil, err
	}
	var out []Block
	if err := db.SelectContext(ctx, &out,
		`SELECT tb.block, tb.content, tb.position
		   FROM technique_blocks tb
		   JOIN figure_versions fv ON fv.id = tb.version_id
		  WHERE fv.figure_id = $1 AND fv.author_id = $2
		  ORDER BY tb.position`,
		figureID, authorID,
	); err != nil {
		return nil, fmt.Errorf("catalog: list blocks: %w", err)
	}
	return out, nil
}

// ParentPath resolves the dance and program a figure hangs under. Detail
// tokens only carry (figure, author), so back transitions rebuild the rest
// of the path from here.
func (s *Store) ParentPath(ctx context.Context, figureID int64) (danceID, programID int64, err error) {
	db, err := s.pool.Get(ctx)
	if err != nil {
		return 0, 0, err
	}
	row := struct {
		DanceID   int64 `db:"dance_id"`
		ProgramID int64 `db:"program_id"`
	}{}
	err = db.GetContext(ctx, &row,
		`SELECT f.dance_id, d.program_id
		   FROM figures f
		   JOIN dances d ON d.id = f.dance_id
		  WHERE f.id = $1`,
		figureID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, 0, ErrNotFound
	}
	if err != nil {
		return 0, 0, fmt.Errorf("catalog: parent path: %w", err)
	}
	return row.DanceID, row.ProgramID, nil
}
