package repository

import (
	"context"

	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// JokesRepository is the append-only jokes table.
type JokesRepository interface {
	Insert(ctx context.Context, category, content string) error
	ListRecent(ctx context.Context, category string, limit int) ([]model.JokeRow, error)
}

type JokesRepositoryImpl struct {
	db *sqlx.DB
}

func NewJokesRepository(db *sqlx.DB) *JokesRepositoryImpl {
	return &JokesRepositoryImpl{db: db}
}

var _ JokesRepository = (*JokesRepositoryImpl)(nil)

// Insert appends one (category, content) row. Single statement, no tx needed.
func (r *JokesRepositoryImpl) Insert(ctx context.Context, category, content string) error {
	const q = `
		INSERT INTO jokes (category, content, created_at)
		VALUES (?, ?, NOW())
	`
	_, err := r.db.ExecContext(ctx, q, category, content)
	return err
}

// ListRecent returns the newest rows first; empty category lists all.
func (r *JokesRepositoryImpl) ListRecent(ctx context.Context, category string, limit int) ([]model.JokeRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}

	q := `SELECT id, category, content, created_at FROM jokes`
	args := []any{}
	if category != "" {
		q += " WHERE category = ?"
		args = append(args, category)
	}
	q += " ORDER BY id DESC LIMIT ?"
	args = append(args, limit)

	var rows []model.JokeRow
	if err := r.db.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
