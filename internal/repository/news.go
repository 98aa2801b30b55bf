package repository

import (
	"context"
	"time"

	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// NewsRepository archives headlines in ClickHouse (append-only, no dedup).
type NewsRepository interface {
	InsertBatch(ctx context.Context, category string, headlines []model.NewsHeadline) error
	ListByCategory(ctx context.Context, category string, limit, offset int) ([]model.NewsRow, error)
}

type newsRepository struct {
	ch  *sqlx.DB // ClickHouse connection
	now func() time.Time
}

func NewNewsRepository(ch *sqlx.DB) NewsRepository {
	return &newsRepository{ch: ch, now: time.Now}
}

// InsertBatch sends the whole batch as one ClickHouse block: the driver
// buffers prepared-statement execs inside a tx and flushes on commit.
func (r *newsRepository) InsertBatch(ctx context.Context, category string, headlines []model.NewsHeadline) error {
	if len(headlines) == 0 {
		return nil
	}

	tx, err := r.ch.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO news (category, title, url, published_at, source, created_at)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	now := r.now().UTC()
	for _, h := range headlines {
		if _, err := stmt.ExecContext(ctx, category, h.Title, h.URL, h.PublishedAt, h.Source, now); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (r *newsRepository) ListByCategory(ctx context.Context, category string, limit, offset int) ([]model.NewsRow, error) {
	if limit <= 0 || limit > 1000 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	q := `
		SELECT category, title, url, published_at, source, created_at
		FROM news
	`
	args := []any{}

	if category != "" {
		q += " WHERE category = ?"
		args = append(args, category)
	}

	q += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var rows []model.NewsRow
	if err := r.ch.SelectContext(ctx, &rows, q, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
