package repository

import (
	"context"

	"github.com/jmehdipour/content-gateway/internal/model"
	"github.com/jmoiron/sqlx"
)

// EmailsRepository records every send attempt in the contents table.
type EmailsRepository interface {
	InsertAttempt(ctx context.Context, a model.EmailAttempt) error
}

type EmailsRepositoryImpl struct {
	db *sqlx.DB
}

func NewEmailsRepository(db *sqlx.DB) *EmailsRepositoryImpl {
	return &EmailsRepositoryImpl{db: db}
}

var _ EmailsRepository = (*EmailsRepositoryImpl)(nil)

// InsertAttempt writes the attempt row before the transport is invoked.
func (r *EmailsRepositoryImpl) InsertAttempt(ctx context.Context, a model.EmailAttempt) error {
	const q = `
		INSERT INTO contents
		    (id, content_type, to_email, subject, content, created_at)
		VALUES
		    (:id, :content_type, :to_email, :subject, :content, NOW())
	`
	_, err := r.db.NamedExecContext(ctx, q, a)
	return err
}
