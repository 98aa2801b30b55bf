package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmehdipour/content-gateway/internal/model"
)

func TestEmailsInsertAttempt(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewEmailsRepository(db)

	mock.ExpectExec(`INSERT INTO contents`).
		WithArgs("01J0000000000000000000000", "news", "a@b.com", "Latest News Update", "Headline text").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.InsertAttempt(context.Background(), model.EmailAttempt{
		ID:          "01J0000000000000000000000",
		ContentType: model.ContentNews,
		ToEmail:     "a@b.com",
		Subject:     "Latest News Update",
		Body:        "Headline text",
	})
	if err != nil {
		t.Fatalf("insert attempt: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}
