package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"ocrapi/internal/model"
	"ocrapi/internal/repository"
)

var columns = []string{"id", "request_id", "document_type", "file_extension", "size", "outcome", "field_count", "duration_ms", "created_at"}

func TestRecognitionPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecognitionPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	rec := &model.Recognition{
		ID:            "test-uuid",
		RequestID:     "req-1",
		DocumentType:  "rib",
		FileExtension: "pdf",
		Size:          2048,
		Outcome:       model.OutcomeSuccess,
		FieldCount:    8,
		DurationMs:    1200,
		CreatedAt:     now,
	}

	rows := sqlmock.NewRows(columns).
		AddRow(rec.ID, rec.RequestID, rec.DocumentType, rec.FileExtension, rec.Size, rec.Outcome, rec.FieldCount, rec.DurationMs, rec.CreatedAt)

	mock.ExpectQuery("INSERT INTO recognitions").
		WithArgs(rec.ID, rec.RequestID, rec.DocumentType, rec.FileExtension, rec.Size, rec.Outcome, rec.FieldCount, rec.DurationMs, rec.CreatedAt).
		WillReturnRows(rows)

	result, err := repo.Create(ctx, rec)

	assert.NoError(t, err)
	assert.Equal(t, rec, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRecognitionPostgres_Create_Error(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecognitionPostgres(db)

	mock.ExpectQuery("INSERT INTO recognitions").WillReturnError(errors.New("connection reset"))

	result, err := repo.Create(context.Background(), &model.Recognition{ID: "x"})

	assert.EqualError(t, err, "connection reset")
	assert.Nil(t, result)
}

func TestRecognitionPostgres_List(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewRecognitionPostgres(db)
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM recognitions").
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

		rows := sqlmock.NewRows(columns).
			AddRow("id-2", "req-2", "rib", "jpg", 10, model.OutcomeFailure, 0, 30, time.Now()).
			AddRow("id-1", "req-1", "rib", "pdf", 20, model.OutcomeSuccess, 8, 900, time.Now())

		mock.ExpectQuery("SELECT (.+) FROM recognitions ORDER BY").
			WithArgs(10, 0).
			WillReturnRows(rows)

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10, Offset: 0})

		assert.NoError(t, err)
		assert.Equal(t, 2, res.Total)
		assert.Len(t, res.Items, 2)
		assert.Equal(t, "id-2", res.Items[0].ID)
		assert.Equal(t, model.OutcomeFailure, res.Items[0].Outcome)
	})

	t.Run("count error", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM recognitions").
			WillReturnError(errors.New("db down"))

		res, err := repo.List(ctx, repository.PageQuery{Limit: 10})

		assert.Error(t, err)
		assert.Nil(t, res)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
