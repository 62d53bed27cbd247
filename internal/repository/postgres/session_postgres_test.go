package postgres

import (
	"context"
	"testing"
	"time"

	"bizprofile/internal/model"
	"bizprofile/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionPostgres(db)
	now := time.Now().UTC()
	s := &model.Session{UserID: "u-1", SessionToken: "tok", ExpiresAt: now.Add(time.Hour), CreatedAt: now}

	mock.ExpectExec("INSERT INTO user_sessions").
		WithArgs("tok", "u-1", s.ExpiresAt, s.CreatedAt).
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Create(context.Background(), s))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionPostgres_FindByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionPostgres(db)
	ctx := context.Background()
	cols := []string{"session_token", "user_id", "expires_at", "created_at"}

	t.Run("found", func(t *testing.T) {
		exp := time.Now().Add(time.Hour)
		mock.ExpectQuery("SELECT (.+) FROM user_sessions WHERE session_token = ?").
			WithArgs("tok").
			WillReturnRows(sqlmock.NewRows(cols).AddRow("tok", "u-1", exp, time.Now()))

		s, err := repo.FindByToken(ctx, "tok")

		assert.NoError(t, err)
		assert.Equal(t, "u-1", s.UserID)
	})

	t.Run("not found", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM user_sessions WHERE session_token = ?").
			WithArgs("nope").
			WillReturnRows(sqlmock.NewRows(cols))

		s, err := repo.FindByToken(ctx, "nope")

		assert.ErrorIs(t, err, repository.ErrNotFound)
		assert.Nil(t, s)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionPostgres_DeleteByToken(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewSessionPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM user_sessions WHERE session_token = ?").
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM user_sessions WHERE session_token = ?").
		WithArgs("tok").
		WillReturnResult(sqlmock.NewResult(0, 0))

	removed, err := repo.DeleteByToken(ctx, "tok")
	assert.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.DeleteByToken(ctx, "tok")
	assert.NoError(t, err)
	assert.False(t, removed)

	assert.NoError(t, mock.ExpectationsWereMet())
}
