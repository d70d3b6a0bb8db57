package postgres

import (
	"context"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/gamevault/gamevault/pkg/errors"
)

func TestFavoriteRepository_Add_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFavoriteRepository(mock)

	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "game-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := repo.Add(context.Background(), "user-1", "game-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Add_DuplicateIsNoop(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFavoriteRepository(mock)

	// ON CONFLICT DO NOTHING reports zero rows affected.
	mock.ExpectExec("INSERT INTO favorites").
		WithArgs("user-1", "game-1").
		WillReturnResult(pgxmock.NewResult("INSERT", 0))

	err := repo.Add(context.Background(), "user-1", "game-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove_Success(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFavoriteRepository(mock)

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs("user-1", "game-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err := repo.Remove(context.Background(), "user-1", "game-1")
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Remove_NotFound(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFavoriteRepository(mock)

	mock.ExpectExec("DELETE FROM favorites").
		WithArgs("user-1", "game-1").
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := repo.Remove(context.Background(), "user-1", "game-1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ListByUser(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFavoriteRepository(mock)

	g := sampleGame()
	row := append(gameRow(g), 1)

	mock.ExpectQuery("SELECT .+ FROM favorites f").
		WithArgs("user-1", 20, 0).
		WillReturnRows(pgxmock.NewRows(gameColsWithCount).AddRow(row...))

	games, total, err := repo.ListByUser(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	assert.Len(t, games, 1)
	assert.Equal(t, 1, total)
	assert.Equal(t, g.ID, games[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_ListByUser_Empty(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFavoriteRepository(mock)

	mock.ExpectQuery("SELECT .+ FROM favorites f").
		WithArgs("user-1", 20, 0).
		WillReturnRows(pgxmock.NewRows(gameColsWithCount))

	games, total, err := repo.ListByUser(context.Background(), "user-1", 1, 20)
	require.NoError(t, err)
	assert.NotNil(t, games)
	assert.Empty(t, games)
	assert.Zero(t, total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFavoriteRepository_Exists(t *testing.T) {
	mock := newMock(t)
	defer mock.Close()
	repo := NewFavoriteRepository(mock)

	mock.ExpectQuery("SELECT EXISTS").
		WithArgs("user-1", "game-1").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.Exists(context.Background(), "user-1", "game-1")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}
