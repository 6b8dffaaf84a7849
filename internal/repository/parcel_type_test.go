package repository

import (
	"context"
	"errors"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parcelbox/parcel-service/internal/model"
)

func TestParcelTypeRepository_Exists(t *testing.T) {
	existsQuery := `SELECT EXISTS \(SELECT 1 FROM parcel_types WHERE id = \$1\)`

	t.Run("true for known type", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParcelTypeRepository(db)

		mock.ExpectQuery(existsQuery).WithArgs(int64(1)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		ok, err := repo.Exists(context.Background(), 1)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("false for unknown type", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParcelTypeRepository(db)

		mock.ExpectQuery(existsQuery).WithArgs(int64(99)).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		ok, err := repo.Exists(context.Background(), 99)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("wraps database error", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParcelTypeRepository(db)

		mock.ExpectQuery(existsQuery).WillReturnError(errors.New("conn refused"))

		_, err := repo.Exists(context.Background(), 1)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "check parcel type")
	})
}

func TestParcelTypeRepository_FindAll(t *testing.T) {
	t.Run("returns types ordered by id", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParcelTypeRepository(db)

		mock.ExpectQuery(`SELECT id, name FROM parcel_types ORDER BY id`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(1, "Clothes").
				AddRow(2, "Electronics"))

		types, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []model.ParcelType{
			{ID: 1, Name: "Clothes"},
			{ID: 2, Name: "Electronics"},
		}, types)
	})

	t.Run("returns empty slice when table is empty", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewParcelTypeRepository(db)

		mock.ExpectQuery(`SELECT id, name FROM parcel_types`).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

		types, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, types)
		assert.Empty(t, types)
	})
}

func TestHandleNotFound(t *testing.T) {
	value := 42

	t.Run("passes through result", func(t *testing.T) {
		got, err := HandleNotFound(&value, nil)
		require.NoError(t, err)
		assert.Equal(t, 42, *got)
	})

	t.Run("propagates other errors", func(t *testing.T) {
		got, err := HandleNotFound(&value, errors.New("boom"))
		assert.Error(t, err)
		assert.Nil(t, got)
	})
}
