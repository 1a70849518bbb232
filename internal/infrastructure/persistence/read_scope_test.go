package persistence

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	appstock "github.com/warehouse/backend/internal/application/stock"
)

func newMockReadScope(t *testing.T) (*GormReadScope, sqlmock.Sqlmock) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormReadScope(gormDB), mock
}

func TestGormReadScope_Execute(t *testing.T) {
	t.Run("runs all queries inside one transaction", func(t *testing.T) {
		scope, mock := newMockReadScope(t)

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(2)))
		mock.ExpectQuery(`SELECT count\(\*\) FROM "products"`).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(1)))
		mock.ExpectCommit()

		err := scope.Execute(context.Background(), func(repos appstock.TransactionalRepositories) error {
			active, err := repos.Products().CountActive(context.Background())
			if err != nil {
				return err
			}
			low, err := repos.Products().CountLowStock(context.Background())
			if err != nil {
				return err
			}
			assert.Equal(t, int64(2), active)
			assert.Equal(t, int64(1), low)
			return nil
		})

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("closure error rolls the transaction back", func(t *testing.T) {
		scope, mock := newMockReadScope(t)

		mock.ExpectBegin()
		mock.ExpectRollback()

		boom := errors.New("boom")
		err := scope.Execute(context.Background(), func(appstock.TransactionalRepositories) error {
			return boom
		})

		require.ErrorIs(t, err, boom)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestNewGormReadScope_IsolationByDriver(t *testing.T) {
	scope, _ := newMockReadScope(t)
	require.Len(t, scope.opts, 1)
	assert.Equal(t, sql.LevelRepeatableRead, scope.opts[0].Isolation)
	assert.True(t, scope.opts[0].ReadOnly)
}
