package persistence

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
)

func newMockLedgerRepository(t *testing.T) (*GormLedgerEntryRepository, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormLedgerEntryRepository(gormDB), mock, mockDB
}

func appliedEntry(t *testing.T) *stock.LedgerEntry {
	t.Helper()
	entry, err := stock.NewLedgerEntry(uuid.New(), stock.DirectionInbound, 10)
	require.NoError(t, err)
	entry.ID = 7
	require.NoError(t, entry.MarkApplied(0, 10))
	return entry
}

func TestGormLedgerEntryRepository_Finalize(t *testing.T) {
	t.Run("persists the applied transition", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		mock.ExpectExec(`UPDATE "ledger_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.Finalize(context.Background(), appliedEntry(t))

		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rejects a non-terminal entry", func(t *testing.T) {
		repo, _, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		entry, err := stock.NewLedgerEntry(uuid.New(), stock.DirectionInbound, 10)
		require.NoError(t, err)

		err = repo.Finalize(context.Background(), entry)
		require.Error(t, err)
	})

	t.Run("conflicting transition on a terminal row", func(t *testing.T) {
		repo, mock, mockDB := newMockLedgerRepository(t)
		defer mockDB.Close()

		// The row is already FAILED, so the guarded update matches nothing.
		mock.ExpectExec(`UPDATE "ledger_entries" SET`).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.Finalize(context.Background(), appliedEntry(t))

		require.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormLedgerEntryRepository_CountByDirectionAndDateRange(t *testing.T) {
	repo, mock, mockDB := newMockLedgerRepository(t)
	defer mockDB.Close()

	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	mock.ExpectQuery(`SELECT count\(\*\) FROM "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(4)))

	count, err := repo.CountByDirectionAndDateRange(context.Background(), stock.DirectionInbound, start, end)

	require.NoError(t, err)
	assert.Equal(t, int64(4), count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormLedgerEntryRepository_SumValueByDirectionAndDateRange(t *testing.T) {
	repo, mock, mockDB := newMockLedgerRepository(t)
	defer mockDB.Close()

	start := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 1)

	mock.ExpectQuery(`SELECT COALESCE\(SUM\(quantity \* unit_cost\), 0\) as total FROM "ledger_entries"`).
		WillReturnRows(sqlmock.NewRows([]string{"total"}).AddRow("123.45"))

	total, err := repo.SumValueByDirectionAndDateRange(context.Background(), stock.DirectionInbound, start, end)

	require.NoError(t, err)
	assert.Equal(t, "123.45", total.String())
	assert.NoError(t, mock.ExpectationsWereMet())
}
