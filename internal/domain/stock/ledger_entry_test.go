package stock

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warehouse/backend/internal/domain/shared"
)

func TestNewLedgerEntry(t *testing.T) {
	productID := uuid.New()

	t.Run("creates pending entry", func(t *testing.T) {
		entry, err := NewLedgerEntry(productID, DirectionInbound, 25)

		require.NoError(t, err)
		assert.Equal(t, productID, entry.ProductID)
		assert.Equal(t, EntryStatusPending, entry.Status)
		assert.Equal(t, int64(25), entry.Quantity)
		assert.True(t, entry.UnitCost.IsZero())
	})

	t.Run("fails with nil product", func(t *testing.T) {
		entry, err := NewLedgerEntry(uuid.Nil, DirectionInbound, 25)

		require.Error(t, err)
		assert.Nil(t, entry)
	})

	t.Run("fails with invalid direction", func(t *testing.T) {
		entry, err := NewLedgerEntry(productID, MovementDirection("NOWHERE"), 25)

		require.Error(t, err)
		assert.Nil(t, entry)
	})

	t.Run("fails with non-positive quantity", func(t *testing.T) {
		_, err := NewLedgerEntry(productID, DirectionOutbound, 0)
		require.Error(t, err)

		_, err = NewLedgerEntry(productID, DirectionOutbound, -10)
		require.Error(t, err)
	})
}

func TestLedgerEntry_Builders(t *testing.T) {
	entry, err := NewLedgerEntry(uuid.New(), DirectionInbound, 10)
	require.NoError(t, err)

	entry.WithUnitCost(decimal.NewFromFloat(12.5)).
		WithCounterparty("ACME Supply Co").
		WithActor("user-42").
		WithAttachments([]string{"invoice-1.pdf"})

	assert.Equal(t, "12.5", entry.UnitCost.String())
	assert.Equal(t, "ACME Supply Co", entry.Counterparty)
	assert.Equal(t, "user-42", entry.CreatedBy)
	assert.Equal(t, []string{"invoice-1.pdf"}, entry.Attachments)
	assert.Equal(t, "125", entry.TotalCost().String())
}

func TestLedgerEntry_MarkApplied(t *testing.T) {
	t.Run("pending to applied records quantities", func(t *testing.T) {
		entry, err := NewLedgerEntry(uuid.New(), DirectionInbound, 10)
		require.NoError(t, err)

		require.NoError(t, entry.MarkApplied(5, 15))
		assert.Equal(t, EntryStatusApplied, entry.Status)
		assert.Equal(t, int64(5), entry.QuantityBefore)
		assert.Equal(t, int64(15), entry.QuantityAfter)
		assert.True(t, entry.IsApplied())
	})

	t.Run("applied again is a no-op", func(t *testing.T) {
		entry, err := NewLedgerEntry(uuid.New(), DirectionInbound, 10)
		require.NoError(t, err)
		require.NoError(t, entry.MarkApplied(5, 15))

		require.NoError(t, entry.MarkApplied(99, 100))
		assert.Equal(t, int64(5), entry.QuantityBefore)
		assert.Equal(t, int64(15), entry.QuantityAfter)
	})

	t.Run("failed entry cannot become applied", func(t *testing.T) {
		entry, err := NewLedgerEntry(uuid.New(), DirectionOutbound, 10)
		require.NoError(t, err)
		require.NoError(t, entry.MarkFailed("INSUFFICIENT_STOCK"))

		err = entry.MarkApplied(5, 15)
		require.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, EntryStatusFailed, entry.Status)
	})
}

func TestLedgerEntry_MarkFailed(t *testing.T) {
	t.Run("pending to failed records reason", func(t *testing.T) {
		entry, err := NewLedgerEntry(uuid.New(), DirectionOutbound, 10)
		require.NoError(t, err)

		require.NoError(t, entry.MarkFailed("INSUFFICIENT_STOCK"))
		assert.Equal(t, EntryStatusFailed, entry.Status)
		assert.Equal(t, "INSUFFICIENT_STOCK", entry.FailureReason)
	})

	t.Run("failed again is a no-op", func(t *testing.T) {
		entry, err := NewLedgerEntry(uuid.New(), DirectionOutbound, 10)
		require.NoError(t, err)
		require.NoError(t, entry.MarkFailed("INSUFFICIENT_STOCK"))

		require.NoError(t, entry.MarkFailed("BUSY"))
		assert.Equal(t, "INSUFFICIENT_STOCK", entry.FailureReason)
	})

	t.Run("applied entry cannot become failed", func(t *testing.T) {
		entry, err := NewLedgerEntry(uuid.New(), DirectionInbound, 10)
		require.NoError(t, err)
		require.NoError(t, entry.MarkApplied(0, 10))

		err = entry.MarkFailed("BUSY")
		require.ErrorIs(t, err, shared.ErrInvalidTransition)
		assert.Equal(t, EntryStatusApplied, entry.Status)
	})
}

func TestLedgerEntry_SignedQuantity(t *testing.T) {
	inbound, err := NewLedgerEntry(uuid.New(), DirectionInbound, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(10), inbound.SignedQuantity())

	outbound, err := NewLedgerEntry(uuid.New(), DirectionOutbound, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(-10), outbound.SignedQuantity())
}
