package audit_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appaudit "github.com/warehouse/backend/internal/application/audit"
	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/stock"
	"github.com/warehouse/backend/internal/infrastructure/persistence/memory"
)

func seedAppliedEntry(t *testing.T, store *memory.Store, sku string, direction stock.MovementDirection, quantity, before, after int64) *stock.LedgerEntry {
	t.Helper()
	ctx := context.Background()

	product, err := stock.NewProduct(sku, "Wooden Pallet")
	require.NoError(t, err)
	require.NoError(t, store.Products().Save(ctx, product))

	entry, err := stock.NewLedgerEntry(product.ID, direction, quantity)
	require.NoError(t, err)
	entry.WithActor("user-7")
	require.NoError(t, store.Ledger().Append(ctx, entry))
	require.NoError(t, entry.MarkApplied(before, after))
	require.NoError(t, store.Ledger().Finalize(ctx, entry))
	return entry
}

func TestRecorder_RecordMovement(t *testing.T) {
	ctx := context.Background()

	t.Run("writes one record per applied entry", func(t *testing.T) {
		store := memory.NewStore()
		recorder := appaudit.NewRecorder(store.Audit(), store.Products(), zap.NewNop())
		entry := seedAppliedEntry(t, store, "WH-001", stock.DirectionOutbound, 10, 30, 20)

		require.NoError(t, recorder.RecordMovement(ctx, entry))

		records, err := recorder.Recent(ctx, 10)
		require.NoError(t, err)
		require.Len(t, records, 1)

		record := records[0]
		assert.Equal(t, audit.VerbOutbound, record.Verb)
		assert.Equal(t, "user-7", record.ActorID)
		assert.Equal(t, "product WH-001", record.Subject)
		require.NotNil(t, record.LedgerEntryID)
		assert.Equal(t, entry.ID, *record.LedgerEntryID)
		assert.Equal(t, audit.Change{Old: "30", New: "20"}, record.Changes["quantity"])
	})

	t.Run("second record for the same entry is refused", func(t *testing.T) {
		store := memory.NewStore()
		recorder := appaudit.NewRecorder(store.Audit(), store.Products(), zap.NewNop())
		entry := seedAppliedEntry(t, store, "WH-001", stock.DirectionInbound, 10, 0, 10)

		require.NoError(t, recorder.RecordMovement(ctx, entry))
		require.Error(t, recorder.RecordMovement(ctx, entry))

		records, err := recorder.Recent(ctx, 10)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("pending entry is not auditable", func(t *testing.T) {
		store := memory.NewStore()
		recorder := appaudit.NewRecorder(store.Audit(), store.Products(), zap.NewNop())

		product, err := stock.NewProduct("WH-090", "Steel Drum")
		require.NoError(t, err)
		require.NoError(t, store.Products().Save(ctx, product))

		entry, err := stock.NewLedgerEntry(product.ID, stock.DirectionInbound, 5)
		require.NoError(t, err)
		require.NoError(t, store.Ledger().Append(ctx, entry))

		require.Error(t, recorder.RecordMovement(ctx, entry))
	})
}

func TestReconciler_Sweep(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	recorder := appaudit.NewRecorder(store.Audit(), store.Products(), zap.NewNop())
	reconciler := appaudit.NewReconciler(store.Ledger(), store.Audit(), store.Products(), zap.NewNop())

	audited := seedAppliedEntry(t, store, "WH-001", stock.DirectionInbound, 10, 0, 10)
	require.NoError(t, recorder.RecordMovement(ctx, audited))

	orphanOne := seedAppliedEntry(t, store, "WH-002", stock.DirectionOutbound, 3, 10, 7)
	orphanTwo := seedAppliedEntry(t, store, "WH-003", stock.DirectionInbound, 5, 7, 12)

	written, err := reconciler.Sweep(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, written)

	for _, entry := range []*stock.LedgerEntry{orphanOne, orphanTwo} {
		exists, err := store.Audit().ExistsForLedgerEntry(ctx, entry.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	}

	records, err := store.Audit().Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, audit.VerbReconcile, records[0].Verb)

	// Nothing left to repair.
	written, err = reconciler.Sweep(ctx)
	require.NoError(t, err)
	assert.Zero(t, written)
}
