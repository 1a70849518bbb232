package dashboard_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appaudit "github.com/warehouse/backend/internal/application/audit"
	"github.com/warehouse/backend/internal/application/dashboard"
	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
	"github.com/warehouse/backend/internal/infrastructure/persistence/memory"
)

var testNow = time.Date(2024, 6, 15, 14, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*dashboard.Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	recorder := appaudit.NewRecorder(store.Audit(), store.Products(), zap.NewNop())
	service := dashboard.NewService(store.Scope(), recorder, zap.NewNop()).
		WithClock(func() time.Time { return testNow })
	return service, store
}

func seedProduct(t *testing.T, store *memory.Store, sku string, quantity int64, archived bool) *stock.Product {
	t.Helper()
	product, err := stock.NewProduct(sku, "Product "+sku)
	require.NoError(t, err)
	product.Quantity = quantity
	if archived {
		product.Archive()
	}
	require.NoError(t, store.Products().Save(context.Background(), product))
	return product
}

// seedAppliedEntry appends an applied ledger entry backdated to createdAt
func seedAppliedEntry(t *testing.T, store *memory.Store, product *stock.Product, direction stock.MovementDirection, quantity int64, unitCost decimal.Decimal, createdAt time.Time) {
	t.Helper()
	ctx := context.Background()

	entry, err := stock.NewLedgerEntry(product.ID, direction, quantity)
	require.NoError(t, err)
	entry.WithUnitCost(unitCost)
	entry.CreatedAt = createdAt

	require.NoError(t, store.Ledger().Append(ctx, entry))
	require.NoError(t, entry.MarkApplied(0, quantity))
	require.NoError(t, store.Ledger().Finalize(ctx, entry))
}

func TestService_GetSummary(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	active := seedProduct(t, store, "WH-001", 100, false)
	low := seedProduct(t, store, "WH-002", 5, false)
	seedProduct(t, store, "WH-003", 3, true) // archived, excluded everywhere

	// Today's applied movements.
	seedAppliedEntry(t, store, active, stock.DirectionInbound, 10, decimal.NewFromFloat(2.5), testNow.Add(-time.Hour))
	seedAppliedEntry(t, store, active, stock.DirectionInbound, 4, decimal.NewFromInt(10), testNow.Add(-2*time.Hour))
	seedAppliedEntry(t, store, low, stock.DirectionOutbound, 7, decimal.Zero, testNow.Add(-3*time.Hour))

	// Yesterday's movement must not count.
	seedAppliedEntry(t, store, active, stock.DirectionInbound, 99, decimal.NewFromInt(99), testNow.AddDate(0, 0, -1))

	summary, err := service.GetSummary(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), summary.ActiveProducts)
	assert.Equal(t, int64(2), summary.TodayInbound)
	assert.Equal(t, int64(1), summary.TodayOutbound)
	assert.Equal(t, int64(1), summary.LowStockAlerts)
	// 10*2.5 + 4*10 = 65
	assert.Equal(t, "65", summary.TodayInboundValue.String())
}

func TestService_GetTransactionVolume(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)
	product := seedProduct(t, store, "WH-010", 100, false)

	day := func(offset int) time.Time {
		return time.Date(testNow.Year(), testNow.Month(), testNow.Day(), 9, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
	}

	seedAppliedEntry(t, store, product, stock.DirectionInbound, 1, decimal.Zero, day(0))
	seedAppliedEntry(t, store, product, stock.DirectionInbound, 1, decimal.Zero, day(-2))
	seedAppliedEntry(t, store, product, stock.DirectionOutbound, 1, decimal.Zero, day(-2))
	seedAppliedEntry(t, store, product, stock.DirectionOutbound, 1, decimal.Zero, day(-4))
	// Outside a 5-day window.
	seedAppliedEntry(t, store, product, stock.DirectionInbound, 1, decimal.Zero, day(-5))

	t.Run("returns requested window oldest first", func(t *testing.T) {
		points, err := service.GetTransactionVolume(ctx, 5)
		require.NoError(t, err)
		require.Len(t, points, 5)

		assert.Equal(t, "2024-06-11", points[0].Date)
		assert.Equal(t, "2024-06-15", points[4].Date)

		assert.Equal(t, int64(0), points[0].Inbound)
		assert.Equal(t, int64(1), points[0].Outbound)
		assert.Equal(t, int64(1), points[2].Inbound)
		assert.Equal(t, int64(1), points[2].Outbound)
		assert.Equal(t, int64(1), points[4].Inbound)
		assert.Equal(t, int64(0), points[4].Outbound)
	})

	t.Run("zero days uses the default window", func(t *testing.T) {
		points, err := service.GetTransactionVolume(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, points, 7)
	})

	t.Run("negative days is rejected", func(t *testing.T) {
		_, err := service.GetTransactionVolume(ctx, -1)
		require.ErrorIs(t, err, shared.ErrInvalidRequest)
	})
}

func TestService_GetRecentActivity(t *testing.T) {
	ctx := context.Background()
	service, store := newTestService(t)

	for i := 0; i < 25; i++ {
		record, err := audit.NewRecord("user-1", audit.VerbInbound, "product WH-001", audit.Diff{
			"quantity": {Old: "0", New: "10"},
		})
		require.NoError(t, err)
		require.NoError(t, store.Audit().Append(ctx, record))
	}

	t.Run("defaults to 20 newest first", func(t *testing.T) {
		activities, err := service.GetRecentActivity(ctx, 0)
		require.NoError(t, err)
		assert.Len(t, activities, 20)
		assert.Equal(t, audit.VerbInbound, activities[0].Verb)
		assert.Equal(t, "product WH-001", activities[0].Subject)
	})

	t.Run("carries the audit record id", func(t *testing.T) {
		activities, err := service.GetRecentActivity(ctx, 3)
		require.NoError(t, err)
		require.Len(t, activities, 3)

		for i, activity := range activities {
			assert.NotZero(t, activity.ID)
			if i > 0 {
				assert.Less(t, activity.ID, activities[i-1].ID, "newest first")
			}
		}
	})

	t.Run("honors explicit limit", func(t *testing.T) {
		activities, err := service.GetRecentActivity(ctx, 5)
		require.NoError(t, err)
		assert.Len(t, activities, 5)
	})
}
