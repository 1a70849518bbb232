package telemetry

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"

	appstock "github.com/warehouse/backend/internal/application/stock"
)

// StockLevelProvider supplies the data the periodic collector reports.
// The interface keeps the telemetry layer from depending on the stock domain.
type StockLevelProvider interface {
	CountLowStock(ctx context.Context) (int64, error)
}

// MovementMetrics tracks the warehouse movement pipeline: applied and
// rejected movements, apply latency, and a periodically collected low-stock
// gauge.
type MovementMetrics struct {
	logger *zap.Logger

	appliedTotal  *Counter
	rejectedTotal *Counter
	applyDuration *Histogram
	lowStockCount *Gauge

	provider StockLevelProvider
	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewMovementMetrics creates the movement metrics instruments
func NewMovementMetrics(meter metric.Meter, logger *zap.Logger) (*MovementMetrics, error) {
	mm := &MovementMetrics{
		logger:   logger,
		stopChan: make(chan struct{}),
	}

	var err error
	mm.appliedTotal, err = NewCounter(
		meter,
		"wms_movement_applied_total",
		"Total number of applied stock movements",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	mm.rejectedTotal, err = NewCounter(
		meter,
		"wms_movement_rejected_total",
		"Total number of rejected stock movements",
		"{movements}",
	)
	if err != nil {
		return nil, err
	}

	mm.applyDuration, err = NewHistogram(
		meter,
		"wms_movement_apply_duration_seconds",
		"Time from ledger append to applied commit",
		"s",
	)
	if err != nil {
		return nil, err
	}

	mm.lowStockCount, err = NewGauge(
		meter,
		"wms_low_stock_count",
		"Number of active products at or below their low-stock threshold",
		"{products}",
	)
	if err != nil {
		return nil, err
	}

	return mm, nil
}

// MovementApplied records a successfully applied movement
func (mm *MovementMetrics) MovementApplied(ctx context.Context, direction string, duration time.Duration) {
	attrs := []attribute.KeyValue{attribute.String("direction", direction)}
	mm.appliedTotal.Inc(ctx, attrs...)
	mm.applyDuration.RecordDuration(ctx, duration, attrs...)
}

// MovementRejected records a rejected movement with its failure code
func (mm *MovementMetrics) MovementRejected(ctx context.Context, direction string, code string) {
	mm.rejectedTotal.Inc(ctx,
		attribute.String("direction", direction),
		attribute.String("code", code),
	)
}

// StartCollecting starts the periodic low-stock gauge collector.
// Safe to skip when no provider is configured.
func (mm *MovementMetrics) StartCollecting(provider StockLevelProvider, interval time.Duration) {
	if provider == nil {
		return
	}
	mm.provider = provider
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	mm.wg.Add(1)
	go func() {
		defer mm.wg.Done()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-mm.stopChan:
				return
			case <-ticker.C:
				mm.collect()
			}
		}
	}()
}

// Stop stops the periodic collector. Safe to call multiple times.
func (mm *MovementMetrics) Stop() {
	mm.stopOnce.Do(func() {
		close(mm.stopChan)
		mm.wg.Wait()
	})
}

func (mm *MovementMetrics) collect() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	count, err := mm.provider.CountLowStock(ctx)
	if err != nil {
		mm.logger.Warn("failed to collect low-stock count", zap.Error(err))
		return
	}
	mm.lowStockCount.Record(ctx, count)
}

// Ensure MovementMetrics implements the coordinator's metrics interface
var _ appstock.MovementMetrics = (*MovementMetrics)(nil)
