package dashboard

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	appstock "github.com/warehouse/backend/internal/application/stock"
	"github.com/warehouse/backend/internal/domain/audit"
	"github.com/warehouse/backend/internal/domain/shared"
	"github.com/warehouse/backend/internal/domain/stock"
)

const (
	defaultVolumeDays    = 7
	defaultActivityLimit = 20
)

// ActivityFeed serves the recent audit records for the dashboard
type ActivityFeed interface {
	Recent(ctx context.Context, limit int) ([]audit.Record, error)
}

// Service aggregates ledger and product data into dashboard read models.
// It never writes; everything here is derived from committed state.
type Service struct {
	scope  appstock.TransactionScope
	feed   ActivityFeed
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new dashboard service
func NewService(scope appstock.TransactionScope, feed ActivityFeed, logger *zap.Logger) *Service {
	return &Service{
		scope:  scope,
		feed:   feed,
		logger: logger,
		now:    time.Now,
	}
}

// WithClock overrides the time source, used by tests
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// GetSummary returns the dashboard snapshot: active product count, today's
// applied movement counts and inbound value, and the low stock alert count.
func (s *Service) GetSummary(ctx context.Context) (*Summary, error) {
	dayStart := startOfDay(s.now())
	dayEnd := dayStart.AddDate(0, 0, 1)

	summary := &Summary{}
	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		var err error
		if summary.ActiveProducts, err = repos.Products().CountActive(ctx); err != nil {
			return fmt.Errorf("count active products: %w", err)
		}
		if summary.LowStockAlerts, err = repos.Products().CountLowStock(ctx); err != nil {
			return fmt.Errorf("count low stock products: %w", err)
		}
		if summary.TodayInbound, err = repos.Ledger().CountByDirectionAndDateRange(ctx, stock.DirectionInbound, dayStart, dayEnd); err != nil {
			return fmt.Errorf("count inbound movements: %w", err)
		}
		if summary.TodayOutbound, err = repos.Ledger().CountByDirectionAndDateRange(ctx, stock.DirectionOutbound, dayStart, dayEnd); err != nil {
			return fmt.Errorf("count outbound movements: %w", err)
		}
		if summary.TodayInboundValue, err = repos.Ledger().SumValueByDirectionAndDateRange(ctx, stock.DirectionInbound, dayStart, dayEnd); err != nil {
			return fmt.Errorf("sum inbound value: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return summary, nil
}

// GetTransactionVolume returns per-day applied movement counts for the last
// `days` days, oldest day first and today included. Zero means the default
// window; a negative window is rejected.
func (s *Service) GetTransactionVolume(ctx context.Context, days int) ([]VolumePoint, error) {
	if days == 0 {
		days = defaultVolumeDays
	}
	if days < 0 {
		return nil, fmt.Errorf("%w: volume window must be positive, got %d", shared.ErrInvalidRequest, days)
	}

	today := startOfDay(s.now())
	points := make([]VolumePoint, 0, days)

	err := s.scope.Execute(ctx, func(repos appstock.TransactionalRepositories) error {
		for offset := days - 1; offset >= 0; offset-- {
			dayStart := today.AddDate(0, 0, -offset)
			dayEnd := dayStart.AddDate(0, 0, 1)

			inbound, err := repos.Ledger().CountByDirectionAndDateRange(ctx, stock.DirectionInbound, dayStart, dayEnd)
			if err != nil {
				return fmt.Errorf("count inbound for %s: %w", dayStart.Format(time.DateOnly), err)
			}
			outbound, err := repos.Ledger().CountByDirectionAndDateRange(ctx, stock.DirectionOutbound, dayStart, dayEnd)
			if err != nil {
				return fmt.Errorf("count outbound for %s: %w", dayStart.Format(time.DateOnly), err)
			}

			points = append(points, VolumePoint{
				Date:     dayStart.Format(time.DateOnly),
				Inbound:  inbound,
				Outbound: outbound,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return points, nil
}

// GetRecentActivity returns the newest audit records, newest first.
// A non-positive limit falls back to the default feed size.
func (s *Service) GetRecentActivity(ctx context.Context, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = defaultActivityLimit
	}
	records, err := s.feed.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(records))
	for _, record := range records {
		activities = append(activities, Activity{
			ID:        record.ID,
			ActorID:   record.ActorID,
			Verb:      record.Verb,
			Subject:   record.Subject,
			Changes:   record.Changes,
			Timestamp: record.CreatedAt.Format(time.RFC3339),
		})
	}
	return activities, nil
}

func startOfDay(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
