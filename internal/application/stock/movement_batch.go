package stock

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/warehouse/backend/internal/domain/shared"
)

// RecordMovementBatch applies a batch of movements with per-item isolation:
// one rejected item never affects the others, and the result slice preserves
// request order regardless of completion order. Items are applied with bounded
// parallelism; items not yet started when the context is cancelled are skipped
// with ErrCancelled instead of being half-applied.
func (s *MovementService) RecordMovementBatch(ctx context.Context, requests []MovementRequest) []MovementResult {
	results := make([]MovementResult, len(requests))
	if len(requests) == 0 {
		return results
	}

	g := new(errgroup.Group)
	g.SetLimit(s.cfg.BatchConcurrency)

	for i := range requests {
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = MovementResult{Err: shared.ErrCancelled}
				return nil
			}
			entry, err := s.RecordMovement(ctx, requests[i])
			results[i] = MovementResult{Entry: entry, Err: err}
			return nil
		})
	}
	// Workers never return errors, failures live in the per-item results.
	_ = g.Wait()

	applied := 0
	for _, result := range results {
		if result.Err == nil {
			applied++
		}
	}
	s.logger.Info("movement batch processed",
		zap.Int("total", len(requests)),
		zap.Int("applied", applied),
		zap.Int("rejected", len(requests)-applied))

	return results
}
