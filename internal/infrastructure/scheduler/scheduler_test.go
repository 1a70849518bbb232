package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestPeriodic_RunsOnInterval(t *testing.T) {
	var runs atomic.Int64
	task := NewTask("counter", func(ctx context.Context) error {
		runs.Add(1)
		return nil
	})

	runner := NewPeriodic(Config{Interval: 5 * time.Millisecond, RunAtStart: true}, task, zap.NewNop())
	require.NoError(t, runner.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, runner.Stop(context.Background()))
}

func TestPeriodic_KeepsRunningAfterFailure(t *testing.T) {
	var runs atomic.Int64
	task := NewTask("flaky", func(ctx context.Context) error {
		if runs.Add(1) == 1 {
			return errors.New("transient")
		}
		return nil
	})

	runner := NewPeriodic(Config{Interval: 5 * time.Millisecond}, task, zap.NewNop())
	require.NoError(t, runner.Start(context.Background()))

	assert.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, runner.Stop(context.Background()))
}

func TestPeriodic_StartAndStopAreIdempotent(t *testing.T) {
	task := NewTask("noop", func(ctx context.Context) error { return nil })
	runner := NewPeriodic(Config{Interval: time.Minute}, task, zap.NewNop())

	require.NoError(t, runner.Start(context.Background()))
	require.NoError(t, runner.Start(context.Background()))

	require.NoError(t, runner.Stop(context.Background()))
	require.NoError(t, runner.Stop(context.Background()))
}

func TestPeriodic_StopWithoutStart(t *testing.T) {
	task := NewTask("noop", func(ctx context.Context) error { return nil })
	runner := NewPeriodic(Config{Interval: time.Minute}, task, zap.NewNop())

	require.NoError(t, runner.Stop(context.Background()))
}
