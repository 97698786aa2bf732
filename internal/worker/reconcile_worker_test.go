package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taxi-travel/service-travel/internal/application"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) Sweep(ctx context.Context) (*application.SweepReport, error) {
	n := s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	return &application.SweepReport{Checked: int(n)}, nil
}

func TestReconcileWorker_SweepsOnInterval(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewReconcileWorker(sweeper, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Error(t, w.Start(context.Background()), "second start must fail")

	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()

	after := sweeper.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, sweeper.calls.Load(), "no sweeps after Stop")
	require.NotNil(t, w.LastReport())
}

func TestReconcileWorker_Disabled(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewReconcileWorker(sweeper, 0, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	time.Sleep(20 * time.Millisecond)
	w.Stop()
	assert.Zero(t, sweeper.calls.Load())
}

func TestReconcileWorker_FailedSweepKeepsRunning(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("db down")}
	w := NewReconcileWorker(sweeper, 10*time.Millisecond, zap.NewNop())

	require.NoError(t, w.Start(context.Background()))
	assert.Eventually(t, func() bool { return sweeper.calls.Load() >= 2 }, time.Second, 5*time.Millisecond)
	w.Stop()
	assert.Nil(t, w.LastReport())
}

func TestReconcileWorker_StopsWithContext(t *testing.T) {
	sweeper := &countingSweeper{}
	w := NewReconcileWorker(sweeper, 10*time.Millisecond, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	require.NoError(t, w.Start(ctx))
	cancel()
	w.Stop()
}
