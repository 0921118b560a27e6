package app

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/service"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type countingReconciler struct {
	calls atomic.Int32
	opts  atomic.Value
	err   error
}

func (r *countingReconciler) Reconcile(_ context.Context, opts service.ReconcileOptions) (*model.ReconciliationReport, error) {
	r.calls.Add(1)
	r.opts.Store(opts)
	if r.err != nil {
		return nil, r.err
	}
	return &model.ReconciliationReport{
		Orphans: []*model.OrphanedSlot{{ResourceID: 1, SlotID: 2}},
	}, nil
}

func TestScheduler_RunsImmediatelyAndOnTick(t *testing.T) {
	reconciler := &countingReconciler{}
	opts := service.ReconcileOptions{Repair: true, Grace: time.Minute}
	s := NewScheduler(reconciler, 10*time.Millisecond, opts, zap.NewNop())

	s.Start(context.Background())
	assert.Eventually(t, func() bool { return reconciler.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	s.Stop()

	assert.Equal(t, opts, reconciler.opts.Load())

	// после Stop задача больше не запускается
	after := reconciler.calls.Load()
	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, after, reconciler.calls.Load())
}

func TestScheduler_StopIsIdempotent(t *testing.T) {
	s := NewScheduler(&countingReconciler{}, time.Hour, service.ReconcileOptions{}, zap.NewNop())
	s.Start(context.Background())

	assert.NotPanics(t, func() {
		s.Stop()
		s.Stop()
	})
}

func TestScheduler_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewScheduler(&countingReconciler{}, time.Hour, service.ReconcileOptions{}, zap.NewNop())
	s.Start(ctx)
	cancel()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reconciliation task did not stop after cancel")
	}
}

func TestScheduler_LogsFailuresAndUnrepairedOrphans(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	failing := &countingReconciler{err: errors.New("db down")}
	s := NewScheduler(failing, time.Hour, service.ReconcileOptions{}, zap.New(core))
	s.reconcile(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("Failed to reconcile reservations").Len())

	s = NewScheduler(&countingReconciler{}, time.Hour, service.ReconcileOptions{}, zap.New(core))
	s.reconcile(context.Background())
	assert.Equal(t, 1, logs.FilterMessage("Orphaned slots left after reconciliation").Len())
}
