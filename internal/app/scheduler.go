package app

import (
	"context"
	"sync"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/service"
	"go.uber.org/zap"
)

// Reconciler то, что планировщик запускает по таймеру
type Reconciler interface {
	Reconcile(ctx context.Context, opts service.ReconcileOptions) (*model.ReconciliationReport, error)
}

// Scheduler управляет фоновыми задачами
type Scheduler struct {
	reconciler Reconciler
	interval   time.Duration
	opts       service.ReconcileOptions
	logger     *zap.Logger
	stopChan   chan struct{}
	stopOnce   sync.Once
	wg         sync.WaitGroup
}

// NewScheduler создаёт новый планировщик
func NewScheduler(reconciler Reconciler, interval time.Duration, opts service.ReconcileOptions, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		reconciler: reconciler,
		interval:   interval,
		opts:       opts,
		logger:     logger,
		stopChan:   make(chan struct{}),
	}
}

// Start запускает фоновые задачи
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("Starting background scheduler",
		zap.Duration("interval", s.interval),
		zap.Bool("repair", s.opts.Repair),
	)

	s.wg.Add(1)
	go s.runReconciliationTask(ctx)
}

// Stop останавливает фоновые задачи и ждёт завершения текущей сверки
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info("Stopping background scheduler")
		close(s.stopChan)
	})
	s.wg.Wait()
}

// runReconciliationTask периодически сверяет слоты с журналом бронирований
func (s *Scheduler) runReconciliationTask(ctx context.Context) {
	defer s.wg.Done()

	// Первый запуск сразу при старте
	s.reconcile(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.reconcile(ctx)
		case <-s.stopChan:
			s.logger.Info("Reconciliation task stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Reconciliation task cancelled")
			return
		}
	}
}

func (s *Scheduler) reconcile(ctx context.Context) {
	report, err := s.reconciler.Reconcile(ctx, s.opts)
	if err != nil {
		s.logger.Error("Failed to reconcile reservations", zap.Error(err))
		return
	}

	if len(report.Orphans) > report.Repaired {
		s.logger.Warn("Orphaned slots left after reconciliation",
			zap.Int("orphans", len(report.Orphans)),
			zap.Int("repaired", report.Repaired),
		)
	}
}
