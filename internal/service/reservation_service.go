package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/smartcare/internal/metrics"
	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

const notifyTimeout = 10 * time.Second

var tracer = otel.Tracer("smartcare.internal.service")

// ReservationNotifier уведомляет о подтверждённых бронированиях
type ReservationNotifier interface {
	NotifyReservation(ctx context.Context, reservation *model.Reservation) error
}

type ReservationService struct {
	resources repository.ResourceStore
	ledger    repository.ReservationLedger
	notifier  ReservationNotifier
	metrics   *metrics.ReservationMetrics
	logger    *zap.Logger
	now       func() time.Time
}

func NewReservationService(
	resources repository.ResourceStore,
	ledger repository.ReservationLedger,
	notifier ReservationNotifier,
	m *metrics.ReservationMetrics,
	logger *zap.Logger,
) *ReservationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReservationService{
		resources: resources,
		ledger:    ledger,
		notifier:  notifier,
		metrics:   m,
		logger:    logger,
		now:       time.Now,
	}
}

// ReserveRequest запрос на бронирование слота
type ReserveRequest struct {
	ResourceID  int64
	SlotTime    time.Time
	RequesterID string
	Notes       string
}

func (r ReserveRequest) validate() error {
	var missing []string
	if r.ResourceID <= 0 {
		missing = append(missing, "resourceId")
	}
	if r.SlotTime.IsZero() {
		missing = append(missing, "slotTime")
	}
	if strings.TrimSpace(r.RequesterID) == "" {
		missing = append(missing, "requesterId")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrValidation, strings.Join(missing, ", "))
	}
	return nil
}

// Reserve бронирует слот. Из любого числа одновременных запросов на один слот
// подтверждается ровно один, остальные получают ErrSlotUnavailable.
func (s *ReservationService) Reserve(ctx context.Context, req ReserveRequest) (*model.Reservation, error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Reserve")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("resource.id", req.ResourceID),
		attribute.String("slot.time", req.SlotTime.UTC().Format(time.RFC3339)),
	)

	started := s.now()
	observe := func(outcome string) {
		s.metrics.ObserveAttempt(outcome, s.now().Sub(started).Seconds())
	}

	if err := req.validate(); err != nil {
		observe(metrics.OutcomeInvalid)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}

	slotTime := model.NormalizeSlotTime(req.SlotTime)
	requesterID := strings.TrimSpace(req.RequesterID)

	// После переключения слота запись в журнал должна дойти до конца,
	// даже если клиент уже отключился
	ctx = context.WithoutCancel(ctx)

	_, err := s.resources.ReserveSlot(ctx, req.ResourceID, slotTime, requesterID)
	if err != nil {
		if errors.Is(err, repository.ErrConflict) {
			observe(metrics.OutcomeRejected)
			s.logger.Info("Reservation rejected",
				zap.Int64("resource_id", req.ResourceID),
				zap.Time("slot_time", slotTime),
				zap.String("requester_id", requesterID),
			)
			return nil, ErrSlotUnavailable
		}
		observe(metrics.OutcomeError)
		span.RecordError(err)
		span.SetStatus(codes.Error, "reserve slot failed")
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	reservation := &model.Reservation{
		RequesterID: requesterID,
		ResourceID:  req.ResourceID,
		SlotTime:    slotTime,
		Status:      model.ReservationStatusConfirmed,
		Notes:       strings.TrimSpace(req.Notes),
	}

	if err := s.ledger.Append(ctx, reservation); err != nil {
		observe(metrics.OutcomeLedgerFailure)
		s.logger.Error("Slot reserved but ledger append failed",
			zap.Int64("resource_id", req.ResourceID),
			zap.Time("slot_time", slotTime),
			zap.String("requester_id", requesterID),
			zap.Error(err),
		)
		span.RecordError(err)
		span.SetStatus(codes.Error, "ledger append failed")
		return nil, fmt.Errorf("%w: %w", ErrLedgerWrite, err)
	}

	observe(metrics.OutcomeConfirmed)
	s.logger.Info("Slot reserved",
		zap.String("reservation_id", reservation.ID.String()),
		zap.Int64("resource_id", req.ResourceID),
		zap.Time("slot_time", slotTime),
		zap.String("requester_id", requesterID),
	)

	s.notify(reservation)

	return reservation, nil
}

func (s *ReservationService) notify(reservation *model.Reservation) {
	if s.notifier == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		msg := *reservation
		if resource, err := s.resources.GetByID(ctx, reservation.ResourceID); err == nil {
			msg.Resource = resource.Summary()
		}

		if err := s.notifier.NotifyReservation(ctx, &msg); err != nil {
			s.logger.Warn("Failed to send reservation notification",
				zap.String("reservation_id", reservation.ID.String()),
				zap.Error(err),
			)
		}
	}()
}

// CheckSlot показывает фактическое состояние слота; вызывающий использует его,
// когда исход Reserve неизвестен (обрыв соединения, ошибка журнала)
func (s *ReservationService) CheckSlot(ctx context.Context, resourceID int64, slotTime time.Time, requesterID string) (*model.SlotState, error) {
	if resourceID <= 0 || slotTime.IsZero() {
		return nil, fmt.Errorf("%w: resourceId and slotTime required", ErrValidation)
	}
	slotTime = model.NormalizeSlotTime(slotTime)
	requesterID = strings.TrimSpace(requesterID)

	state := &model.SlotState{ResourceID: resourceID, SlotTime: slotTime}

	slot, err := s.resources.GetSlot(ctx, resourceID, slotTime)
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return state, nil
	case err != nil:
		return nil, fmt.Errorf("get slot: %w", err)
	}

	state.Exists = true
	state.IsReserved = slot.IsReserved
	state.HeldByRequester = requesterID != "" && slot.IsHeldBy(requesterID)

	if slot.IsReserved {
		recorded, err := s.ledger.HasConfirmed(ctx, resourceID, slotTime)
		if err != nil {
			return nil, fmt.Errorf("check ledger: %w", err)
		}
		state.LedgerRecorded = recorded
	}

	return state, nil
}

// ListByRequester получает бронирования пользователя, новые первыми
func (s *ReservationService) ListByRequester(ctx context.Context, requesterID string) ([]*model.Reservation, error) {
	requesterID = strings.TrimSpace(requesterID)
	if requesterID == "" {
		return nil, fmt.Errorf("%w: requesterId required", ErrValidation)
	}
	return s.ledger.ListByRequester(ctx, requesterID)
}

// ListByResource получает бронирования ресурса, новые первыми
func (s *ReservationService) ListByResource(ctx context.Context, resourceID int64) ([]*model.Reservation, error) {
	if resourceID <= 0 {
		return nil, fmt.Errorf("%w: resourceId required", ErrValidation)
	}
	return s.ledger.ListByResource(ctx, resourceID)
}

// ReconcileOptions параметры сверки
type ReconcileOptions struct {
	// Repair дописывает недостающие CONFIRMED записи в журнал
	Repair bool
	// Grace слоты, забронированные позже now-Grace, не проверяются
	Grace time.Duration
}

// Reconcile сверяет забронированные слоты с журналом и находит слоты,
// для которых подтверждённой записи нет
func (s *ReservationService) Reconcile(ctx context.Context, opts ReconcileOptions) (*model.ReconciliationReport, error) {
	ctx, span := tracer.Start(ctx, "ReservationService.Reconcile")
	defer span.End()

	report := &model.ReconciliationReport{StartedAt: s.now()}
	cutoff := report.StartedAt.Add(-opts.Grace)

	slots, err := s.resources.ListReservedSlots(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list reserved slots: %w", err)
	}

	for _, slot := range slots {
		if slot.ReservedAt != nil && slot.ReservedAt.After(cutoff) {
			continue
		}
		report.CheckedSlots++

		recorded, err := s.ledger.HasConfirmed(ctx, slot.ResourceID, slot.Time)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("check ledger: %w", err)
		}
		if recorded {
			continue
		}

		orphan := &model.OrphanedSlot{
			ResourceID: slot.ResourceID,
			SlotID:     slot.ID,
			SlotTime:   slot.Time,
		}
		if slot.ReservedBy != nil {
			orphan.ReservedBy = *slot.ReservedBy
		}

		s.logger.Warn("Reserved slot has no confirmed reservation",
			zap.Int64("resource_id", slot.ResourceID),
			zap.Int64("slot_id", slot.ID),
			zap.Time("slot_time", slot.Time),
			zap.String("reserved_by", orphan.ReservedBy),
		)

		if opts.Repair && orphan.ReservedBy != "" {
			err := s.ledger.Append(ctx, &model.Reservation{
				RequesterID: orphan.ReservedBy,
				ResourceID:  slot.ResourceID,
				SlotTime:    slot.Time,
				Status:      model.ReservationStatusConfirmed,
				Notes:       "recorded by reconciliation",
			})
			if err != nil {
				s.logger.Error("Failed to repair reservation ledger",
					zap.Int64("resource_id", slot.ResourceID),
					zap.Int64("slot_id", slot.ID),
					zap.Error(err),
				)
			} else {
				orphan.Repaired = true
				report.Repaired++
			}
		}

		report.Orphans = append(report.Orphans, orphan)
	}

	report.FinishedAt = s.now()
	s.metrics.SetOrphanedSlots(len(report.Orphans) - report.Repaired)

	s.logger.Info("Reconciliation completed",
		zap.Int("checked", report.CheckedSlots),
		zap.Int("orphans", len(report.Orphans)),
		zap.Int("repaired", report.Repaired),
	)

	return report, nil
}
