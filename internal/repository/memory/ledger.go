package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/google/uuid"
)

type ledgerEntry struct {
	seq         int64
	reservation model.Reservation
}

// ReservationLedger журнал бронирований в памяти, только добавление
type ReservationLedger struct {
	mu        sync.RWMutex
	entries   []ledgerEntry
	resources *ResourceStore
	now       func() time.Time
}

// NewReservationLedger создаёт журнал; resources нужен для сводки о ресурсе и может быть nil
func NewReservationLedger(resources *ResourceStore) *ReservationLedger {
	return &ReservationLedger{
		resources: resources,
		now:       time.Now,
	}
}

func (l *ReservationLedger) Append(_ context.Context, reservation *model.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	reservation.SlotTime = model.NormalizeSlotTime(reservation.SlotTime)
	reservation.CreatedAt = l.now()

	stored := *reservation
	stored.Resource = nil

	l.mu.Lock()
	l.entries = append(l.entries, ledgerEntry{seq: int64(len(l.entries)), reservation: stored})
	l.mu.Unlock()
	return nil
}

func (l *ReservationLedger) ListByRequester(ctx context.Context, requesterID string) ([]*model.Reservation, error) {
	return l.list(ctx, func(r *model.Reservation) bool { return r.RequesterID == requesterID })
}

func (l *ReservationLedger) ListByResource(ctx context.Context, resourceID int64) ([]*model.Reservation, error) {
	return l.list(ctx, func(r *model.Reservation) bool { return r.ResourceID == resourceID })
}

func (l *ReservationLedger) HasConfirmed(_ context.Context, resourceID int64, slotTime time.Time) (bool, error) {
	slotTime = model.NormalizeSlotTime(slotTime)

	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, e := range l.entries {
		r := e.reservation
		if r.ResourceID == resourceID && r.SlotTime.Equal(slotTime) && r.Status == model.ReservationStatusConfirmed {
			return true, nil
		}
	}
	return false, nil
}

func (l *ReservationLedger) list(ctx context.Context, match func(*model.Reservation) bool) ([]*model.Reservation, error) {
	l.mu.RLock()
	var found []ledgerEntry
	for _, e := range l.entries {
		if match(&e.reservation) {
			found = append(found, e)
		}
	}
	l.mu.RUnlock()

	// новые первыми; при равном времени позже добавленные
	sort.Slice(found, func(i, j int) bool {
		a, b := found[i], found[j]
		if !a.reservation.CreatedAt.Equal(b.reservation.CreatedAt) {
			return a.reservation.CreatedAt.After(b.reservation.CreatedAt)
		}
		return a.seq > b.seq
	})

	result := make([]*model.Reservation, 0, len(found))
	for _, e := range found {
		r := e.reservation
		if l.resources != nil {
			if resource, err := l.resources.GetByID(ctx, r.ResourceID); err == nil {
				r.Resource = resource.Summary()
			}
		}
		result = append(result, &r)
	}
	return result, nil
}
