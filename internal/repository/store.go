package repository

import (
	"context"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
)

// ResourceStore хранит ресурсы вместе со слотами.
// ReserveSlot единственный источник взаимного исключения при бронировании:
// реализация обязана выполнять его как одну атомарную условную операцию.
type ResourceStore interface {
	Create(ctx context.Context, resource *model.Resource) error
	GetByID(ctx context.Context, id int64) (*model.Resource, error)
	List(ctx context.Context, department string) ([]*model.Resource, error)
	Delete(ctx context.Context, id int64) error

	AddSlot(ctx context.Context, resourceID int64, slot *model.Slot) error
	DeleteSlot(ctx context.Context, resourceID, slotID int64) error
	GetSlot(ctx context.Context, resourceID int64, slotTime time.Time) (*model.Slot, error)
	ListReservedSlots(ctx context.Context) ([]*model.Slot, error)

	ReserveSlot(ctx context.Context, resourceID int64, slotTime time.Time, requesterID string) (*model.Slot, error)
}

// ReservationLedger журнал бронирований, только добавление
type ReservationLedger interface {
	Append(ctx context.Context, reservation *model.Reservation) error
	ListByRequester(ctx context.Context, requesterID string) ([]*model.Reservation, error)
	ListByResource(ctx context.Context, resourceID int64) ([]*model.Reservation, error)
	HasConfirmed(ctx context.Context, resourceID int64, slotTime time.Time) (bool, error)
}

// TriageAuditStore журнал классификаций
type TriageAuditStore interface {
	Create(ctx context.Context, audit *model.TriageAudit) error
}
