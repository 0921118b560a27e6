package model

import (
	"time"

	"github.com/google/uuid"
)

type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "PENDING"   // зарезервировано, не используется
	ReservationStatusConfirmed ReservationStatus = "CONFIRMED" // единственный статус, который создаёт движок
	ReservationStatusFailed    ReservationStatus = "FAILED"    // зарезервировано, не используется
	ReservationStatusCancelled ReservationStatus = "CANCELLED" // зарезервировано, не используется
)

// Reservation неизменяемая запись об успешном бронировании слота
type Reservation struct {
	ID          uuid.UUID         `json:"id"`
	RequesterID string            `json:"requester_id"` // id пользователя или гостевая строка
	ResourceID  int64             `json:"resource_id"`
	SlotTime    time.Time         `json:"slot_time"` // копия времени слота на момент брони
	Status      ReservationStatus `json:"status"`
	Notes       string            `json:"notes,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`

	// Заполняется при чтении списка (не хранится в записи)
	Resource *ResourceSummary `json:"resource,omitempty"`
}

// SlotState состояние слота глазами конкретного пользователя.
// Нужен клиенту, который не знает, прошла ли его бронь.
type SlotState struct {
	ResourceID      int64     `json:"resource_id"`
	SlotTime        time.Time `json:"slot_time"`
	Exists          bool      `json:"exists"`
	IsReserved      bool      `json:"is_reserved"`
	HeldByRequester bool      `json:"held_by_requester"`
	LedgerRecorded  bool      `json:"ledger_recorded"`
}

// OrphanedSlot забронированный слот без подтверждённой записи в журнале
type OrphanedSlot struct {
	ResourceID int64     `json:"resource_id"`
	SlotID     int64     `json:"slot_id"`
	SlotTime   time.Time `json:"slot_time"`
	ReservedBy string    `json:"reserved_by"`
	Repaired   bool      `json:"repaired"`
}

// ReconciliationReport результат сверки слотов с журналом
type ReconciliationReport struct {
	CheckedSlots int             `json:"checked_slots"`
	Orphans      []*OrphanedSlot `json:"orphans"`
	Repaired     int             `json:"repaired"`
	StartedAt    time.Time       `json:"started_at"`
	FinishedAt   time.Time       `json:"finished_at"`
}
