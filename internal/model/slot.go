package model

import "time"

// Slot момент времени у конкретного ресурса, который можно забронировать
type Slot struct {
	ID          int64      `json:"id"`
	ResourceID  int64      `json:"resource_id"`
	Time        time.Time  `json:"time"`
	IsReserved  bool       `json:"is_reserved"`
	ReservedBy  *string    `json:"-"` // кто забронировал, наружу не отдаём
	ReservedAt  *time.Time `json:"-"`
	HoldExpires *time.Time `json:"hold_expires_at"` // временное удержание, пока не используется
	CreatedAt   time.Time  `json:"created_at"`
}

// IsHeldBy проверяет что слот забронирован указанным пользователем
func (s *Slot) IsHeldBy(requesterID string) bool {
	return s.IsReserved && s.ReservedBy != nil && *s.ReservedBy == requesterID
}

// Clone возвращает независимую копию слота
func (s *Slot) Clone() *Slot {
	c := *s
	if s.ReservedBy != nil {
		by := *s.ReservedBy
		c.ReservedBy = &by
	}
	if s.ReservedAt != nil {
		at := *s.ReservedAt
		c.ReservedAt = &at
	}
	if s.HoldExpires != nil {
		h := *s.HoldExpires
		c.HoldExpires = &h
	}
	return &c
}

// NormalizeSlotTime приводит время к UTC с точностью до микросекунд (как хранит PostgreSQL)
func NormalizeSlotTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}
