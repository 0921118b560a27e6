package model

import "time"

// Resource бронируемый специалист (врач) со своим списком слотов
type Resource struct {
	ID             int64     `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Specialization string    `json:"specialization"` // отделение, например Cardiology
	Bio            string    `json:"bio"`
	CreatedAt      time.Time `json:"created_at"`

	Slots []*Slot `json:"slots"`
}

// Summary возвращает короткое описание ресурса для списков записей
func (r *Resource) Summary() *ResourceSummary {
	if r == nil {
		return nil
	}
	return &ResourceSummary{
		ID:             r.ID,
		Name:           r.Name,
		Specialization: r.Specialization,
	}
}

// FindSlot ищет слот по времени
func (r *Resource) FindSlot(slotTime time.Time) *Slot {
	slotTime = NormalizeSlotTime(slotTime)
	for _, slot := range r.Slots {
		if slot.Time.Equal(slotTime) {
			return slot
		}
	}
	return nil
}

// ResourceSummary денормализованная информация о ресурсе в записи
type ResourceSummary struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization"`
}
