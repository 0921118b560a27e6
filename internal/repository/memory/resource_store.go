// Package memory содержит хранилища в памяти процесса.
// Используются для локального запуска (STORE_DRIVER=memory) и в тестах.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository"
)

type resourceEntry struct {
	mu       sync.Mutex
	resource *model.Resource
}

// ResourceStore хранит ресурсы в памяти.
// Каждый ресурс защищён своим мьютексом, это и есть атомарная условная
// операция для ReserveSlot; данные наружу отдаются только копиями.
type ResourceStore struct {
	mu         sync.RWMutex
	resources  map[int64]*resourceEntry
	nextID     atomic.Int64
	nextSlotID atomic.Int64
	now        func() time.Time
}

func NewResourceStore() *ResourceStore {
	return &ResourceStore{
		resources: make(map[int64]*resourceEntry),
		now:       time.Now,
	}
}

// Create создаёт ресурс со слотами
func (s *ResourceStore) Create(_ context.Context, resource *model.Resource) error {
	seen := make(map[time.Time]struct{}, len(resource.Slots))
	for _, slot := range resource.Slots {
		t := model.NormalizeSlotTime(slot.Time)
		if _, dup := seen[t]; dup {
			return repository.ErrDuplicate
		}
		seen[t] = struct{}{}
	}

	resource.ID = s.nextID.Add(1)
	resource.CreatedAt = s.now()

	stored := cloneResource(resource)
	stored.Slots = nil
	for _, slot := range resource.Slots {
		slot.ID = s.nextSlotID.Add(1)
		slot.ResourceID = resource.ID
		slot.Time = model.NormalizeSlotTime(slot.Time)
		slot.CreatedAt = resource.CreatedAt
		stored.Slots = append(stored.Slots, slot.Clone())
	}
	sortSlots(stored.Slots)

	s.mu.Lock()
	s.resources[resource.ID] = &resourceEntry{resource: stored}
	s.mu.Unlock()
	return nil
}

// GetByID получает копию ресурса
func (s *ResourceStore) GetByID(_ context.Context, id int64) (*model.Resource, error) {
	entry, ok := s.entry(id)
	if !ok {
		return nil, repository.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()
	return cloneResource(entry.resource), nil
}

// List получает ресурсы отделения, отсортированные по имени
func (s *ResourceStore) List(_ context.Context, department string) ([]*model.Resource, error) {
	s.mu.RLock()
	entries := make([]*resourceEntry, 0, len(s.resources))
	for _, entry := range s.resources {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	var resources []*model.Resource
	for _, entry := range entries {
		entry.mu.Lock()
		if department == "" || entry.resource.Specialization == department {
			resources = append(resources, cloneResource(entry.resource))
		}
		entry.mu.Unlock()
	}

	sort.Slice(resources, func(i, j int) bool {
		if resources[i].Name != resources[j].Name {
			return resources[i].Name < resources[j].Name
		}
		return resources[i].ID < resources[j].ID
	})
	return resources, nil
}

// Delete удаляет ресурс вместе со слотами
func (s *ResourceStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.resources[id]
	if !ok {
		return repository.ErrNotFound
	}

	// Дожидаемся бронирования, которое могло держать ресурс в этот момент
	entry.mu.Lock()
	delete(s.resources, id)
	entry.mu.Unlock()
	return nil
}

// AddSlot добавляет слот, время должно быть уникальным внутри ресурса
func (s *ResourceStore) AddSlot(_ context.Context, resourceID int64, slot *model.Slot) error {
	entry, ok := s.entry(resourceID)
	if !ok {
		return repository.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	slot.Time = model.NormalizeSlotTime(slot.Time)
	if entry.resource.FindSlot(slot.Time) != nil {
		return repository.ErrDuplicate
	}

	slot.ID = s.nextSlotID.Add(1)
	slot.ResourceID = resourceID
	slot.CreatedAt = s.now()
	entry.resource.Slots = append(entry.resource.Slots, slot.Clone())
	sortSlots(entry.resource.Slots)
	return nil
}

// DeleteSlot удаляет слот, только если он не забронирован
func (s *ResourceStore) DeleteSlot(_ context.Context, resourceID, slotID int64) error {
	entry, ok := s.entry(resourceID)
	if !ok {
		return repository.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	slots := entry.resource.Slots
	for i, slot := range slots {
		if slot.ID != slotID {
			continue
		}
		if slot.IsReserved {
			return repository.ErrConflict
		}
		entry.resource.Slots = append(slots[:i:i], slots[i+1:]...)
		return nil
	}
	return repository.ErrNotFound
}

// GetSlot получает копию слота по времени
func (s *ResourceStore) GetSlot(_ context.Context, resourceID int64, slotTime time.Time) (*model.Slot, error) {
	entry, ok := s.entry(resourceID)
	if !ok {
		return nil, repository.ErrNotFound
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	slot := entry.resource.FindSlot(slotTime)
	if slot == nil {
		return nil, repository.ErrNotFound
	}
	return slot.Clone(), nil
}

// ListReservedSlots получает все забронированные слоты
func (s *ResourceStore) ListReservedSlots(_ context.Context) ([]*model.Slot, error) {
	s.mu.RLock()
	entries := make([]*resourceEntry, 0, len(s.resources))
	for _, entry := range s.resources {
		entries = append(entries, entry)
	}
	s.mu.RUnlock()

	var slots []*model.Slot
	for _, entry := range entries {
		entry.mu.Lock()
		for _, slot := range entry.resource.Slots {
			if slot.IsReserved {
				slots = append(slots, slot.Clone())
			}
		}
		entry.mu.Unlock()
	}

	sort.Slice(slots, func(i, j int) bool {
		if slots[i].ResourceID != slots[j].ResourceID {
			return slots[i].ResourceID < slots[j].ResourceID
		}
		return slots[i].Time.Before(slots[j].Time)
	})
	return slots, nil
}

// ReserveSlot атомарно бронирует свободный слот.
// Проверка флага и его установка выполняются под одним мьютексом ресурса.
func (s *ResourceStore) ReserveSlot(_ context.Context, resourceID int64, slotTime time.Time, requesterID string) (*model.Slot, error) {
	entry, ok := s.entry(resourceID)
	if !ok {
		return nil, repository.ErrConflict
	}

	entry.mu.Lock()
	defer entry.mu.Unlock()

	slot := entry.resource.FindSlot(slotTime)
	if slot == nil || slot.IsReserved {
		return nil, repository.ErrConflict
	}

	by, at := requesterID, s.now()
	slot.IsReserved = true
	slot.ReservedBy = &by
	slot.ReservedAt = &at
	return slot.Clone(), nil
}

func (s *ResourceStore) entry(id int64) (*resourceEntry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.resources[id]
	return entry, ok
}

func cloneResource(r *model.Resource) *model.Resource {
	c := *r
	c.Slots = make([]*model.Slot, 0, len(r.Slots))
	for _, slot := range r.Slots {
		c.Slots = append(c.Slots, slot.Clone())
	}
	return &c
}

func sortSlots(slots []*model.Slot) {
	sort.Slice(slots, func(i, j int) bool {
		return slots[i].Time.Before(slots[j].Time)
	})
}
