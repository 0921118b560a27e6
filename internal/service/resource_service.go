package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository"
	"go.uber.org/zap"
)

type ResourceService struct {
	resources repository.ResourceStore
	logger    *zap.Logger
}

func NewResourceService(resources repository.ResourceStore, logger *zap.Logger) *ResourceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ResourceService{
		resources: resources,
		logger:    logger,
	}
}

// CreateResourceInput данные нового ресурса
type CreateResourceInput struct {
	Name           string
	Email          string
	Specialization string
	Bio            string
	SlotTimes      []time.Time
}

// CreateResource создаёт ресурс с начальным набором свободных слотов
func (s *ResourceService) CreateResource(ctx context.Context, in CreateResourceInput) (*model.Resource, error) {
	name := strings.TrimSpace(in.Name)
	specialization := strings.TrimSpace(in.Specialization)
	if name == "" || specialization == "" {
		return nil, fmt.Errorf("%w: name and specialization required", ErrValidation)
	}

	resource := &model.Resource{
		Name:           name,
		Email:          strings.TrimSpace(in.Email),
		Specialization: specialization,
		Bio:            strings.TrimSpace(in.Bio),
	}
	for _, t := range in.SlotTimes {
		if t.IsZero() {
			return nil, fmt.Errorf("%w: slot time required", ErrValidation)
		}
		resource.Slots = append(resource.Slots, &model.Slot{Time: model.NormalizeSlotTime(t)})
	}

	if err := s.resources.Create(ctx, resource); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("create resource: %w", err)
	}

	s.logger.Info("Resource created",
		zap.Int64("resource_id", resource.ID),
		zap.String("name", resource.Name),
		zap.String("specialization", resource.Specialization),
		zap.Int("slots", len(resource.Slots)),
	)

	return resource, nil
}

// GetResource получает ресурс со слотами
func (s *ResourceService) GetResource(ctx context.Context, id int64) (*model.Resource, error) {
	resource, err := s.resources.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrResourceNotFound
		}
		return nil, fmt.Errorf("get resource: %w", err)
	}
	return resource, nil
}

// ListResources получает ресурсы отделения; пустое отделение: все ресурсы
func (s *ResourceService) ListResources(ctx context.Context, department string) ([]*model.Resource, error) {
	resources, err := s.resources.List(ctx, strings.TrimSpace(department))
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	return resources, nil
}

// AddSlot добавляет свободный слот ресурсу
func (s *ResourceService) AddSlot(ctx context.Context, resourceID int64, slotTime time.Time) (*model.Slot, error) {
	if slotTime.IsZero() {
		return nil, fmt.Errorf("%w: slot time required", ErrValidation)
	}

	slot := &model.Slot{Time: model.NormalizeSlotTime(slotTime)}
	err := s.resources.AddSlot(ctx, resourceID, slot)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return nil, ErrResourceNotFound
		case errors.Is(err, repository.ErrDuplicate):
			return nil, ErrDuplicateSlot
		}
		return nil, fmt.Errorf("add slot: %w", err)
	}

	s.logger.Info("Slot added",
		zap.Int64("resource_id", resourceID),
		zap.Int64("slot_id", slot.ID),
		zap.Time("slot_time", slot.Time),
	)

	return slot, nil
}

// DeleteSlot удаляет слот; забронированный слот удалить нельзя
func (s *ResourceService) DeleteSlot(ctx context.Context, resourceID, slotID int64) error {
	err := s.resources.DeleteSlot(ctx, resourceID, slotID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrNotFound):
			return ErrSlotNotFound
		case errors.Is(err, repository.ErrConflict):
			return ErrSlotReserved
		}
		return fmt.Errorf("delete slot: %w", err)
	}

	s.logger.Info("Slot deleted",
		zap.Int64("resource_id", resourceID),
		zap.Int64("slot_id", slotID),
	)
	return nil
}

// DeleteResource удаляет ресурс вместе со слотами; журнал бронирований не трогаем
func (s *ResourceService) DeleteResource(ctx context.Context, id int64) error {
	if err := s.resources.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrResourceNotFound
		}
		return fmt.Errorf("delete resource: %w", err)
	}

	s.logger.Info("Resource deleted", zap.Int64("resource_id", id))
	return nil
}
