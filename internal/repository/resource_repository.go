package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository/base"
	"github.com/jackc/pgx/v5"
)

const slotColumns = `id, resource_id, slot_time, is_reserved, reserved_by, reserved_at, hold_expires_at, created_at`

type scanner interface {
	Scan(dest ...any) error
}

type ResourceRepository struct {
	*base.Repository
}

func NewResourceRepository(db base.DB) *ResourceRepository {
	return &ResourceRepository{Repository: base.NewRepository(db)}
}

// Create создаёт ресурс вместе с начальными слотами в одной транзакции
func (r *ResourceRepository) Create(ctx context.Context, resource *model.Resource) error {
	err := r.InTx(ctx, func(tx pgx.Tx) error {
		query := `
			INSERT INTO resources (name, email, specialization, bio)
			VALUES ($1, $2, $3, $4)
			RETURNING id, created_at
		`

		err := tx.QueryRow(ctx, query,
			resource.Name,
			resource.Email,
			resource.Specialization,
			resource.Bio,
		).Scan(&resource.ID, &resource.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert resource: %w", err)
		}

		for _, slot := range resource.Slots {
			if err := insertSlot(ctx, tx, resource.ID, slot); err != nil {
				return err
			}
		}
		return nil
	})

	if err != nil {
		if base.IsUniqueViolation(err) {
			return fmt.Errorf("create resource: %w", ErrDuplicate)
		}
		return fmt.Errorf("create resource: %w", err)
	}

	return nil
}

// GetByID получает ресурс со слотами
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*model.Resource, error) {
	query := `
		SELECT id, name, email, specialization, bio, created_at
		FROM resources
		WHERE id = $1
	`

	var resource model.Resource
	err := r.QueryRow(ctx, query, id).Scan(
		&resource.ID,
		&resource.Name,
		&resource.Email,
		&resource.Specialization,
		&resource.Bio,
		&resource.CreatedAt,
	)
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get resource by id: %w", err)
	}

	slots, err := r.slotsFor(ctx, []int64{id})
	if err != nil {
		return nil, err
	}
	resource.Slots = slots[id]

	return &resource, nil
}

// List получает ресурсы отделения (пустая строка: все ресурсы)
func (r *ResourceRepository) List(ctx context.Context, department string) ([]*model.Resource, error) {
	query := `
		SELECT id, name, email, specialization, bio, created_at
		FROM resources
		WHERE $1 = '' OR specialization = $1
		ORDER BY name, id
	`

	rows, err := r.Query(ctx, query, department)
	if err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}
	defer rows.Close()

	var resources []*model.Resource
	var ids []int64
	for rows.Next() {
		var resource model.Resource
		err := rows.Scan(
			&resource.ID,
			&resource.Name,
			&resource.Email,
			&resource.Specialization,
			&resource.Bio,
			&resource.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan resource: %w", err)
		}
		resources = append(resources, &resource)
		ids = append(ids, resource.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list resources: %w", err)
	}

	if len(ids) == 0 {
		return resources, nil
	}

	slots, err := r.slotsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, resource := range resources {
		resource.Slots = slots[resource.ID]
	}

	return resources, nil
}

// Delete удаляет ресурс; слоты удаляются каскадом, журнал бронирований остаётся
func (r *ResourceRepository) Delete(ctx context.Context, id int64) error {
	affected, err := r.ExecAffected(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete resource: %w", err)
	}

	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

// AddSlot добавляет слот ресурсу
func (r *ResourceRepository) AddSlot(ctx context.Context, resourceID int64, slot *model.Slot) error {
	err := insertSlot(ctx, r.DB(), resourceID, slot)
	if err != nil {
		switch {
		case base.IsUniqueViolation(err):
			return fmt.Errorf("add slot: %w", ErrDuplicate)
		case base.IsForeignKeyViolation(err):
			return ErrNotFound
		}
		return err
	}
	return nil
}

// DeleteSlot удаляет слот, только если он ещё не забронирован
func (r *ResourceRepository) DeleteSlot(ctx context.Context, resourceID, slotID int64) error {
	query := `
		DELETE FROM resource_slots
		WHERE id = $1 AND resource_id = $2 AND is_reserved = FALSE
	`

	affected, err := r.ExecAffected(ctx, query, slotID, resourceID)
	if err != nil {
		return fmt.Errorf("delete slot: %w", err)
	}
	if affected > 0 {
		return nil
	}

	// Ничего не удалили: либо слота нет, либо его уже забронировали
	var reserved bool
	err = r.QueryRow(ctx,
		`SELECT is_reserved FROM resource_slots WHERE id = $1 AND resource_id = $2`,
		slotID, resourceID,
	).Scan(&reserved)
	if err != nil {
		if base.IsNotFound(err) {
			return ErrNotFound
		}
		return fmt.Errorf("check slot: %w", err)
	}

	return ErrConflict
}

// GetSlot получает слот ресурса по времени
func (r *ResourceRepository) GetSlot(ctx context.Context, resourceID int64, slotTime time.Time) (*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM resource_slots
		WHERE resource_id = $1 AND slot_time = $2
	`

	slot, err := scanSlot(r.QueryRow(ctx, query, resourceID, model.NormalizeSlotTime(slotTime)))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get slot: %w", err)
	}

	return slot, nil
}

// ListReservedSlots получает все забронированные слоты (для сверки с журналом)
func (r *ResourceRepository) ListReservedSlots(ctx context.Context) ([]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM resource_slots
		WHERE is_reserved = TRUE
		ORDER BY resource_id, slot_time
	`

	rows, err := r.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list reserved slots: %w", err)
	}
	defer rows.Close()

	var slots []*model.Slot
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		slots = append(slots, slot)
	}

	return slots, rows.Err()
}

// ReserveSlot атомарно бронирует слот: обновление проходит только если слот
// существует и ещё свободен. PostgreSQL сериализует конкурирующие UPDATE
// одной строки, поэтому из N параллельных вызовов успешен ровно один.
func (r *ResourceRepository) ReserveSlot(ctx context.Context, resourceID int64, slotTime time.Time, requesterID string) (*model.Slot, error) {
	query := `
		UPDATE resource_slots
		SET is_reserved = TRUE, reserved_by = $3, reserved_at = now()
		WHERE resource_id = $1 AND slot_time = $2 AND is_reserved = FALSE
		RETURNING ` + slotColumns

	slot, err := scanSlot(r.QueryRow(ctx, query, resourceID, model.NormalizeSlotTime(slotTime), requesterID))
	if err != nil {
		if base.IsNotFound(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("reserve slot: %w", err)
	}

	return slot, nil
}

func (r *ResourceRepository) slotsFor(ctx context.Context, resourceIDs []int64) (map[int64][]*model.Slot, error) {
	query := `
		SELECT ` + slotColumns + `
		FROM resource_slots
		WHERE resource_id = ANY($1)
		ORDER BY resource_id, slot_time
	`

	rows, err := r.Query(ctx, query, resourceIDs)
	if err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}
	defer rows.Close()

	result := make(map[int64][]*model.Slot, len(resourceIDs))
	for rows.Next() {
		slot, err := scanSlot(rows)
		if err != nil {
			return nil, fmt.Errorf("scan slot: %w", err)
		}
		result[slot.ResourceID] = append(result[slot.ResourceID], slot)
	}

	return result, rows.Err()
}

type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func insertSlot(ctx context.Context, q rowQuerier, resourceID int64, slot *model.Slot) error {
	query := `
		INSERT INTO resource_slots (resource_id, slot_time, is_reserved, reserved_by, hold_expires_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	slot.ResourceID = resourceID
	slot.Time = model.NormalizeSlotTime(slot.Time)

	err := q.QueryRow(ctx, query,
		resourceID,
		slot.Time,
		slot.IsReserved,
		slot.ReservedBy,
		slot.HoldExpires,
	).Scan(&slot.ID, &slot.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert slot: %w", err)
	}

	return nil
}

func scanSlot(row scanner) (*model.Slot, error) {
	var slot model.Slot
	err := row.Scan(
		&slot.ID,
		&slot.ResourceID,
		&slot.Time,
		&slot.IsReserved,
		&slot.ReservedBy,
		&slot.ReservedAt,
		&slot.HoldExpires,
		&slot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	slot.Time = slot.Time.UTC()
	return &slot, nil
}
