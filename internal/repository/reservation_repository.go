package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/Freeeeeet/smartcare/internal/repository/base"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository struct {
	*base.Repository
}

func NewReservationRepository(db base.DB) *ReservationRepository {
	return &ReservationRepository{Repository: base.NewRepository(db)}
}

// Append добавляет запись в журнал бронирований
func (r *ReservationRepository) Append(ctx context.Context, reservation *model.Reservation) error {
	if reservation.ID == uuid.Nil {
		reservation.ID = uuid.New()
	}
	reservation.SlotTime = model.NormalizeSlotTime(reservation.SlotTime)

	query := `
		INSERT INTO reservations (id, requester_id, resource_id, slot_time, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`

	err := r.QueryRow(ctx, query,
		reservation.ID,
		reservation.RequesterID,
		reservation.ResourceID,
		reservation.SlotTime,
		reservation.Status,
		reservation.Notes,
	).Scan(&reservation.CreatedAt)

	if err != nil {
		return fmt.Errorf("append reservation: %w", err)
	}

	return nil
}

// ListByRequester получает все бронирования пользователя, новые первыми
func (r *ReservationRepository) ListByRequester(ctx context.Context, requesterID string) ([]*model.Reservation, error) {
	query := `
		SELECT r.id, r.requester_id, r.resource_id, r.slot_time, r.status, r.notes, r.created_at,
		       res.name, res.specialization
		FROM reservations r
		LEFT JOIN resources res ON res.id = r.resource_id
		WHERE r.requester_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.Query(ctx, query, requesterID)
	if err != nil {
		return nil, fmt.Errorf("get reservations by requester: %w", err)
	}

	return scanReservations(rows)
}

// ListByResource получает все бронирования ресурса, новые первыми
func (r *ReservationRepository) ListByResource(ctx context.Context, resourceID int64) ([]*model.Reservation, error) {
	query := `
		SELECT r.id, r.requester_id, r.resource_id, r.slot_time, r.status, r.notes, r.created_at,
		       res.name, res.specialization
		FROM reservations r
		LEFT JOIN resources res ON res.id = r.resource_id
		WHERE r.resource_id = $1
		ORDER BY r.created_at DESC
	`

	rows, err := r.Query(ctx, query, resourceID)
	if err != nil {
		return nil, fmt.Errorf("get reservations by resource: %w", err)
	}

	return scanReservations(rows)
}

// HasConfirmed проверяет наличие подтверждённой записи для слота
func (r *ReservationRepository) HasConfirmed(ctx context.Context, resourceID int64, slotTime time.Time) (bool, error) {
	query := `
		SELECT EXISTS(
			SELECT 1 FROM reservations
			WHERE resource_id = $1 AND slot_time = $2 AND status = 'CONFIRMED'
		)
	`

	var exists bool
	err := r.QueryRow(ctx, query, resourceID, model.NormalizeSlotTime(slotTime)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check reservation exists: %w", err)
	}

	return exists, nil
}

func scanReservations(rows pgx.Rows) ([]*model.Reservation, error) {
	defer rows.Close()

	var reservations []*model.Reservation
	for rows.Next() {
		var (
			reservation    model.Reservation
			name           *string
			specialization *string
		)
		err := rows.Scan(
			&reservation.ID,
			&reservation.RequesterID,
			&reservation.ResourceID,
			&reservation.SlotTime,
			&reservation.Status,
			&reservation.Notes,
			&reservation.CreatedAt,
			&name,
			&specialization,
		)
		if err != nil {
			return nil, fmt.Errorf("scan reservation: %w", err)
		}

		reservation.SlotTime = reservation.SlotTime.UTC()
		// ресурс мог быть удалён администратором, запись при этом остаётся
		if name != nil {
			reservation.Resource = &model.ResourceSummary{
				ID:   reservation.ResourceID,
				Name: *name,
			}
			if specialization != nil {
				reservation.Resource.Specialization = *specialization
			}
		}
		reservations = append(reservations, &reservation)
	}

	return reservations, rows.Err()
}
