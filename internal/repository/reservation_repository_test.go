package repository

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testReservationColumns = []string{"id", "requester_id", "resource_id", "slot_time", "status", "notes", "created_at", "name", "specialization"}

func TestReservationRepository_Append(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	created := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO reservations`).
		WithArgs(pgxmock.AnyArg(), "patient-1", int64(7), pgxmock.AnyArg(), model.ReservationStatusConfirmed, "").
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	reservation := &model.Reservation{
		RequesterID: "patient-1",
		ResourceID:  7,
		SlotTime:    time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC),
		Status:      model.ReservationStatusConfirmed,
	}
	require.NoError(t, repo.Append(context.Background(), reservation))
	assert.NotEqual(t, uuid.Nil, reservation.ID)
	assert.Equal(t, created, reservation.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_HasConfirmed(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	slotTime := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(7), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs(int64(8), pgxmock.AnyArg()).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.HasConfirmed(context.Background(), 7, slotTime)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.HasConfirmed(context.Background(), 8, slotTime)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListByRequesterKeepsDeletedResources(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	newer := time.Now().UTC()
	older := newer.Add(-time.Hour)
	slotTime := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	name := "Dr. A"
	specialization := "Cardiology"

	mock.ExpectQuery(`ORDER BY r.created_at DESC`).
		WithArgs("patient-1").
		WillReturnRows(pgxmock.NewRows(testReservationColumns).
			AddRow(uuid.New(), "patient-1", int64(1), slotTime, model.ReservationStatusConfirmed, "", newer, &name, &specialization).
			AddRow(uuid.New(), "patient-1", int64(2), slotTime, model.ReservationStatusConfirmed, "", older, (*string)(nil), (*string)(nil)))

	reservations, err := repo.ListByRequester(context.Background(), "patient-1")
	require.NoError(t, err)
	require.Len(t, reservations, 2)

	require.NotNil(t, reservations[0].Resource)
	assert.Equal(t, "Dr. A", reservations[0].Resource.Name)
	assert.Equal(t, "Cardiology", reservations[0].Resource.Specialization)
	assert.Nil(t, reservations[1].Resource)
	assert.Equal(t, int64(2), reservations[1].ResourceID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationRepository_ListByResourceEmpty(t *testing.T) {
	mock := newMockPool(t)
	repo := NewReservationRepository(mock)

	mock.ExpectQuery(`WHERE r.resource_id = \$1`).
		WithArgs(int64(5)).
		WillReturnRows(pgxmock.NewRows(testReservationColumns))

	reservations, err := repo.ListByResource(context.Background(), 5)
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestTriageAuditRepository_Create(t *testing.T) {
	mock := newMockPool(t)
	repo := NewTriageAuditRepository(mock)

	created := time.Now().UTC()
	mock.ExpectQuery(`INSERT INTO triage_audits`).
		WithArgs(pgxmock.AnyArg(), "chest pain", model.DepartmentCardiology, 0.5, model.TriageSourceFallback).
		WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(created))

	audit := &model.TriageAudit{
		Symptoms:   "chest pain",
		Department: model.DepartmentCardiology,
		Confidence: model.FallbackConfidence,
		Source:     model.TriageSourceFallback,
	}
	require.NoError(t, repo.Create(context.Background(), audit))
	assert.NotEqual(t, uuid.Nil, audit.ID)
	assert.Equal(t, created, audit.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}
