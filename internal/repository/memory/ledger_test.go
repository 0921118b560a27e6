package memory

import (
	"context"
	"testing"
	"time"

	"github.com/Freeeeeet/smartcare/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReservationLedger_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewResourceStore()
	r := newResource(t, store, "Dr. House", "Cardiology")

	ledger := NewReservationLedger(store)
	clock := slotAt
	ledger.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	for i := 0; i < 3; i++ {
		require.NoError(t, ledger.Append(ctx, &model.Reservation{
			RequesterID: "alice",
			ResourceID:  r.ID,
			SlotTime:    slotAt.Add(time.Duration(i) * time.Hour),
			Status:      model.ReservationStatusConfirmed,
		}))
	}
	require.NoError(t, ledger.Append(ctx, &model.Reservation{
		RequesterID: "bob",
		ResourceID:  r.ID,
		SlotTime:    slotAt.Add(5 * time.Hour),
		Status:      model.ReservationStatusConfirmed,
	}))

	list, err := ledger.ListByRequester(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.True(t, list[0].SlotTime.Equal(slotAt.Add(2*time.Hour)))
	assert.True(t, list[2].SlotTime.Equal(slotAt))
	require.NotNil(t, list[0].Resource)
	assert.Equal(t, "Dr. House", list[0].Resource.Name)

	byResource, err := ledger.ListByResource(ctx, r.ID)
	require.NoError(t, err)
	require.Len(t, byResource, 4)
	assert.Equal(t, "bob", byResource[0].RequesterID)
}

func TestReservationLedger_SameTimestampKeepsAppendOrder(t *testing.T) {
	ctx := context.Background()
	ledger := NewReservationLedger(nil)
	ledger.now = func() time.Time { return slotAt }

	first := &model.Reservation{RequesterID: "alice", ResourceID: 1, SlotTime: slotAt, Status: model.ReservationStatusConfirmed}
	second := &model.Reservation{RequesterID: "alice", ResourceID: 2, SlotTime: slotAt, Status: model.ReservationStatusConfirmed}
	require.NoError(t, ledger.Append(ctx, first))
	require.NoError(t, ledger.Append(ctx, second))

	list, err := ledger.ListByRequester(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestReservationLedger_DeletedResourceStillListed(t *testing.T) {
	ctx := context.Background()
	store := NewResourceStore()
	r := newResource(t, store, "Dr. House", "Cardiology", slotAt)
	ledger := NewReservationLedger(store)

	require.NoError(t, ledger.Append(ctx, &model.Reservation{
		RequesterID: "alice",
		ResourceID:  r.ID,
		SlotTime:    slotAt,
		Status:      model.ReservationStatusConfirmed,
	}))
	require.NoError(t, store.Delete(ctx, r.ID))

	list, err := ledger.ListByRequester(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Resource)
}

func TestReservationLedger_HasConfirmed(t *testing.T) {
	ctx := context.Background()
	ledger := NewReservationLedger(nil)

	ok, err := ledger.HasConfirmed(ctx, 1, slotAt)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, ledger.Append(ctx, &model.Reservation{
		RequesterID: "alice",
		ResourceID:  1,
		SlotTime:    slotAt.In(time.FixedZone("MSK", 3*3600)),
		Status:      model.ReservationStatusConfirmed,
	}))

	ok, err = ledger.HasConfirmed(ctx, 1, slotAt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ledger.HasConfirmed(ctx, 2, slotAt)
	require.NoError(t, err)
	assert.False(t, ok)
}
