package scheduler

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishkarm/clinic-scheduler/models"
)

func TestFreeSlotsSkipsConflictingSlot(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")
	createWindow(t, db, provider.ID, models.Monday, "09:00", "10:00", 30)
	createBooking(t, db, provider.ID, patient.ID, monday(9, 0), monday(9, 30), models.StatusScheduled)

	slots, err := svc.FreeSlots(context.Background(), FreeSlotRequest{
		ProviderID:      provider.ID,
		From:            monday(0, 0),
		To:              monday(0, 0).AddDate(0, 0, 1),
		DurationMinutes: 30,
	})
	require.NoError(t, err)

	require.Len(t, slots, 1)
	assert.Equal(t, monday(9, 30), slots[0].Start)
	assert.Equal(t, monday(10, 0), slots[0].End)
}

func TestFreeSlotsLimitShortCircuits(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	createWindow(t, db, provider.ID, models.Monday, "08:00", "18:00", 30)

	slots, err := svc.FreeSlots(context.Background(), FreeSlotRequest{
		ProviderID:      provider.ID,
		From:            monday(0, 0),
		To:              monday(0, 0).AddDate(0, 0, 1),
		DurationMinutes: 30,
		Limit:           3,
	})
	require.NoError(t, err)

	require.Len(t, slots, 3)
	assert.Equal(t, monday(8, 0), slots[0].Start)
	assert.Equal(t, monday(8, 30), slots[1].Start)
	assert.Equal(t, monday(9, 0), slots[2].Start)
}

func TestFreeSlotsEmptyInputsYieldEmptyList(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	createWindow(t, db, provider.ID, models.Monday, "09:00", "10:00", 30)

	cases := []struct {
		name string
		req  FreeSlotRequest
	}{
		{"zero provider", FreeSlotRequest{From: monday(0, 0), To: monday(12, 0), DurationMinutes: 30}},
		{"zero duration", FreeSlotRequest{ProviderID: provider.ID, From: monday(0, 0), To: monday(12, 0)}},
		{"inverted range", FreeSlotRequest{ProviderID: provider.ID, From: monday(12, 0), To: monday(0, 0), DurationMinutes: 30}},
		{"empty range", FreeSlotRequest{ProviderID: provider.ID, From: monday(9, 0), To: monday(9, 0), DurationMinutes: 30}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			slots, err := svc.FreeSlots(context.Background(), tc.req)
			require.NoError(t, err)
			assert.NotNil(t, slots)
			assert.Empty(t, slots)
		})
	}
}

func TestFreeSlotsSubjectSideBlocking(t *testing.T) {
	svc, db := newTestService(t)
	providerA := createUser(t, db, "dr-jones")
	providerB := createUser(t, db, "dr-smith")
	patient := createUser(t, db, "alice")
	createWindow(t, db, providerA.ID, models.Monday, "09:00", "10:00", 30)
	createBooking(t, db, providerB.ID, patient.ID, monday(9, 0), monday(9, 30), models.StatusScheduled)

	slots, err := svc.FreeSlots(context.Background(), FreeSlotRequest{
		ProviderID:      providerA.ID,
		From:            monday(0, 0),
		To:              monday(0, 0).AddDate(0, 0, 1),
		DurationMinutes: 30,
		SubjectID:       patient.ID,
	})
	require.NoError(t, err)

	// The patient's own clash with another clinician removes 09:00.
	require.Len(t, slots, 1)
	assert.Equal(t, monday(9, 30), slots[0].Start)
}

func TestFreeSlotsDeterministic(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	createWindow(t, db, provider.ID, models.Monday, "09:00", "11:00", 30)

	req := FreeSlotRequest{
		ProviderID:      provider.ID,
		From:            monday(0, 0),
		To:              monday(0, 0).AddDate(0, 0, 1),
		DurationMinutes: 30,
	}
	first, err := svc.FreeSlots(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.FreeSlots(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
