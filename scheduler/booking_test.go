package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/avishkarm/clinic-scheduler/models"
)

func TestCreateBooking(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	booking, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID,
		SubjectID:  patient.ID,
		Start:      monday(9, 0),
		End:        monday(9, 30),
		Reason:     "checkup",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, booking.Status)
	assert.NotZero(t, booking.ID)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	var validationErr *ValidationError

	_, err := svc.Create(context.Background(), CreateRequest{
		SubjectID: patient.ID, Start: monday(9, 0), End: monday(9, 30),
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "provider_id", validationErr.Field)

	_, err = svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 30), End: monday(9, 0),
	})
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "end", validationErr.Field)

	var notFoundErr *NotFoundError
	_, err = svc.Create(context.Background(), CreateRequest{
		ProviderID: 9999, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "provider", notFoundErr.Kind)
}

func TestCreateBookingConflictListsCollisions(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	existing, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: other.ID,
		Start: monday(9, 15), End: monday(9, 45),
	})

	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, existing.ID, conflictErr.Conflicts[0].ID)
}

func TestCreateBookingBackToBackSucceeds(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	_, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: other.ID,
		Start: monday(9, 30), End: monday(10, 0),
	})
	require.NoError(t, err)
}

func TestSelfServiceCreateIsRequested(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	booking, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
		SelfService: true,
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRequested, booking.Status)

	// A pending request does not hold the slot.
	_, err = svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: createUser(t, db, "bob").ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)
}

func TestApproveRequestedBooking(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	req, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
		SelfService: true,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), req.ID, false, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusScheduled, approved.Status)
}

func TestApproveConfirms(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	req, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
		SelfService: true,
	})
	require.NoError(t, err)

	approved, err := svc.Approve(context.Background(), req.ID, true, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusConfirmed, approved.Status)
}

func TestApproveRechecksConflicts(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	req, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
		SelfService: true,
	})
	require.NoError(t, err)

	// The slot was taken while the request sat in the queue.
	_, err = svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: other.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)

	_, err = svc.Approve(context.Background(), req.ID, false, 0)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
}

func TestDeclineRequestedBooking(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	req, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
		SelfService: true,
	})
	require.NoError(t, err)

	declined, err := svc.Decline(context.Background(), req.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, declined.Status)

	// Declining a scheduled booking is not a thing.
	scheduled, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(10, 0), End: monday(10, 30),
	})
	require.NoError(t, err)
	_, err = svc.Decline(context.Background(), scheduled.ID, 0)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestRescheduleExcludesOwnInterval(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	booking, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)

	// Shifting within the original interval must not collide with itself.
	moved, err := svc.Reschedule(context.Background(), booking.ID, monday(9, 15), monday(9, 45), 0)
	require.NoError(t, err)
	assert.Equal(t, monday(9, 15), moved.Start)
	assert.Equal(t, monday(9, 45), moved.End)
}

func TestRescheduleConflict(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")
	other := createUser(t, db, "bob")

	blocker, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: other.ID,
		Start: monday(10, 0), End: monday(10, 30),
	})
	require.NoError(t, err)

	booking, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), booking.ID, monday(10, 0), monday(10, 30), 0)
	var conflictErr *ConflictError
	require.ErrorAs(t, err, &conflictErr)
	require.Len(t, conflictErr.Conflicts, 1)
	assert.Equal(t, blocker.ID, conflictErr.Conflicts[0].ID)
}

func TestRescheduleInactiveBookingRejected(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	booking, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)
	_, err = svc.Cancel(context.Background(), booking.ID, 0)
	require.NoError(t, err)

	_, err = svc.Reschedule(context.Background(), booking.ID, monday(10, 0), monday(10, 30), 0)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestCancelFreesTheSlot(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	booking, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)

	cancelled, err := svc.Cancel(context.Background(), booking.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)

	// The interval is bookable again.
	_, err = svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)
}

func TestCompleteAndTerminalStates(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")

	booking, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: monday(9, 0), End: monday(9, 30),
	})
	require.NoError(t, err)

	done, err := svc.Complete(context.Background(), booking.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)

	var validationErr *ValidationError
	_, err = svc.Cancel(context.Background(), booking.ID, 0)
	require.ErrorAs(t, err, &validationErr)
}

func TestGetNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.Get(context.Background(), 42)
	var notFoundErr *NotFoundError
	require.ErrorAs(t, err, &notFoundErr)
	assert.Equal(t, "booking", notFoundErr.Kind)
}

func TestWithWriteRetryExhaustsAttempts(t *testing.T) {
	svc, _ := newTestService(t)

	attempts := 0
	err := svc.withWriteRetry(context.Background(), func(tx *gorm.DB) error {
		attempts++
		return &pgconn.PgError{Code: "40001"}
	})

	assert.Equal(t, svc.cfg.WriteRetries, attempts)

	var concurrencyErr *ConcurrencyError
	require.ErrorAs(t, err, &concurrencyErr)

	// The aborting storage error stays reachable through Unwrap.
	var pgErr *pgconn.PgError
	require.ErrorAs(t, err, &pgErr)
	assert.Equal(t, "40001", pgErr.Code)
}

func TestWithWriteRetryRecoversOnLaterAttempt(t *testing.T) {
	svc, _ := newTestService(t)

	attempts := 0
	err := svc.withWriteRetry(context.Background(), func(tx *gorm.DB) error {
		attempts++
		if attempts < 2 {
			return &pgconn.PgError{Code: "55P03"}
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
}

func TestWithWriteRetryPassesDomainErrorsThrough(t *testing.T) {
	svc, _ := newTestService(t)

	attempts := 0
	err := svc.withWriteRetry(context.Background(), func(tx *gorm.DB) error {
		attempts++
		return newValidationError("end", "must be after start")
	})

	// Domain failures are not races; no retry, no ConcurrencyError wrapper.
	assert.Equal(t, 1, attempts)
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	var concurrencyErr *ConcurrencyError
	assert.False(t, errors.As(err, &concurrencyErr))
}

func TestRoundTripSoleConflict(t *testing.T) {
	svc, db := newTestService(t)
	provider := createUser(t, db, "dr-jones")
	patient := createUser(t, db, "alice")
	createWindow(t, db, provider.ID, models.Monday, "09:00", "10:00", 30)

	slots, err := svc.FreeSlots(context.Background(), FreeSlotRequest{
		ProviderID:      provider.ID,
		From:            monday(0, 0),
		To:              monday(0, 0).AddDate(0, 0, 1),
		DurationMinutes: 30,
	})
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	booked, err := svc.Create(context.Background(), CreateRequest{
		ProviderID: provider.ID, SubjectID: patient.ID,
		Start: slots[0].Start, End: slots[0].End,
	})
	require.NoError(t, err)

	// Booking a suggested slot makes that booking the only conflict there.
	conflicts, err := svc.ConflictingBookings(context.Background(),
		provider.ID, 0, slots[0].Start, slots[0].End, 0)
	require.NoError(t, err)
	require.Len(t, conflicts, 1)
	assert.Equal(t, booked.ID, conflicts[0].ID)
}
