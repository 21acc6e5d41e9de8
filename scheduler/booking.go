package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avishkarm/clinic-scheduler/models"
)

// CreateRequest describes a booking creation. SelfService requests await
// provider approval and persist as "requested" instead of "scheduled".
type CreateRequest struct {
	ProviderID  uint
	SubjectID   uint
	Start       time.Time
	End         time.Time
	Reason      string
	Location    string
	SelfService bool
	Actor       uint
}

// Get loads one booking with its provider and subject.
func (s *Service) Get(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	err := s.db.WithContext(ctx).Preload("Provider").Preload("Subject").First(&booking, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "booking", ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// Create validates the interval, re-checks conflicts inside a row-locking
// transaction and persists the booking. Collisions come back as a
// ConflictError carrying the overlapping bookings; the scheduler never picks
// an alternative slot silently.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*models.Booking, error) {
	if req.ProviderID == 0 {
		return nil, newValidationError("provider_id", "is required")
	}
	if req.SubjectID == 0 {
		return nil, newValidationError("subject_id", "is required")
	}
	if !req.Start.Before(req.End) {
		return nil, newValidationError("end", "must be after start")
	}
	if err := s.ensureUserExists(ctx, "provider", req.ProviderID); err != nil {
		return nil, err
	}
	if err := s.ensureUserExists(ctx, "subject", req.SubjectID); err != nil {
		return nil, err
	}

	status := models.StatusScheduled
	if req.SelfService {
		status = models.StatusRequested
	}
	booking := &models.Booking{
		ProviderID: req.ProviderID,
		SubjectID:  req.SubjectID,
		Start:      req.Start,
		End:        req.End,
		Status:     status,
		Reason:     req.Reason,
		Location:   req.Location,
	}

	err := s.withWriteRetry(ctx, func(tx *gorm.DB) error {
		conflicts, err := conflictingBookings(tx, req.ProviderID, req.SubjectID, req.Start, req.End, 0, true)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		return tx.Create(booking).Error
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventCreated, booking.ID, req.Actor)
	return booking, nil
}

// Reschedule replaces the interval of an active booking after re-running the
// conflict check with the booking's own id excluded. Identity and status are
// unchanged.
func (s *Service) Reschedule(ctx context.Context, id uint, start, end time.Time, actor uint) (*models.Booking, error) {
	if !start.Before(end) {
		return nil, newValidationError("end", "must be after start")
	}

	var booking models.Booking
	err := s.withWriteRetry(ctx, func(tx *gorm.DB) error {
		if err := lockBooking(tx, id, &booking); err != nil {
			return err
		}
		if !booking.IsActive() {
			return newValidationError("status", "only scheduled or confirmed bookings can be rescheduled")
		}
		conflicts, err := conflictingBookings(tx, booking.ProviderID, booking.SubjectID, start, end, booking.ID, true)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		booking.Start = start
		booking.End = end
		return tx.Model(&booking).Updates(map[string]interface{}{
			"start": start,
			"end":   end,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventRescheduled, booking.ID, actor)
	return &booking, nil
}

// Cancel flips the booking to cancelled, freeing its interval. Cancelled
// bookings stay on record; nothing is hard-deleted.
func (s *Service) Cancel(ctx context.Context, id, actor uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, id, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, EventCancelled, booking.ID, actor)
	return booking, nil
}

// Approve moves a requested booking onto the calendar. The interval was
// conflict-checked at request time, but time may have passed, so the check
// runs again before the status flips.
func (s *Service) Approve(ctx context.Context, id uint, confirm bool, actor uint) (*models.Booking, error) {
	target := models.StatusScheduled
	if confirm {
		target = models.StatusConfirmed
	}

	var booking models.Booking
	err := s.withWriteRetry(ctx, func(tx *gorm.DB) error {
		if err := lockBooking(tx, id, &booking); err != nil {
			return err
		}
		if booking.Status != models.StatusRequested {
			return newValidationError("status", "only requested bookings can be approved")
		}
		conflicts, err := conflictingBookings(tx, booking.ProviderID, booking.SubjectID, booking.Start, booking.End, booking.ID, true)
		if err != nil {
			return err
		}
		if len(conflicts) > 0 {
			return &ConflictError{Conflicts: conflicts}
		}
		booking.Status = target
		return tx.Model(&booking).Update("status", target).Error
	})
	if err != nil {
		return nil, err
	}

	s.emit(ctx, EventApproved, booking.ID, actor)
	return &booking, nil
}

// Decline rejects a requested booking.
func (s *Service) Decline(ctx context.Context, id, actor uint) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status != models.StatusRequested {
		return nil, newValidationError("status", "only requested bookings can be declined")
	}
	if err := s.db.WithContext(ctx).Model(booking).Update("status", models.StatusCancelled).Error; err != nil {
		return nil, err
	}
	booking.Status = models.StatusCancelled
	s.emit(ctx, EventDeclined, booking.ID, actor)
	return booking, nil
}

// Complete marks a past booking as done.
func (s *Service) Complete(ctx context.Context, id, actor uint) (*models.Booking, error) {
	booking, err := s.transition(ctx, id, models.StatusCompleted)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, EventCompleted, booking.ID, actor)
	return booking, nil
}

func (s *Service) transition(ctx context.Context, id uint, next models.BookingStatus) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := booking.CanTransition(next); err != nil {
		return nil, newValidationError("status", err.Error())
	}
	if err := s.db.WithContext(ctx).Model(booking).Update("status", next).Error; err != nil {
		return nil, err
	}
	booking.Status = next
	return booking, nil
}

func (s *Service) ensureUserExists(ctx context.Context, kind string, id uint) error {
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return &NotFoundError{Kind: kind, ID: id}
	}
	return nil
}

// withWriteRetry runs fn in a transaction, retrying the whole check-and-write
// with fresh data when the storage layer aborts it under a race. Domain
// errors pass through untouched; only serialization failures are retried,
// and only a bounded number of times.
func (s *Service) withWriteRetry(ctx context.Context, fn func(tx *gorm.DB) error) error {
	attempts := s.cfg.WriteRetries
	if attempts <= 0 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		err = s.db.WithContext(ctx).Transaction(fn)
		if err == nil || !isSerializationFailure(err) {
			return err
		}
	}
	return &ConcurrencyError{Err: err}
}

// lockBooking loads the booking by id under FOR UPDATE (where supported) so
// concurrent writers serialize on the same row.
func lockBooking(tx *gorm.DB, id uint, dst *models.Booking) error {
	q := tx
	if tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	err := q.First(dst, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &NotFoundError{Kind: "booking", ID: id}
	}
	return err
}

// Postgres aborts the losing writer with one of these SQLSTATEs when the
// transactional guard detects a race.
func isSerializationFailure(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}
