package scheduler

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/avishkarm/clinic-scheduler/models"
)

// ConflictingBookings returns the active bookings overlapping [start, end)
// for the provider or the subject, ordered by start time. An empty result
// means the interval is free. subjectID 0 means "provider-side only";
// excludeID skips the booking being rescheduled.
//
// The predicate is the strict write-path rule: a booking conflicts when it
// shares a provider OR shares a subject, so a subject cannot be double-booked
// even across providers. Overlap is half-open: back-to-back bookings that
// touch at a boundary do not conflict.
//
// On its own this check is advisory under concurrent writers; the write path
// re-runs it inside a row-locking transaction before committing.
func (s *Service) ConflictingBookings(ctx context.Context, providerID, subjectID uint, start, end time.Time, excludeID uint) ([]models.Booking, error) {
	return conflictingBookings(s.db.WithContext(ctx), providerID, subjectID, start, end, excludeID, false)
}

// conflictingBookings is the one conflict predicate shared by every call
// site. forUpdate row-locks the matches for the duration of the surrounding
// transaction (skipped on dialects without row locks, such as sqlite).
func conflictingBookings(tx *gorm.DB, providerID, subjectID uint, start, end time.Time, excludeID uint, forUpdate bool) ([]models.Booking, error) {
	q := tx.Model(&models.Booking{}).
		Where("status IN ?", models.ActiveStatuses).
		Where(`start < ? AND "end" > ?`, end, start)

	if subjectID != 0 {
		q = q.Where("(provider_id = ? OR subject_id = ?)", providerID, subjectID)
	} else {
		q = q.Where("provider_id = ?", providerID)
	}
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if forUpdate && tx.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var conflicts []models.Booking
	if err := q.Order("start asc").Find(&conflicts).Error; err != nil {
		return nil, err
	}
	return conflicts, nil
}
