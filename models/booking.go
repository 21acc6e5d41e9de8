package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

type BookingStatus string

const (
	StatusRequested BookingStatus = "requested"
	StatusScheduled BookingStatus = "scheduled"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// ActiveStatuses are the statuses that block a provider's or subject's calendar.
var ActiveStatuses = []BookingStatus{StatusScheduled, StatusConfirmed}

// Booking is a concrete scheduled appointment occupying [Start, End) for a
// provider (clinician) and a subject (patient).
type Booking struct {
	gorm.Model
	ProviderID uint          `json:"provider_id" gorm:"index:idx_provider_start"`
	Provider   User          `json:"provider,omitempty" gorm:"foreignKey:ProviderID"`
	SubjectID  uint          `json:"subject_id" gorm:"index:idx_subject_start"`
	Subject    User          `json:"subject,omitempty" gorm:"foreignKey:SubjectID"`
	Start      time.Time     `json:"start" gorm:"index:idx_provider_start;index:idx_subject_start"`
	End        time.Time     `json:"end" gorm:"index"`
	Status     BookingStatus `json:"status" gorm:"index;default:scheduled"`
	Reason     string        `json:"reason"`
	Location   string        `json:"location"`

	// Reminder bookkeeping, stamped once per reminder by the cron sweeper.
	Reminder24hSentAt *time.Time `json:"reminder_24h_sent_at,omitempty" gorm:"column:reminder_24h_sent_at"`
	Reminder2hSentAt  *time.Time `json:"reminder_2h_sent_at,omitempty" gorm:"column:reminder_2h_sent_at"`
}

func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.Status == "" {
		b.Status = StatusScheduled
	}
	return nil
}

// IsActive reports whether the booking occupies its interval on the calendar.
func (b *Booking) IsActive() bool {
	return b.Status == StatusScheduled || b.Status == StatusConfirmed
}

// Overlaps uses the half-open convention: [start, end) intervals that only
// touch at a boundary do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.Start.Before(end) && start.Before(b.End)
}

func (b *Booking) DurationMinutes() int {
	return int(b.End.Sub(b.Start).Minutes())
}

// CanTransition validates the booking state machine:
// requested → scheduled|confirmed|cancelled, scheduled|confirmed →
// completed|cancelled. Completed and cancelled are terminal.
func (b *Booking) CanTransition(next BookingStatus) error {
	switch b.Status {
	case StatusRequested:
		if next != StatusScheduled && next != StatusConfirmed && next != StatusCancelled {
			return fmt.Errorf("invalid transition from requested to %s", next)
		}
	case StatusScheduled, StatusConfirmed:
		if next != StatusCompleted && next != StatusCancelled {
			return fmt.Errorf("invalid transition from %s to %s", b.Status, next)
		}
	case StatusCompleted, StatusCancelled:
		return fmt.Errorf("no transitions allowed from %s", b.Status)
	default:
		return fmt.Errorf("unknown status %s", b.Status)
	}
	return nil
}
