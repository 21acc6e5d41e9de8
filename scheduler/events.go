package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventCreated     EventKind = "created"
	EventRescheduled EventKind = "rescheduled"
	EventCancelled   EventKind = "cancelled"
	EventApproved    EventKind = "approved"
	EventDeclined    EventKind = "declined"
	EventCompleted   EventKind = "completed"
)

// BookingEvent is emitted after every successful write so external
// collaborators (notifier, calendar export) can react. The scheduler itself
// never sends email or renders calendars.
type BookingEvent struct {
	ID         uuid.UUID `json:"id"`
	Kind       EventKind `json:"kind"`
	BookingID  uint      `json:"booking_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AuditEntry is handed to an external audit collaborator; the scheduler does
// not persist audit records itself.
type AuditEntry struct {
	Actor      uint   `json:"actor"`
	Action     string `json:"action"`
	ObjectType string `json:"object_type"`
	ObjectID   uint   `json:"object_id"`
}

// EventSink receives booking events. Implementations must not block the
// write path on slow I/O.
type EventSink interface {
	Publish(ctx context.Context, ev BookingEvent)
}

// AuditSink receives audit entries.
type AuditSink interface {
	Record(ctx context.Context, entry AuditEntry)
}

func (s *Service) emit(ctx context.Context, kind EventKind, bookingID, actor uint) {
	if s.events != nil {
		s.events.Publish(ctx, BookingEvent{
			ID:         uuid.New(),
			Kind:       kind,
			BookingID:  bookingID,
			OccurredAt: time.Now(),
		})
	}
	if s.audit != nil {
		s.audit.Record(ctx, AuditEntry{
			Actor:      actor,
			Action:     "booking." + string(kind),
			ObjectType: "Booking",
			ObjectID:   bookingID,
		})
	}
}
