package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avishkarm/clinic-scheduler/db"
	"github.com/avishkarm/clinic-scheduler/models"
	"github.com/avishkarm/clinic-scheduler/scheduler"
	"github.com/avishkarm/clinic-scheduler/utils"
)

// Scheduler is the shared scheduling core, wired in main.
var Scheduler *scheduler.Service

// conflictView is the caller-facing shape of one colliding booking.
type conflictView struct {
	ID         uint                 `json:"id"`
	ProviderID uint                 `json:"provider_id"`
	SubjectID  uint                 `json:"subject_id"`
	Start      time.Time            `json:"start"`
	End        time.Time            `json:"end"`
	Status     models.BookingStatus `json:"status"`
}

func conflictViews(conflicts []models.Booking) []conflictView {
	out := make([]conflictView, 0, len(conflicts))
	for _, b := range conflicts {
		out = append(out, conflictView{
			ID:         b.ID,
			ProviderID: b.ProviderID,
			SubjectID:  b.SubjectID,
			Start:      b.Start,
			End:        b.End,
			Status:     b.Status,
		})
	}
	return out
}

// schedulerError maps the scheduler's error taxonomy onto HTTP responses.
// Validation and conflict failures always carry actionable detail.
func schedulerError(c *fiber.Ctx, err error) error {
	var validationErr *scheduler.ValidationError
	var conflictErr *scheduler.ConflictError
	var notFoundErr *scheduler.NotFoundError
	var concurrencyErr *scheduler.ConcurrencyError

	switch {
	case errors.As(err, &validationErr):
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid request",
			Error:   validationErr.Error(),
		})
	case errors.As(err, &conflictErr):
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message:   "Time slot conflicts with existing bookings. Pick a free slot or reschedule conflicting entries.",
			Conflicts: conflictViews(conflictErr.Conflicts),
		})
	case errors.As(err, &notFoundErr):
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Not found",
			Error:   notFoundErr.Error(),
		})
	case errors.As(err, &concurrencyErr):
		return c.Status(fiber.StatusServiceUnavailable).JSON(utils.ErrorResponse{
			Message: "The schedule is being modified concurrently. Please try again.",
		})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Internal error",
			Error:   err.Error(),
		})
	}
}

func actorID(c *fiber.Ctx) uint {
	if id, ok := c.Locals("userID").(uint); ok {
		return id
	}
	return 0
}

// GetAllBookings lists bookings with date range, provider, subject and
// status filters plus limit/offset pagination.
func GetAllBookings(c *fiber.Ctx) error {
	query := db.DB.Model(&models.Booking{}).
		Preload("Provider").Preload("Subject").
		Order("start desc, id asc")

	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date_from must be an RFC3339 datetime",
			})
		}
		query = query.Where(`"end" >= ?`, from)
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date_to must be an RFC3339 datetime",
			})
		}
		query = query.Where("start <= ?", to)
	}
	if providerID := c.QueryInt("provider_id"); providerID > 0 {
		query = query.Where("provider_id = ?", providerID)
	}
	if subjectID := c.QueryInt("subject_id"); subjectID > 0 {
		query = query.Where("subject_id = ?", subjectID)
	}
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	limit := c.QueryInt("limit", 20)
	if limit <= 0 {
		limit = 20
	}
	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}

	var total int64
	query.Count(&total)

	var bookings []models.Booking
	if err := query.Limit(limit).Offset(offset).Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"bookings": bookings,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
	})
}

// GetBooking returns one booking by ID
func GetBooking(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}
	booking, err := Scheduler.Get(c.Context(), uint(id))
	if err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(booking)
}

type bookingInput struct {
	ProviderID uint      `json:"provider_id"`
	SubjectID  uint      `json:"subject_id"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	Reason     string    `json:"reason"`
	Location   string    `json:"location"`
}

// CreateBooking is the staff-assisted create; the booking lands on the
// calendar as scheduled.
func CreateBooking(c *fiber.Ctx) error {
	return createBooking(c, false)
}

// RequestBooking is the self-service create; the booking awaits provider
// approval as requested.
func RequestBooking(c *fiber.Ctx) error {
	return createBooking(c, true)
}

func createBooking(c *fiber.Ctx, selfService bool) error {
	input := new(bookingInput)
	if err := c.BodyParser(input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	booking, err := Scheduler.Create(c.Context(), scheduler.CreateRequest{
		ProviderID:  input.ProviderID,
		SubjectID:   input.SubjectID,
		Start:       input.Start,
		End:         input.End,
		Reason:      input.Reason,
		Location:    input.Location,
		SelfService: selfService,
		Actor:       actorID(c),
	})
	if err != nil {
		return schedulerError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(booking)
}

// RescheduleBooking moves an active booking to a new interval.
func RescheduleBooking(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}

	var input struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
	}
	if err := c.BodyParser(&input); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}

	booking, err := Scheduler.Reschedule(c.Context(), uint(id), input.Start, input.End, actorID(c))
	if err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Booking rescheduled successfully",
		"booking": booking,
	})
}

// CancelBooking sets the booking's status to cancelled.
func CancelBooking(c *fiber.Ctx) error {
	return statusAction(c, func(id, actor uint) (*models.Booking, error) {
		return Scheduler.Cancel(c.Context(), id, actor)
	})
}

// ApproveBooking moves a requested booking to scheduled, or confirmed when
// the body asks for it.
func ApproveBooking(c *fiber.Ctx) error {
	var input struct {
		Confirm bool `json:"confirm"`
	}
	// Body is optional; a bare approve schedules.
	_ = c.BodyParser(&input)

	return statusAction(c, func(id, actor uint) (*models.Booking, error) {
		return Scheduler.Approve(c.Context(), id, input.Confirm, actor)
	})
}

// DeclineBooking rejects a requested booking.
func DeclineBooking(c *fiber.Ctx) error {
	return statusAction(c, func(id, actor uint) (*models.Booking, error) {
		return Scheduler.Decline(c.Context(), id, actor)
	})
}

// CompleteBooking marks a past booking as done.
func CompleteBooking(c *fiber.Ctx) error {
	return statusAction(c, func(id, actor uint) (*models.Booking, error) {
		return Scheduler.Complete(c.Context(), id, actor)
	})
}

func statusAction(c *fiber.Ctx, fn func(id, actor uint) (*models.Booking, error)) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid booking ID",
		})
	}
	booking, err := fn(uint(id), actorID(c))
	if err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(fiber.Map{
		"message": "Booking status updated successfully",
		"booking": booking,
	})
}
