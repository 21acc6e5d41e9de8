package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avishkarm/clinic-scheduler/scheduler"
)

// GetFreeSlots returns open intervals on a provider's calendar. Invalid or
// empty inputs yield an empty list rather than an error, so callers can bind
// the response straight to a picker.
func GetFreeSlots(c *fiber.Ctx) error {
	req := scheduler.FreeSlotRequest{
		ProviderID:      uint(c.QueryInt("provider_id")),
		DurationMinutes: c.QueryInt("duration_minutes"),
		StepMinutes:     c.QueryInt("step_minutes"),
		SubjectID:       uint(c.QueryInt("subject_id")),
		Limit:           c.QueryInt("limit"),
		ExcludeID:       uint(c.QueryInt("exclude_id")),
	}

	if raw := c.Query("date_from"); raw != "" {
		from, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date_from must be an RFC3339 datetime",
			})
		}
		req.From = from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date_to must be an RFC3339 datetime",
			})
		}
		req.To = to
	}

	slots, err := Scheduler.FreeSlots(c.Context(), req)
	if err != nil {
		return schedulerError(c, err)
	}
	return c.JSON(fiber.Map{
		"slots": slots,
		"count": len(slots),
	})
}
