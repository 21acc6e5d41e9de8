package controllers

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avishkarm/clinic-scheduler/db"
	"github.com/avishkarm/clinic-scheduler/models"
	"github.com/avishkarm/clinic-scheduler/notify"
)

// BookingICS downloads a single booking as an .ics file.
func BookingICS(c *fiber.Ctx) error {
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

	text := notify.CalendarText([]models.Booking{*booking}, "PUBLISH")
	c.Set(fiber.HeaderContentType, "text/calendar; charset=UTF-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="booking-%d.ics"`, booking.ID))
	return c.SendString(text)
}

// ProviderICSFeed exports a provider's active bookings for a date range as a
// single calendar, defaulting to the next 30 days.
func ProviderICSFeed(c *fiber.Ctx) error {
	providerID, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid provider ID",
		})
	}

	from := time.Now()
	to := from.AddDate(0, 0, 30)
	if raw := c.Query("date_from"); raw != "" {
		if from, err = time.Parse(time.RFC3339, raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date_from must be an RFC3339 datetime",
			})
		}
	}
	if raw := c.Query("date_to"); raw != "" {
		if to, err = time.Parse(time.RFC3339, raw); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "date_to must be an RFC3339 datetime",
			})
		}
	}

	var bookings []models.Booking
	if err := db.DB.Preload("Provider").Preload("Subject").
		Where("provider_id = ?", providerID).
		Where("status IN ?", models.ActiveStatuses).
		Where(`start < ? AND "end" > ?`, to, from).
		Order("start asc").
		Find(&bookings).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load bookings",
		})
	}

	text := notify.CalendarText(bookings, "PUBLISH")
	c.Set(fiber.HeaderContentType, "text/calendar; charset=UTF-8")
	c.Set(fiber.HeaderContentDisposition,
		fmt.Sprintf(`attachment; filename="provider-%d-schedule.ics"`, providerID))
	return c.SendString(text)
}
