package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/avishkarm/clinic-scheduler/db"
	"github.com/avishkarm/clinic-scheduler/models"
)

// GetAllAvailability lists availability windows, optionally filtered by
// provider and weekday.
func GetAllAvailability(c *fiber.Ctx) error {
	query := db.DB.Model(&models.AvailabilityWindow{}).
		Order("provider_id asc, weekday asc, start_time asc")

	if providerID := c.QueryInt("provider_id"); providerID > 0 {
		query = query.Where("provider_id = ?", providerID)
	}
	if c.Query("weekday") != "" {
		query = query.Where("weekday = ?", c.QueryInt("weekday"))
	}

	var windows []models.AvailabilityWindow
	if err := query.Find(&windows).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to get availability windows",
		})
	}
	return c.JSON(windows)
}

// GetAvailability retrieves a specific availability window by ID
func GetAvailability(c *fiber.Ctx) error {
	id := c.Params("id")
	var window models.AvailabilityWindow
	if err := db.DB.First(&window, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Availability window not found",
		})
	}
	return c.JSON(window)
}

// CreateAvailability creates a new availability window
func CreateAvailability(c *fiber.Ctx) error {
	window := new(models.AvailabilityWindow)
	if err := c.BodyParser(window); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validateWindow(window); err != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err,
		})
	}
	if window.SlotMinutes <= 0 {
		window.SlotMinutes = 30
	}
	window.IsActive = true

	if err := db.DB.Create(window).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to create availability window",
		})
	}
	return c.Status(fiber.StatusCreated).JSON(window)
}

// UpdateAvailability updates an existing availability window
func UpdateAvailability(c *fiber.Ctx) error {
	id := c.Params("id")
	var window models.AvailabilityWindow
	if err := db.DB.First(&window, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Availability window not found",
		})
	}
	if err := c.BodyParser(&window); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Failed to parse request body",
		})
	}
	if err := validateWindow(&window); err != "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err,
		})
	}
	if err := db.DB.Save(&window).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to update availability window",
		})
	}
	return c.JSON(window)
}

// DisableAvailability soft-disables a window instead of deleting it, so
// slots generated from it in the past stay explainable.
func DisableAvailability(c *fiber.Ctx) error {
	id := c.Params("id")
	var window models.AvailabilityWindow
	if err := db.DB.First(&window, id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Availability window not found",
		})
	}
	if err := db.DB.Model(&window).Update("is_active", false).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to disable availability window",
		})
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// validateWindow checks the window's own invariants. Returns an empty string
// when valid.
func validateWindow(w *models.AvailabilityWindow) string {
	if w.ProviderID == 0 {
		return "provider_id is required"
	}
	if w.Weekday < models.Sunday || w.Weekday > models.Saturday {
		return "weekday must be between 0 (Sunday) and 6 (Saturday)"
	}
	start, err := time.Parse("15:04", w.StartTime)
	if err != nil {
		return "start_time must be in HH:MM format"
	}
	end, err := time.Parse("15:04", w.EndTime)
	if err != nil {
		return "end_time must be in HH:MM format"
	}
	if !start.Before(end) {
		return "end_time must be after start_time"
	}
	return ""
}
