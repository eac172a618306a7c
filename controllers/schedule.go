package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/db"
	"github.com/bookloop/booking-engine/models"
	"github.com/bookloop/booking-engine/scheduling"
	"github.com/bookloop/booking-engine/utils"
)

// GetWeeklyAvailability returns the business's recurring schedule, one row per
// configured day of week.
func GetWeeklyAvailability(c *fiber.Ctx) error {
	businessID := c.Params("businessId")

	var weekly []models.WeeklyAvailability
	if err := db.DB.Where("business_id = ?", businessID).Order("day_of_week ASC").Find(&weekly).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch weekly availability",
			Error:   err.Error(),
		})
	}
	return c.JSON(weekly)
}

type upsertWeeklyRequest struct {
	DayOfWeek   int    `json:"day_of_week"`
	IsAvailable bool   `json:"is_available"`
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
}

// UpsertWeeklyAvailability creates or replaces the window for one day of the
// week. Owner only.
func UpsertWeeklyAvailability(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)

	var req upsertWeeklyRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if req.DayOfWeek < 0 || req.DayOfWeek > 6 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid day_of_week",
			Error:   "want 0 (Sunday) to 6 (Saturday)",
		})
	}
	if req.IsAvailable {
		start, err := scheduling.ParseClock(req.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid start_time",
				Error:   err.Error(),
			})
		}
		end, err := scheduling.ParseClock(req.EndTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid end_time",
				Error:   err.Error(),
			})
		}
		if start >= end {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid window",
				Error:   "start_time must be before end_time",
			})
		}
	}

	var weekly models.WeeklyAvailability
	err := db.DB.Where("business_id = ? AND day_of_week = ?", business.ID, req.DayOfWeek).First(&weekly).Error
	if err == nil {
		weekly.IsAvailable = req.IsAvailable
		weekly.StartTime = req.StartTime
		weekly.EndTime = req.EndTime
		err = db.DB.Save(&weekly).Error
	} else {
		weekly = models.WeeklyAvailability{
			BusinessID:  business.ID,
			DayOfWeek:   models.DayOfWeek(req.DayOfWeek),
			IsAvailable: req.IsAvailable,
			StartTime:   req.StartTime,
			EndTime:     req.EndTime,
		}
		err = db.DB.Create(&weekly).Error
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to save weekly availability",
			Error:   err.Error(),
		})
	}

	availCache.Invalidate(c.Context(), business.ID)
	return c.JSON(weekly)
}

// DeleteWeeklyAvailability removes the window for one day of the week,
// closing that day by default.
func DeleteWeeklyAvailability(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)
	day := c.Params("day")

	if err := db.DB.Where("business_id = ? AND day_of_week = ?", business.ID, day).
		Delete(&models.WeeklyAvailability{}).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete weekly availability",
			Error:   err.Error(),
		})
	}

	availCache.Invalidate(c.Context(), business.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

type updateTimezoneRequest struct {
	Timezone string `json:"timezone"`
}

// UpdateTimezone changes the business's IANA timezone and re-stamps the UTC
// representation of every future appointment. Wall-clock times never move.
func UpdateTimezone(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)

	var req updateTimezoneRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if _, err := time.LoadLocation(req.Timezone); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid timezone",
			Error:   "unknown IANA identifier",
		})
	}

	if err := db.DB.Model(business).Update("timezone", req.Timezone).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update timezone",
			Error:   err.Error(),
		})
	}

	if err := guard.RestampAppointments(c.Context(), business.ID); err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"timezone": req.Timezone})
}
