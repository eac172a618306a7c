package controllers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/db"
	"github.com/bookloop/booking-engine/models"
	"github.com/bookloop/booking-engine/scheduling"
	"github.com/bookloop/booking-engine/utils"
)

// ListExceptions returns date-specific overrides, optionally bounded by
// from/to dates.
func ListExceptions(c *fiber.Ctx) error {
	businessID := c.Params("businessId")

	query := db.DB.Where("business_id = ?", businessID)
	if from := c.Query("from"); from != "" {
		query = query.Where("date >= ?", from)
	}
	if to := c.Query("to"); to != "" {
		query = query.Where("date <= ?", to)
	}

	var exceptions []models.AvailabilityException
	if err := query.Order("date ASC").Find(&exceptions).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch exceptions",
			Error:   err.Error(),
		})
	}
	return c.JSON(exceptions)
}

type createExceptionRequest struct {
	Date        string  `json:"date"`
	StartTime   *string `json:"start_time"`
	EndTime     *string `json:"end_time"`
	IsAvailable bool    `json:"is_available"`
	Reason      string  `json:"reason"`
}

// CreateException adds a one-off override: a holiday closure, shortened day
// or extended hours. Partial exceptions for the same date must not overlap.
func CreateException(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)

	var req createExceptionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if _, err := time.Parse("2006-01-02", req.Date); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid date",
			Error:   "want YYYY-MM-DD",
		})
	}

	partial := req.StartTime != nil && req.EndTime != nil
	if (req.StartTime == nil) != (req.EndTime == nil) {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid window",
			Error:   "start_time and end_time must be given together",
		})
	}

	var requested scheduling.Interval
	if partial {
		start, err := scheduling.ParseClock(*req.StartTime)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid start_time",
				Error:   err.Error(),
			})
		}
		end, err := scheduling.ParseClock(*req.EndTime)
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
		requested = scheduling.Interval{Start: start, End: end}

		// Partial exceptions on one date must not overlap each other.
		var existing []models.AvailabilityException
		if err := db.DB.Where("business_id = ? AND date = ?", business.ID, req.Date).Find(&existing).Error; err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
				Message: "Failed to check existing exceptions",
				Error:   err.Error(),
			})
		}
		for _, ex := range existing {
			if ex.AllDay() {
				continue
			}
			start, err1 := scheduling.ParseClock(*ex.StartTime)
			end, err2 := scheduling.ParseClock(*ex.EndTime)
			if err1 != nil || err2 != nil {
				continue
			}
			if requested.Overlaps(scheduling.Interval{Start: start, End: end}) {
				return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
					Message: "Overlapping exception exists for this date",
				})
			}
		}
	}

	exception := models.AvailabilityException{
		BusinessID:  business.ID,
		Date:        req.Date,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		IsAvailable: req.IsAvailable,
		Reason:      req.Reason,
	}
	if err := db.DB.Create(&exception).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create exception",
			Error:   err.Error(),
		})
	}

	availCache.Invalidate(c.Context(), business.ID)
	return c.Status(fiber.StatusCreated).JSON(exception)
}

// DeleteException removes an override, restoring the weekly default for that
// date.
func DeleteException(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)
	id := c.Params("id")

	res := db.DB.Where("business_id = ?", business.ID).Delete(&models.AvailabilityException{}, id)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to delete exception",
			Error:   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Exception not found",
		})
	}

	availCache.Invalidate(c.Context(), business.ID)
	return c.SendStatus(fiber.StatusNoContent)
}
