package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/utils"
)

// GetAvailability godoc
// @Summary Get open time slots for a business
// @Description Day-by-day open slots for [startDate, startDate+days), sized by the service duration
// @Tags availability
// @Produce json
// @Param businessId path int true "Business ID"
// @Param serviceId query int false "Service ID (omit for a 30-minute preview grid)"
// @Param startDate query string false "YYYY-MM-DD in the business timezone, default today"
// @Param days query int false "Number of days, max 30"
// @Success 200 {array} scheduling.DayAvailability
// @Failure 400 {object} utils.ErrorResponse
// @Router /businesses/{businessId}/availability [get]
func GetAvailability(c *fiber.Ctx) error {
	businessID, err := strconv.ParseUint(c.Params("businessId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid business ID",
		})
	}

	var serviceID uint64
	if raw := c.Query("serviceId"); raw != "" {
		serviceID, err = strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
				Message: "Invalid service ID",
			})
		}
	}

	days := c.QueryInt("days")
	startDate := c.Query("startDate")

	result, err := engine.CalculateAvailability(c.Context(), uint(businessID), uint(serviceID), startDate, days)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}
