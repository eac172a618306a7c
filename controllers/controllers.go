package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/scheduling"
	"github.com/bookloop/booking-engine/utils"
)

var (
	engine     *scheduling.Engine
	guard      *scheduling.Guard
	availCache *scheduling.Cache
)

// Init wires the shared scheduling components. Called once from main before
// any route is registered.
func Init(e *scheduling.Engine, g *scheduling.Guard, c *scheduling.Cache) {
	engine = e
	guard = g
	availCache = c
}

// respondError maps the scheduling error taxonomy onto HTTP statuses:
// validation 400, not found 404, slot conflict and stale version 409, outside
// open hours 422 and everything else a generic retryable 500 that hides
// internal detail.
func respondError(c *fiber.Ctx, err error) error {
	var v *scheduling.ValidationError
	if errors.As(err, &v) {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid " + v.Field,
			Error:   v.Reason,
		})
	}
	if scheduling.IsNotFound(err) {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Not found",
		})
	}
	if scheduling.IsConflict(err) {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Time slot no longer available",
			Error:   "pick another time and try again",
		})
	}
	if scheduling.IsStaleVersion(err) {
		return c.Status(fiber.StatusConflict).JSON(utils.ErrorResponse{
			Message: "Appointment was changed by another request",
			Error:   "refresh and try again",
		})
	}
	var u *scheduling.UnavailableError
	if errors.As(err, &u) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(utils.ErrorResponse{
			Message: "Business is not open at the requested time",
			Error:   u.Reason,
		})
	}
	return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
		Message: "Something went wrong, please try again",
	})
}
