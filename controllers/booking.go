package controllers

import (
	"fmt"
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/db"
	"github.com/bookloop/booking-engine/models"
	"github.com/bookloop/booking-engine/scheduling"
	"github.com/bookloop/booking-engine/utils"
)

type createBookingRequest struct {
	ServiceID     uint   `json:"service_id"`
	Date          string `json:"date"`
	StartTime     string `json:"start_time"`
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
	CustomerPhone string `json:"customer_phone"`
}

type bookingResponse struct {
	AppointmentID      uint   `json:"appointment_id"`
	ConfirmationNumber string `json:"confirmation_number"`
	Date               string `json:"date"`
	StartTime          string `json:"start_time"`
	EndTime            string `json:"end_time"`
	Status             string `json:"status"`
}

// CreateBooking godoc
// @Summary Book a time slot
// @Description Re-validates the slot and commits atomically; losers of a race get 409
// @Tags bookings
// @Accept json
// @Produce json
// @Param businessId path int true "Business ID"
// @Param booking body createBookingRequest true "Booking"
// @Success 201 {object} bookingResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 409 {object} utils.ErrorResponse
// @Failure 422 {object} utils.ErrorResponse
// @Router /businesses/{businessId}/bookings [post]
func CreateBooking(c *fiber.Ctx) error {
	businessID, err := strconv.ParseUint(c.Params("businessId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid business ID",
		})
	}

	var req createBookingRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	appt, err := guard.CreateBooking(c.Context(), scheduling.BookingRequest{
		BusinessID:    uint(businessID),
		ServiceID:     req.ServiceID,
		Date:          req.Date,
		StartTime:     req.StartTime,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		CustomerPhone: req.CustomerPhone,
	})
	if err != nil {
		return respondError(c, err)
	}

	sendBookingEmail(appt)

	return c.Status(fiber.StatusCreated).JSON(bookingResponse{
		AppointmentID:      appt.ID,
		ConfirmationNumber: appt.ConfirmationNumber,
		Date:               appt.Date,
		StartTime:          appt.StartTime,
		EndTime:            appt.EndTime,
		Status:             string(appt.Status),
	})
}

type cancelBookingRequest struct {
	ConfirmationNumber string `json:"confirmation_number"`
}

// CancelBooking godoc
// @Summary Cancel a booking
// @Description Customers cancel with their confirmation number before the start time; owners until the end
// @Tags bookings
// @Accept json
// @Produce json
// @Param businessId path int true "Business ID"
// @Param id path int true "Appointment ID"
// @Success 200 {object} bookingResponse
// @Failure 400 {object} utils.ErrorResponse
// @Failure 404 {object} utils.ErrorResponse
// @Router /businesses/{businessId}/bookings/{id}/cancel [post]
func CancelBooking(c *fiber.Ctx) error {
	businessID, err := strconv.ParseUint(c.Params("businessId"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid business ID",
		})
	}
	appointmentID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid appointment ID",
		})
	}

	var req cancelBookingRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	// The owner route chains RequireBusinessOwner, which stores the business.
	_, byOwner := c.Locals("business").(*models.Business)

	appt, err := guard.CancelBooking(c.Context(), uint(businessID), uint(appointmentID), req.ConfirmationNumber, byOwner)
	if err != nil {
		return respondError(c, err)
	}

	sendCancellationEmail(appt)

	return c.JSON(bookingResponse{
		AppointmentID:      appt.ID,
		ConfirmationNumber: appt.ConfirmationNumber,
		Date:               appt.Date,
		StartTime:          appt.StartTime,
		EndTime:            appt.EndTime,
		Status:             string(appt.Status),
	})
}

// ListBookings godoc
// @Summary List a business's appointments (owner only)
// @Tags bookings
// @Produce json
// @Param businessId path int true "Business ID"
// @Param date query string false "Filter to one date (YYYY-MM-DD)"
// @Success 200 {array} models.Appointment
// @Failure 500 {object} utils.ErrorResponse
// @Router /businesses/{businessId}/bookings [get]
func ListBookings(c *fiber.Ctx) error {
	businessID := c.Params("businessId")

	query := db.DB.Preload("Service").Where("business_id = ?", businessID)
	if date := c.Query("date"); date != "" {
		query = query.Where("date = ?", date)
	}

	var appointments []models.Appointment
	if err := query.Order("starts_at_utc ASC").Find(&appointments).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch appointments",
			Error:   err.Error(),
		})
	}
	return c.JSON(appointments)
}

// Notification delivery is best-effort: a failed email never fails the
// booking, it is only logged.
func sendBookingEmail(appt *models.Appointment) {
	if appt.CustomerEmail == "" {
		return
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment has been booked.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Time:</strong> %s - %s</li>
			<li><strong>Status:</strong> %s</li>
			<li><strong>Confirmation number:</strong> %s</li>
		</ul>
		<p>Keep the confirmation number, you will need it to cancel.</p>
	`, appt.CustomerName, appt.Date, appt.StartTime, appt.EndTime, appt.Status, appt.ConfirmationNumber)
	if err := utils.SendEmail(appt.CustomerEmail, "Appointment Confirmation", body); err != nil {
		log.Printf("Failed to send confirmation email for appointment %d: %v", appt.ID, err)
	}
}

func sendCancellationEmail(appt *models.Appointment) {
	if appt.CustomerEmail == "" {
		return
	}
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Your appointment on %s at %s has been cancelled.</p>
	`, appt.CustomerName, appt.Date, appt.StartTime)
	if err := utils.SendEmail(appt.CustomerEmail, "Appointment Cancelled", body); err != nil {
		log.Printf("Failed to send cancellation email for appointment %d: %v", appt.ID, err)
	}
}
