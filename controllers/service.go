package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/db"
	"github.com/bookloop/booking-engine/models"
	"github.com/bookloop/booking-engine/utils"
)

// GetAllServices returns a business's active services
func GetAllServices(c *fiber.Ctx) error {
	businessID := c.Params("businessId")

	var services []models.Service
	if err := db.DB.Where("business_id = ? AND is_active = ?", businessID, true).Find(&services).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to fetch services",
			Error:   err.Error(),
		})
	}
	return c.JSON(services)
}

func GetService(c *fiber.Ctx) error {
	var service models.Service
	err := db.DB.Where("business_id = ?", c.Params("businessId")).First(&service, c.Params("id")).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found",
		})
	}
	return c.JSON(service)
}

type serviceRequest struct {
	Name            string  `json:"name"`
	Description     string  `json:"description"`
	DurationMinutes int     `json:"duration_minutes"`
	Price           float64 `json:"price"`
	Discount        float64 `json:"discount"`
}

// CreateService creates a new bookable service. Owner only.
func CreateService(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)

	var req serviceRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}
	if req.DurationMinutes <= 0 {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Invalid duration_minutes",
			Error:   "must be a positive number of minutes",
		})
	}

	service := models.Service{
		BusinessID:      business.ID,
		Name:            req.Name,
		Description:     req.Description,
		DurationMinutes: req.DurationMinutes,
		Price:           req.Price,
		Discount:        req.Discount,
		IsActive:        true,
	}
	if err := db.DB.Create(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to create service",
			Error:   err.Error(),
		})
	}

	availCache.Invalidate(c.Context(), business.ID)
	return c.Status(fiber.StatusCreated).JSON(service)
}

// UpdateService updates price, naming or active flag. Duration is immutable
// once appointments exist against the service, so slot sizing stays stable.
func UpdateService(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)

	var service models.Service
	if err := db.DB.Where("business_id = ?", business.ID).First(&service, c.Params("id")).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found",
		})
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Discount    *float64 `json:"discount"`
		IsActive    *bool    `json:"is_active"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(utils.ErrorResponse{
			Message: "Failed to parse request body",
			Error:   err.Error(),
		})
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Discount != nil {
		service.Discount = *req.Discount
	}
	if req.IsActive != nil {
		service.IsActive = *req.IsActive
	}

	if err := db.DB.Save(&service).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to update service",
			Error:   err.Error(),
		})
	}

	availCache.Invalidate(c.Context(), business.ID)
	return c.JSON(service)
}

// DeleteService deactivates a service instead of removing it, so past
// appointments keep their reference.
func DeleteService(c *fiber.Ctx) error {
	business := c.Locals("business").(*models.Business)

	res := db.DB.Model(&models.Service{}).
		Where("business_id = ? AND id = ?", business.ID, c.Params("id")).
		Update("is_active", false)
	if res.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(utils.ErrorResponse{
			Message: "Failed to deactivate service",
			Error:   res.Error.Error(),
		})
	}
	if res.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(utils.ErrorResponse{
			Message: "Service not found",
		})
	}

	availCache.Invalidate(c.Context(), business.ID)
	return c.SendStatus(fiber.StatusNoContent)
}
