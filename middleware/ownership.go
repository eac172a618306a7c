package middleware

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/bookloop/booking-engine/db"
	"github.com/bookloop/booking-engine/models"
)

// RequireBusinessOwner gates every mutation of a business calendar on an
// explicit capability check: the authenticated user must own the business in
// the :businessId path segment. Runs after Protected().
func RequireBusinessOwner() fiber.Handler {
	return func(c *fiber.Ctx) error {
		businessID, err := strconv.ParseUint(c.Params("businessId"), 10, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Invalid business ID",
			})
		}

		userID, ok := c.Locals("userID").(uint)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "No authenticated user",
			})
		}

		var business models.Business
		if err := db.DB.First(&business, uint(businessID)).Error; err != nil {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Business not found",
			})
		}

		if business.OwnerID != userID {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "You don't have permission to manage this business",
			})
		}

		c.Locals("business", &business)
		return c.Next()
	}
}
