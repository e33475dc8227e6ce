package middleware

import (
	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates the bearer token and stores the resolved
// identity in c.Locals("user") for the handlers downstream.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := utils.ExtractUserFromToken(c, cfg)
		if err != nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		c.Locals("user", user)
		return c.Next()
	}
}

// RequireRole rejects callers whose token role does not match. Must run
// after AuthMiddleware.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := utils.CurrentUser(c)
		if user == nil {
			return utils.Unauthorized(c, "Unauthorized")
		}
		if user.Role != role {
			return utils.Forbidden(c, "Forbidden - "+role+" access required")
		}
		return c.Next()
	}
}

// TeacherOnly and StudentOnly are the two gates the route table uses.
func TeacherOnly() fiber.Handler { return RequireRole(models.RoleTeacher) }
func StudentOnly() fiber.Handler { return RequireRole(models.RoleStudent) }
