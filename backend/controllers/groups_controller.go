package controllers

import (
	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type GroupsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewGroupsController(db *gorm.DB, cfg *config.Config) *GroupsController {
	return &GroupsController{DB: db, Cfg: cfg}
}

// GetGroups returns the full group list, for registration forms and
// assignment targeting.
func (gc *GroupsController) GetGroups(c *fiber.Ctx) error {
	var groups []models.Group
	if err := gc.DB.Order("name ASC").Find(&groups).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}
	return c.JSON(fiber.Map{"groups": groups})
}
