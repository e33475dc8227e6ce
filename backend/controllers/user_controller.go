package controllers

import (
	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type UserController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewUserController(db *gorm.DB, cfg *config.Config) *UserController {
	return &UserController{DB: db, Cfg: cfg}
}

// GetProfile godoc
// @Summary Get own profile
// @Description Returns the authenticated user's profile, with the group for students
// @Tags users
// @Produce json
// @Security ApiKeyAuth
// @Router /user/profile [get]
func (uc *UserController) GetProfile(c *fiber.Ctx) error {
	authUser := utils.CurrentUser(c)

	var user models.User
	if err := uc.DB.First(&user, authUser.ID).Error; err != nil {
		return utils.NotFound(c, "User not found")
	}

	profile := fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       user.Role,
		"avatar":     user.Avatar,
	}

	if user.Role == models.RoleStudent {
		var group models.Group
		err := uc.DB.
			Select("groups.*").
			Joins("JOIN user_groups ON user_groups.group_id = groups.id").
			Where("user_groups.user_id = ?", user.ID).
			First(&group).Error
		if err == nil {
			profile["group"] = group
		} else {
			profile["group"] = nil
		}
	}

	return c.JSON(fiber.Map{"user": profile})
}
