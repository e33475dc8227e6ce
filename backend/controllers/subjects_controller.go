package controllers

import (
	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubjectsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewSubjectsController(db *gorm.DB, cfg *config.Config) *SubjectsController {
	return &SubjectsController{DB: db, Cfg: cfg}
}

// GetSubjects godoc
// @Summary Role-scoped subject list
// @Description Students see the distinct subjects of assignments visible to their group (derived, not stored); teachers see their assigned subjects
// @Tags subjects
// @Produce json
// @Security ApiKeyAuth
// @Router /subjects [get]
func (sc *SubjectsController) GetSubjects(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	var subjects []models.Subject
	if user.Role == models.RoleStudent {
		var group models.Group
		err := sc.DB.
			Select("groups.*").
			Joins("JOIN user_groups ON user_groups.group_id = groups.id").
			Where("user_groups.user_id = ?", user.ID).
			First(&group).Error
		if err != nil {
			// No group, no visible assignments, no subjects.
			return c.JSON(fiber.Map{"subjects": []models.Subject{}})
		}

		err = sc.DB.Distinct("subjects.*").
			Joins("JOIN assignments ON assignments.subject_id = subjects.id").
			Where("assignments.is_published = true AND (? = ANY(assignments.groups) OR ? = ANY(assignments.groups))",
				group.Code, models.GroupAll).
			Order("subjects.name ASC").
			Find(&subjects).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
	} else {
		err := sc.DB.Distinct("subjects.*").
			Joins("JOIN user_subjects ON user_subjects.subject_id = subjects.id").
			Where("user_subjects.user_id = ?", user.ID).
			Order("subjects.name ASC").
			Find(&subjects).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
	}

	if subjects == nil {
		subjects = []models.Subject{}
	}
	return c.JSON(fiber.Map{"subjects": subjects})
}

// AssignAllSubjects godoc
// @Summary Opt-in bulk subject assignment
// @Description Grants every subject in the system to the calling teacher
// @Tags subjects
// @Produce json
// @Security ApiKeyAuth
// @Router /subjects/assign-all [post]
func (sc *SubjectsController) AssignAllSubjects(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	var subjects []models.Subject
	if err := sc.DB.Find(&subjects).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	added := 0
	for _, subject := range subjects {
		var count int64
		err := sc.DB.Model(&models.UserSubject{}).
			Where("user_id = ? AND subject_id = ?", user.ID, subject.ID).
			Count(&count).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
		if count > 0 {
			continue
		}
		if err := sc.DB.Create(&models.UserSubject{UserID: user.ID, SubjectID: subject.ID}).Error; err != nil {
			return utils.InternalServerError(c, "Could not assign subjects")
		}
		added++
	}

	return c.JSON(fiber.Map{
		"addedCount":    added,
		"totalSubjects": len(subjects),
	})
}
