package controllers

import (
	"time"

	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type StatisticsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewStatisticsController(db *gorm.DB, cfg *config.Config) *StatisticsController {
	return &StatisticsController{DB: db, Cfg: cfg}
}

// GetStatistics godoc
// @Summary Role-scoped aggregate counts
// @Description Student counters are derived on every request, nothing is cached or materialized
// @Tags statistics
// @Produce json
// @Security ApiKeyAuth
// @Router /statistics [get]
func (stc *StatisticsController) GetStatistics(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	if user.Role == models.RoleStudent {
		return stc.studentStatistics(c, user.ID)
	}
	return stc.teacherStatistics(c, user.ID)
}

func (stc *StatisticsController) studentStatistics(c *fiber.Ctx, userID uint) error {
	var group models.Group
	err := stc.DB.
		Select("groups.*").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		First(&group).Error
	if err != nil {
		return c.JSON(fiber.Map{"statistics": fiber.Map{
			"activeAssignments":    0,
			"submittedAssignments": 0,
			"overdueAssignments":   0,
			"averageGrade":         0.0,
		}})
	}

	now := time.Now()
	// Fresh builder per count: gorm query builders accumulate conditions.
	visible := func() *gorm.DB {
		return stc.DB.Model(&models.Assignment{}).
			Where("is_published = true AND (? = ANY(groups) OR ? = ANY(groups))", group.Code, models.GroupAll)
	}

	var active int64
	if err := visible().Where("deadline > ?", now).Count(&active).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var submitted int64
	err = stc.DB.Model(&models.Submission{}).
		Where("student_id = ? AND status IN ?", userID, []string{models.StatusSubmitted, models.StatusGraded}).
		Count(&submitted).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	// Overdue counts only assignments with no submission row at all: a
	// late but submitted assignment is submitted, not overdue.
	submittedIDs := stc.DB.Model(&models.Submission{}).
		Select("assignment_id").
		Where("student_id = ?", userID)
	var overdue int64
	err = visible().
		Where("deadline < ? AND id NOT IN (?)", now, submittedIDs).
		Count(&overdue).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	var graded []models.Submission
	err = stc.DB.
		Where("student_id = ? AND status = ?", userID, models.StatusGraded).
		Find(&graded).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"statistics": fiber.Map{
		"activeAssignments":    active,
		"submittedAssignments": submitted,
		"overdueAssignments":   overdue,
		"averageGrade":         models.AverageGrade(graded),
	}})
}

// teacherStatistics reports the pending-review queue; the remaining
// counters have no teacher-side meaning yet and stay zero.
func (stc *StatisticsController) teacherStatistics(c *fiber.Ctx, userID uint) error {
	var pending int64
	err := stc.DB.Model(&models.Submission{}).
		Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
		Where("assignments.created_by = ? AND submissions.status = ?", userID, models.StatusSubmitted).
		Count(&pending).Error
	if err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	return c.JSON(fiber.Map{"statistics": fiber.Map{
		"activeAssignments":    0,
		"submittedAssignments": 0,
		"overdueAssignments":   0,
		"averageGrade":         0.0,
		"pendingReview":        pending,
	}})
}
