package controllers

import (
	"errors"
	"time"

	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type AssignmentsController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAssignmentsController(db *gorm.DB, cfg *config.Config) *AssignmentsController {
	return &AssignmentsController{DB: db, Cfg: cfg}
}

// GetAssignments godoc
// @Summary Role-scoped assignment list
// @Description Students see published assignments targeting their group (or "all"), teachers see assignments of their subjects
// @Tags assignments
// @Produce json
// @Security ApiKeyAuth
// @Router /assignments [get]
func (ac *AssignmentsController) GetAssignments(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	var assignments []models.Assignment
	if user.Role == models.RoleStudent {
		groupCode, ok := ac.studentGroupCode(user.ID)
		if !ok {
			// A student without a group sees an empty list, not an error.
			return c.JSON(fiber.Map{"assignments": []fiber.Map{}})
		}

		err := ac.DB.Preload("Subject").
			Where("is_published = true AND (? = ANY(groups) OR ? = ANY(groups))", groupCode, models.GroupAll).
			Order("deadline ASC").
			Find(&assignments).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
	} else {
		err := ac.DB.Preload("Subject").
			Select("assignments.*").
			Joins("JOIN user_subjects ON user_subjects.subject_id = assignments.subject_id").
			Where("user_subjects.user_id = ?", user.ID).
			Order("assignments.created_at DESC").
			Find(&assignments).Error
		if err != nil {
			return utils.InternalServerError(c, "Could not query database")
		}
	}

	result := make([]fiber.Map, 0, len(assignments))
	for _, assignment := range assignments {
		result = append(result, assignmentResponse(&assignment))
	}

	return c.JSON(fiber.Map{"assignments": result})
}

type CreateAssignmentRequest struct {
	Title       string   `json:"title" validate:"required"`
	Description string   `json:"description" validate:"required"`
	SubjectID   uint     `json:"subjectId" validate:"required"`
	Groups      []string `json:"groups" validate:"required,min=1"`
	Deadline    string   `json:"deadline" validate:"required"`
	MaxGrade    int      `json:"maxGrade"`
}

// CreateAssignment godoc
// @Summary Create an assignment
// @Description Teacher-only. Deadline and a non-empty target group set are required
// @Tags assignments
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /assignments [post]
func (ac *AssignmentsController) CreateAssignment(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	var req CreateAssignmentRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		return utils.BadRequest(c, "Invalid deadline format")
	}

	var subject models.Subject
	if err := ac.DB.First(&subject, req.SubjectID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Subject not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	maxGrade := req.MaxGrade
	if maxGrade <= 0 {
		maxGrade = 100
	}

	assignment := models.Assignment{
		Title:       req.Title,
		Description: req.Description,
		SubjectID:   req.SubjectID,
		CreatedBy:   user.ID,
		Deadline:    deadline,
		MaxGrade:    maxGrade,
		Groups:      req.Groups,
		IsPublished: true,
	}
	if err := ac.DB.Create(&assignment).Error; err != nil {
		return utils.InternalServerError(c, "Could not create assignment")
	}
	assignment.Subject = subject

	return c.JSON(fiber.Map{"assignment": assignmentResponse(&assignment)})
}

func (ac *AssignmentsController) studentGroupCode(userID uint) (string, bool) {
	var group models.Group
	err := ac.DB.
		Select("groups.*").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		First(&group).Error
	if err != nil {
		return "", false
	}
	return group.Code, true
}

func parseDeadline(value string) (time.Time, error) {
	// RFC3339 from API clients, datetime-local from the browser form.
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02T15:04", value)
}

func assignmentResponse(a *models.Assignment) fiber.Map {
	return fiber.Map{
		"id":             a.ID,
		"title":          a.Title,
		"description":    a.Description,
		"subject_id":     a.SubjectID,
		"subject_name":   a.Subject.Name,
		"created_by":     a.CreatedBy,
		"deadline":       a.Deadline,
		"max_grade":      a.MaxGrade,
		"groups":         a.Groups,
		"attached_files": a.AttachedFiles,
		"is_published":   a.IsPublished,
		"created_at":     a.CreatedAt,
	}
}
