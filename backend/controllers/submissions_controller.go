package controllers

import (
	"errors"
	"strconv"
	"time"

	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/storage"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type SubmissionsController struct {
	DB    *gorm.DB
	Cfg   *config.Config
	Store *storage.Store
}

func NewSubmissionsController(db *gorm.DB, cfg *config.Config, store *storage.Store) *SubmissionsController {
	return &SubmissionsController{DB: db, Cfg: cfg, Store: store}
}

// GetSubmissions godoc
// @Summary Role-scoped submission list
// @Description Students see their own submissions, teachers see submissions to assignments they created
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Router /submissions [get]
func (sc *SubmissionsController) GetSubmissions(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	var submissions []models.Submission
	query := sc.DB.Preload("Assignment.Subject").Order("submitted_at DESC")
	if user.Role == models.RoleStudent {
		query = query.Where("student_id = ?", user.ID)
	} else {
		query = query.Preload("Student").
			Select("submissions.*").
			Joins("JOIN assignments ON assignments.id = submissions.assignment_id").
			Where("assignments.created_by = ?", user.ID)
	}
	if err := query.Find(&submissions).Error; err != nil {
		return utils.InternalServerError(c, "Could not query database")
	}

	result := make([]fiber.Map, 0, len(submissions))
	for _, submission := range submissions {
		row := submissionResponse(&submission)
		row["assignment_title"] = submission.Assignment.Title
		row["max_grade"] = submission.Assignment.MaxGrade
		if user.Role == models.RoleStudent {
			row["subject_name"] = submission.Assignment.Subject.Name
		} else {
			row["first_name"] = submission.Student.FirstName
			row["last_name"] = submission.Student.LastName
			if group, ok := sc.studentGroup(submission.StudentID); ok {
				row["group_name"] = group.Name
			}
		}
		result = append(result, row)
	}

	return c.JSON(fiber.Map{"submissions": result})
}

// CreateSubmission godoc
// @Summary Submit work for an assignment
// @Description Student-only multipart submit with optional text and up to 10 attachments
// @Tags submissions
// @Accept mpfd
// @Produce json
// @Security ApiKeyAuth
// @Router /submissions [post]
func (sc *SubmissionsController) CreateSubmission(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	assignmentIDValue := c.FormValue("assignmentId")
	if assignmentIDValue == "" {
		return utils.BadRequest(c, "Assignment ID is required")
	}
	assignmentID, err := strconv.Atoi(assignmentIDValue)
	if err != nil {
		return utils.BadRequest(c, "Invalid assignment ID")
	}

	var assignment models.Assignment
	if err := sc.DB.First(&assignment, assignmentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Assignment not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	// The assignment has to be visible to this student: published and
	// targeting their group. Anything else reads as absent.
	groupCode, ok := sc.studentGroupCode(user.ID)
	if !ok || !assignment.IsPublished || !assignment.VisibleToGroup(groupCode) {
		return utils.NotFound(c, "Assignment not found")
	}

	var existing models.Submission
	err = sc.DB.Where("assignment_id = ? AND student_id = ?", assignment.ID, user.ID).First(&existing).Error
	if err == nil {
		return utils.Conflict(c, "Work for this assignment has already been submitted")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	var storedFiles []string
	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["files"]
		if len(files) > sc.Cfg.MaxUploadFiles {
			return utils.BadRequest(c, "Too many files")
		}
		storedFiles, err = sc.Store.SaveAll(files)
		if err != nil {
			if errors.Is(err, storage.ErrDisallowedType) || errors.Is(err, storage.ErrTooLarge) {
				return utils.BadRequest(c, err.Error())
			}
			return utils.InternalServerError(c, "Could not store uploaded files")
		}
	}

	submission := models.Submission{
		AssignmentID:   assignment.ID,
		StudentID:      user.ID,
		SubmittedText:  c.FormValue("submittedText"),
		SubmittedFiles: storedFiles,
		SubmittedAt:    time.Now(),
		Status:         models.StatusSubmitted,
	}
	if err := sc.DB.Create(&submission).Error; err != nil {
		// Files landed on disk before the row insert. Undo the batch so
		// a failed submit leaves nothing behind.
		sc.Store.Remove(storedFiles...)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return utils.Conflict(c, "Work for this assignment has already been submitted")
		}
		return utils.InternalServerError(c, "Could not create submission")
	}

	return c.JSON(fiber.Map{
		"submission":    submissionResponse(&submission),
		"uploadedFiles": storedFiles,
	})
}

// GetSubmission godoc
// @Summary Submission detail
// @Description Accessible to the owning student and the teacher who created the assignment
// @Tags submissions
// @Produce json
// @Security ApiKeyAuth
// @Router /submissions/{id} [get]
func (sc *SubmissionsController) GetSubmission(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	submissionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	var submission models.Submission
	err = sc.DB.Preload("Assignment").Preload("Student").First(&submission, submissionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Submission not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if user.Role == models.RoleTeacher && submission.Assignment.CreatedBy != user.ID {
		return utils.Forbidden(c, "No access to this submission")
	}
	if user.Role == models.RoleStudent && submission.StudentID != user.ID {
		return utils.Forbidden(c, "No access to this submission")
	}

	row := submissionResponse(&submission)
	row["assignment_title"] = submission.Assignment.Title
	row["max_grade"] = submission.Assignment.MaxGrade
	row["created_by"] = submission.Assignment.CreatedBy
	row["first_name"] = submission.Student.FirstName
	row["last_name"] = submission.Student.LastName
	row["email"] = submission.Student.Email
	if group, ok := sc.studentGroup(submission.StudentID); ok {
		row["group_name"] = group.Name
		row["group_code"] = group.Code
	}

	fileNames := make([]string, 0, len(submission.SubmittedFiles))
	for _, stored := range submission.SubmittedFiles {
		fileNames = append(fileNames, storage.OriginalName(stored))
	}
	row["file_names"] = fileNames

	return c.JSON(fiber.Map{"submission": row})
}

type GradeRequest struct {
	// No required tag: the validator dereferences the pointer and would
	// reject a legitimate grade of zero. Checked for nil in the handler.
	Grade    *int   `json:"grade"`
	Feedback string `json:"feedback"`
}

// GradeSubmission godoc
// @Summary Grade a submission
// @Description Only the teacher who created the assignment may grade; regrading overwrites
// @Tags submissions
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Router /submissions/{id}/grade [put]
func (sc *SubmissionsController) GradeSubmission(c *fiber.Ctx) error {
	user := utils.CurrentUser(c)

	submissionID, err := strconv.Atoi(c.Params("id"))
	if err != nil {
		return utils.BadRequest(c, "Invalid submission ID")
	}

	var req GradeRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}
	if req.Grade == nil {
		return utils.BadRequest(c, "Grade is required")
	}

	var submission models.Submission
	err = sc.DB.Preload("Assignment").First(&submission, submissionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFound(c, "Submission not found")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if submission.Assignment.CreatedBy != user.ID {
		return utils.Forbidden(c, "Only the teacher who created the assignment can grade it")
	}

	if !models.GradeInBounds(*req.Grade, submission.Assignment.MaxGrade) {
		return utils.BadRequest(c, "Grade must be between 0 and "+strconv.Itoa(submission.Assignment.MaxGrade))
	}

	if !models.CanTransition(submission.Status, models.StatusGraded) {
		return utils.Conflict(c, "Submission cannot be graded in its current state")
	}

	submission.Grade = req.Grade
	submission.Feedback = req.Feedback
	submission.Status = models.StatusGraded
	if err := sc.DB.Save(&submission).Error; err != nil {
		return utils.InternalServerError(c, "Could not update submission")
	}

	return c.JSON(fiber.Map{"submission": submissionResponse(&submission)})
}

func (sc *SubmissionsController) studentGroup(userID uint) (*models.Group, bool) {
	var group models.Group
	err := sc.DB.
		Select("groups.*").
		Joins("JOIN user_groups ON user_groups.group_id = groups.id").
		Where("user_groups.user_id = ?", userID).
		First(&group).Error
	if err != nil {
		return nil, false
	}
	return &group, true
}

func (sc *SubmissionsController) studentGroupCode(userID uint) (string, bool) {
	group, ok := sc.studentGroup(userID)
	if !ok {
		return "", false
	}
	return group.Code, true
}

func submissionResponse(s *models.Submission) fiber.Map {
	return fiber.Map{
		"id":              s.ID,
		"assignment_id":   s.AssignmentID,
		"student_id":      s.StudentID,
		"submitted_text":  s.SubmittedText,
		"submitted_files": s.SubmittedFiles,
		"submitted_at":    s.SubmittedAt,
		"status":          s.Status,
		"grade":           s.Grade,
		"feedback":        s.Feedback,
	}
}
