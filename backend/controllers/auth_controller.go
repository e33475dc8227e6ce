package controllers

import (
	"errors"
	"log"

	"tasksonline/backend/config"
	"tasksonline/backend/models"
	"tasksonline/backend/utils"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type AuthController struct {
	DB  *gorm.DB
	Cfg *config.Config
}

func NewAuthController(db *gorm.DB, cfg *config.Config) *AuthController {
	return &AuthController{DB: db, Cfg: cfg}
}

type RegisterRequest struct {
	FirstName string   `json:"firstName" validate:"required"`
	LastName  string   `json:"lastName" validate:"required"`
	Email     string   `json:"email" validate:"required,email"`
	Password  string   `json:"password" validate:"required,min=6"`
	Role      string   `json:"role" validate:"required,oneof=student teacher"`
	Group     string   `json:"group"`
	Subjects  []string `json:"subjects"` // subject codes, teachers only
}

// Register godoc
// @Summary Register a new user
// @Description Creates a student (joins a group) or a teacher (optionally assigned subjects by code)
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/register [post]
func (ac *AuthController) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	if req.Role == models.RoleStudent && req.Group == "" {
		return utils.BadRequest(c, "Group is required for students")
	}

	var existing models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		return utils.BadRequest(c, "A user with this email already exists")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return utils.InternalServerError(c, "Could not query database")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return utils.InternalServerError(c, "Could not hash password")
	}

	user := models.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Avatar:    models.AvatarInitials(req.FirstName, req.LastName),
		IsActive:  true,
	}
	if err := ac.DB.Create(&user).Error; err != nil {
		return utils.InternalServerError(c, "Could not create user")
	}

	var group *models.Group
	if user.Role == models.RoleStudent {
		group = ac.assignStudentGroup(&user, req.Group)
	}
	if user.Role == models.RoleTeacher {
		ac.assignTeacherSubjects(&user, req.Subjects)
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	response := fiber.Map{
		"id":         user.ID,
		"email":      user.Email,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"role":       user.Role,
		"avatar":     user.Avatar,
		"is_active":  user.IsActive,
	}
	if group != nil {
		response["group"] = group
	}

	return c.JSON(fiber.Map{
		"user":  response,
		"token": token,
	})
}

// assignStudentGroup joins the student to their group and backfills
// user_subjects from the assignments already visible to that group.
// The backfill is best-effort: failures are logged and never abort the
// registration.
func (ac *AuthController) assignStudentGroup(user *models.User, groupCode string) *models.Group {
	var group models.Group
	if err := ac.DB.Where("code = ?", groupCode).First(&group).Error; err != nil {
		log.Printf("registration: group %q not found for user %d", groupCode, user.ID)
		return nil
	}

	if err := ac.DB.Create(&models.UserGroup{UserID: user.ID, GroupID: group.ID}).Error; err != nil {
		log.Printf("registration: could not join user %d to group %d: %v", user.ID, group.ID, err)
		return &group
	}

	var subjectIDs []uint
	err := ac.DB.Model(&models.Assignment{}).
		Distinct("subject_id").
		Where("? = ANY(groups) OR ? = ANY(groups)", groupCode, models.GroupAll).
		Pluck("subject_id", &subjectIDs).Error
	if err != nil {
		log.Printf("registration: subject backfill query failed for user %d: %v", user.ID, err)
		return &group
	}

	for _, subjectID := range subjectIDs {
		link := models.UserSubject{UserID: user.ID, SubjectID: subjectID}
		if err := ac.DB.Where(link).FirstOrCreate(&link).Error; err != nil {
			log.Printf("registration: subject backfill failed for user %d subject %d: %v", user.ID, subjectID, err)
		}
	}
	return &group
}

// assignTeacherSubjects grants the explicitly requested subject codes.
// Unknown codes are skipped with a log line.
func (ac *AuthController) assignTeacherSubjects(user *models.User, codes []string) {
	for _, code := range codes {
		var subject models.Subject
		if err := ac.DB.Where("code = ?", code).First(&subject).Error; err != nil {
			log.Printf("registration: subject %q not found for teacher %d", code, user.ID)
			continue
		}
		link := models.UserSubject{UserID: user.ID, SubjectID: subject.ID}
		if err := ac.DB.Where(link).FirstOrCreate(&link).Error; err != nil {
			log.Printf("registration: could not assign subject %d to teacher %d: %v", subject.ID, user.ID, err)
		}
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Login godoc
// @Summary User login
// @Description Authenticates by email and password and returns a JWT token
// @Tags auth
// @Accept json
// @Produce json
// @Router /auth/login [post]
func (ac *AuthController) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return utils.BadRequest(c, "Cannot parse JSON")
	}

	if errs := utils.ValidateStruct(req); errs != nil {
		return utils.ValidationError(c, errs)
	}

	var user models.User
	if err := ac.DB.Where("email = ? AND is_active = true", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.Unauthorized(c, "Invalid email or password")
		}
		return utils.InternalServerError(c, "Could not query database")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return utils.Unauthorized(c, "Invalid email or password")
	}

	token, err := utils.GenerateJWTToken(&user, ac.Cfg)
	if err != nil {
		return utils.InternalServerError(c, "Could not generate token")
	}

	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":         user.ID,
			"email":      user.Email,
			"first_name": user.FirstName,
			"last_name":  user.LastName,
			"role":       user.Role,
			"avatar":     user.Avatar,
		},
		"token": token,
	})
}
