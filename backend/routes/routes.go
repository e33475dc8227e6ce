package routes

import (
	"tasksonline/backend/config"
	"tasksonline/backend/controllers"
	"tasksonline/backend/middleware"
	"tasksonline/backend/storage"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, cfg *config.Config, store *storage.Store) {
	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "OK", "message": "Server is running"})
	})

	// Auth routes
	authController := controllers.NewAuthController(db, cfg)
	api.Post("/auth/register", authController.Register)
	api.Post("/auth/login", authController.Login)

	// Middleware
	authMiddleware := middleware.AuthMiddleware(cfg)

	// User routes
	userController := controllers.NewUserController(db, cfg)
	api.Get("/user/profile", authMiddleware, userController.GetProfile)

	// Assignment routes
	assignmentsController := controllers.NewAssignmentsController(db, cfg)
	api.Get("/assignments", authMiddleware, assignmentsController.GetAssignments)
	api.Post("/assignments", authMiddleware, middleware.TeacherOnly(), assignmentsController.CreateAssignment)

	// Submission routes
	submissionsController := controllers.NewSubmissionsController(db, cfg, store)
	api.Get("/submissions", authMiddleware, submissionsController.GetSubmissions)
	api.Post("/submissions", authMiddleware, middleware.StudentOnly(), submissionsController.CreateSubmission)
	api.Get("/submissions/:id", authMiddleware, submissionsController.GetSubmission)
	api.Put("/submissions/:id/grade", authMiddleware, middleware.TeacherOnly(), submissionsController.GradeSubmission)

	// Subject routes
	subjectsController := controllers.NewSubjectsController(db, cfg)
	api.Get("/subjects", authMiddleware, subjectsController.GetSubjects)
	api.Post("/subjects/assign-all", authMiddleware, middleware.TeacherOnly(), subjectsController.AssignAllSubjects)

	// Group routes
	groupsController := controllers.NewGroupsController(db, cfg)
	api.Get("/groups", authMiddleware, groupsController.GetGroups)

	// Statistics routes
	statisticsController := controllers.NewStatisticsController(db, cfg)
	api.Get("/statistics", authMiddleware, statisticsController.GetStatistics)

	// File routes
	filesController := controllers.NewFilesController(cfg, store)
	api.Get("/files/download/:filename", authMiddleware, filesController.DownloadFile)
}
