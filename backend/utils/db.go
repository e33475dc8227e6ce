package utils

import (
	"fmt"
	"log"

	"tasksonline/backend/config"
	"tasksonline/backend/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func InitDB(cfg *config.Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName)

	// TranslateError lets callers match duplicate-key violations with
	// errors.Is(err, gorm.ErrDuplicatedKey).
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Subject{},
		&models.Assignment{},
		&models.Submission{},
		&models.UserGroup{},
		&models.UserSubject{},
	); err != nil {
		return nil, err
	}

	return db, nil
}

// SeedBasicData inserts the baseline groups and subjects. Idempotent,
// keyed on the unique codes.
func SeedBasicData(db *gorm.DB) error {
	groupCodes := []string{
		"1-ISP9-72", "1-ISP9-73", "1-ISP9-74", "1-ISP9-75", "1-ISP9-76",
		"2-ISP9-71", "2-ISP9-72", "3-ISP9-70", "4-ISP9-69",
	}

	for _, code := range groupCodes {
		group := models.Group{Name: code, Code: code}
		if err := db.Where(models.Group{Code: code}).FirstOrCreate(&group).Error; err != nil {
			return err
		}
	}

	subjects := []models.Subject{
		{Name: "Programming", Code: "PROG", Description: "Programming fundamentals in Python and Java"},
		{Name: "Databases", Code: "DB", Description: "Database design and usage"},
		{Name: "Web Development", Code: "WEB", Description: "Building modern web applications"},
		{Name: "Mathematics", Code: "MATH", Description: "Higher mathematics for programmers"},
		{Name: "Algorithms", Code: "ALG", Description: "Algorithms and data structures"},
	}

	for _, subject := range subjects {
		s := subject
		if err := db.Where(models.Subject{Code: s.Code}).FirstOrCreate(&s).Error; err != nil {
			return err
		}
	}

	log.Println("Basic data (groups and subjects) inserted")
	return nil
}
