package models

import "gorm.io/gorm"

// Group is a student cohort. Its code is the value assignments carry in
// their groups column.
type Group struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`
	Code string `gorm:"unique;not null" json:"code"`
}

type Subject struct {
	gorm.Model
	Name        string `gorm:"not null" json:"name"`
	Code        string `gorm:"unique;not null" json:"code"`
	Description string `json:"description"`
}
