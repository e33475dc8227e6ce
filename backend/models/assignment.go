package models

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// GroupAll inside Assignment.Groups means the assignment targets every
// group in the system.
const GroupAll = "all"

type Assignment struct {
	gorm.Model
	Title         string         `gorm:"not null" json:"title"`
	Description   string         `json:"description"`
	SubjectID     uint           `gorm:"not null" json:"subject_id"`
	CreatedBy     uint           `gorm:"not null" json:"created_by"`
	Deadline      time.Time      `gorm:"not null" json:"deadline"`
	MaxGrade      int            `gorm:"default:100" json:"max_grade"`
	Groups        pq.StringArray `gorm:"type:text[];not null" json:"groups"`
	AttachedFiles pq.StringArray `gorm:"type:text[]" json:"attached_files"`
	IsPublished   bool           `gorm:"default:true" json:"is_published"`

	Subject Subject `gorm:"foreignKey:SubjectID" json:"-"`
	Creator User    `gorm:"foreignKey:CreatedBy" json:"-"`
}

// VisibleToGroup reports whether the assignment targets the given group
// code. The "all" sentinel is checked alongside the literal code, not
// instead of it.
func (a *Assignment) VisibleToGroup(groupCode string) bool {
	for _, g := range a.Groups {
		if g == groupCode || g == GroupAll {
			return true
		}
	}
	return false
}

// Overdue reports whether the deadline has passed at the given moment.
func (a *Assignment) Overdue(now time.Time) bool {
	return a.Deadline.Before(now)
}
