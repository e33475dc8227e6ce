package models

import (
	"strings"

	"gorm.io/gorm"
)

const (
	RoleStudent = "student"
	RoleTeacher = "teacher"
)

type User struct {
	gorm.Model
	Email     string `gorm:"unique;not null" json:"email"`
	Password  string `gorm:"not null" json:"-"`
	FirstName string `gorm:"not null" json:"first_name"`
	LastName  string `gorm:"not null" json:"last_name"`
	Role      string `gorm:"not null" json:"role"` // student, teacher
	Avatar    string `gorm:"size:10" json:"avatar"`
	IsActive  bool   `gorm:"default:true" json:"is_active"`
}

// UserGroup links a student to their group. A student is expected to
// have exactly one row here.
type UserGroup struct {
	gorm.Model
	UserID  uint `gorm:"not null;uniqueIndex:idx_user_groups_pair" json:"user_id"`
	GroupID uint `gorm:"not null;uniqueIndex:idx_user_groups_pair" json:"group_id"`
}

// UserSubject links a teacher to a subject they run. For students the
// table is only a best-effort backfill; their visible subjects are
// derived through assignments instead.
type UserSubject struct {
	gorm.Model
	UserID    uint `gorm:"not null;uniqueIndex:idx_user_subjects_pair" json:"user_id"`
	SubjectID uint `gorm:"not null;uniqueIndex:idx_user_subjects_pair" json:"subject_id"`
}

// AvatarInitials builds the two-letter avatar stored at registration.
func AvatarInitials(firstName, lastName string) string {
	var b strings.Builder
	for _, name := range []string{firstName, lastName} {
		for _, r := range name {
			b.WriteString(strings.ToUpper(string(r)))
			break
		}
	}
	return b.String()
}
