package models

import (
	"math"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Submission statuses. "not-submitted" is virtual: it is what the client
// shows when no row exists, no row ever carries it.
const (
	StatusNotSubmitted = "not-submitted"
	StatusSubmitted    = "submitted"
	StatusGraded       = "graded"
)

type Submission struct {
	gorm.Model
	AssignmentID   uint           `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"assignment_id"`
	StudentID      uint           `gorm:"not null;uniqueIndex:idx_submissions_assignment_student" json:"student_id"`
	SubmittedText  string         `json:"submitted_text"`
	SubmittedFiles pq.StringArray `gorm:"type:text[]" json:"submitted_files"`
	SubmittedAt    time.Time      `json:"submitted_at"`
	Status         string         `gorm:"not null" json:"status"`
	Grade          *int           `json:"grade"`
	Feedback       string         `json:"feedback"`

	Assignment Assignment `gorm:"foreignKey:AssignmentID" json:"-"`
	Student    User       `gorm:"foreignKey:StudentID" json:"-"`
}

// CanTransition enforces the forward-only lifecycle
// not-submitted -> submitted -> graded. Regrading (graded -> graded)
// overwrites and is allowed.
func CanTransition(from, to string) bool {
	switch to {
	case StatusSubmitted:
		return from == StatusNotSubmitted
	case StatusGraded:
		return from == StatusSubmitted || from == StatusGraded
	}
	return false
}

// GradeInBounds validates a grade against the assignment's max grade.
func GradeInBounds(grade, maxGrade int) bool {
	return grade >= 0 && grade <= maxGrade
}

// AverageGrade returns the mean grade over graded submissions, rounded
// to one decimal place. With no graded submissions it is 0.0, never NaN.
func AverageGrade(submissions []Submission) float64 {
	var sum, count int
	for _, s := range submissions {
		if s.Status == StatusGraded && s.Grade != nil {
			sum += *s.Grade
			count++
		}
	}
	if count == 0 {
		return 0.0
	}
	return math.Round(float64(sum)/float64(count)*10) / 10
}
