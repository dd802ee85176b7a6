package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment status values as they appear on the wire
const (
	EnrollmentPending  = "pending"
	EnrollmentApproved = "approved"
	EnrollmentRejected = "rejected"
)

// EnrollmentStatuses is the closed set of valid status values
var EnrollmentStatuses = []string{EnrollmentPending, EnrollmentApproved, EnrollmentRejected}

// IsValidEnrollmentStatus reports whether s is one of the allowed status literals
func IsValidEnrollmentStatus(s string) bool {
	for _, v := range EnrollmentStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Enrollment records a student's relationship to a course with an approval status.
// Enrollments are always created as pending; any status may subsequently be set
// to any other status, including re-opening an approved or rejected enrollment.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course    Course    `gorm:"foreignKey:CourseID" json:"course"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Student   User      `gorm:"foreignKey:StudentID" json:"student"`
	Status    string    `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
