package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Assignment is a student's submission for a course, optionally graded
type Assignment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course    Course    `gorm:"foreignKey:CourseID" json:"course"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	// File is the path or URL of the uploaded submission
	File  string           `gorm:"type:varchar(512)" json:"file"`
	Grade *decimal.Decimal `gorm:"type:decimal(5,2)" json:"grade"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (a *Assignment) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
