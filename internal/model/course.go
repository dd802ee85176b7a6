package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Course represents a university course taught by a lecturer
type Course struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"type:varchar(255);not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	LecturerID  uuid.UUID `gorm:"type:uuid;not null;index" json:"lecturer_id"`
	Lecturer    User      `gorm:"foreignKey:LecturerID" json:"lecturer"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Syllabus stores the path of an uploaded syllabus document (PDF or DOCX)
type Syllabus struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	FilePath string    `gorm:"type:varchar(512);not null" json:"file_path"`
	CourseID uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course   Course    `gorm:"foreignKey:CourseID" json:"-"`
}

func (c *Course) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (s *Syllabus) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
