package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit action names
const (
	ActionCreateRole        = "CREATE_ROLE"
	ActionUpdateRole        = "UPDATE_ROLE"
	ActionDeleteRole        = "DELETE_ROLE"
	ActionAssignPermissions = "ASSIGN_PERMISSIONS"
	ActionRevokePermissions = "REVOKE_PERMISSIONS"

	ActionCreateUser = "CREATE_USER"
	ActionUpdateUser = "UPDATE_USER"
	ActionDeleteUser = "DELETE_USER"

	ActionCreateCourse   = "CREATE_COURSE"
	ActionUpdateCourse   = "UPDATE_COURSE"
	ActionUploadSyllabus = "UPLOAD_SYLLABUS"

	ActionEnrollStudent   = "ENROLL_STUDENT"
	ActionSetEnrollStatus = "SET_ENROLLMENT_STATUS"

	ActionCreateAssignment = "CREATE_ASSIGNMENT"
	ActionGradeAssignment  = "GRADE_ASSIGNMENT"
)

// AuditLog is an immutable record of who did what, to what resource, with what
// resulting state. Entries are appended once per permission-gated mutation and
// are never updated or deleted.
type AuditLog struct {
	ID       uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID   string    `gorm:"type:varchar(50);index" json:"user_id"`
	FullName string    `gorm:"type:varchar(255)" json:"full_name"`
	Action   string    `gorm:"type:varchar(50);not null;index" json:"action"`
	// NewData holds the serialized new state of the mutated resource
	NewData   string    `gorm:"type:text" json:"new_data"`
	Resource  *string   `gorm:"type:varchar(255)" json:"resource"`
	Role      string    `gorm:"type:varchar(100)" json:"role"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (a *AuditLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
