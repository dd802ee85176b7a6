package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role represents a named bundle of permissions assigned to users
type Role struct {
	ID          uuid.UUID    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string       `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string       `gorm:"type:varchar(255)" json:"description"`
	IsLogin     bool         `gorm:"default:false" json:"is_login"` // Whether accounts holding this role may authenticate
	Permissions []Permission `gorm:"foreignKey:RoleID" json:"permissions"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// Permission is a capability owned by at most one role at a time.
// Reassigning a permission to another role moves it: the previous owner
// loses it implicitly.
type Permission struct {
	ID     uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Name   string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"` // e.g. "can_create_role"
	RoleID *uuid.UUID `gorm:"type:uuid;index" json:"role_id"`                     // NULL = unassigned
}

func (r *Role) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

func (p *Permission) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
