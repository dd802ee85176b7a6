package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents the central user entity for logic and database structure
type User struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PhoneNumber string    `gorm:"type:varchar(15)" json:"phone_number"`
	Address     string    `gorm:"type:varchar(255)" json:"address"`
	// Password is empty for accounts whose role does not permit login
	Password string    `gorm:"type:varchar(255)" json:"-"`
	RoleID   uuid.UUID `gorm:"type:uuid;not null;index" json:"role_id"`
	Role     Role      `gorm:"foreignKey:RoleID" json:"role"`

	PasswordResetToken   string     `gorm:"type:varchar(512)" json:"-"`
	PasswordResetExpires *time.Time `json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
