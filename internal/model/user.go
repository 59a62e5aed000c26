package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents a network subscriber registered through the portal.
type User struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey"`
	Email        string     `json:"email" gorm:"uniqueIndex;size:255;not null"`
	FullName     string     `json:"fullName" gorm:"size:255;not null"`
	PhoneNumber  string     `json:"phoneNumber" gorm:"uniqueIndex;size:20;not null"`
	CompanyName  string     `json:"companyName,omitempty" gorm:"size:255"`
	PasswordHash string     `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Active       bool       `json:"active" gorm:"default:true;index"`
	LastLogin    *time.Time `json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// UserWithStats is a reporting projection of a user joined with connection
// aggregates. Populated by raw scans, never written back.
type UserWithStats struct {
	ID               uuid.UUID  `json:"id"`
	Email            string     `json:"email"`
	FullName         string     `json:"fullName"`
	PhoneNumber      string     `json:"phoneNumber"`
	CompanyName      string     `json:"companyName,omitempty"`
	Active           bool       `json:"active"`
	CreatedAt        time.Time  `json:"createdAt"`
	LastLogin        *time.Time `json:"lastLogin,omitempty"`
	TotalConnections int64      `json:"totalConnections"`
	LastConnection   *time.Time `json:"lastConnection,omitempty"`
}
