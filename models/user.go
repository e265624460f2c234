package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents a user account in the system
type User struct {
	gorm.Model

	// Authentication fields
	Email         string `gorm:"uniqueIndex;not null" json:"email"`
	EmailVerified bool   `gorm:"default:false" json:"email_verified"`

	// Passwordless sign-in state. Only the bcrypt hash of the current
	// sign-in token is stored; the raw token lives in the emailed link.
	SignInTokenHash      string     `gorm:"default:''" json:"-"`
	SignInTokenExpiresAt *time.Time `json:"-"`
	SignInTokenSentAt    *time.Time `json:"-"`

	// Profile information
	Name     *string `json:"name,omitempty"`
	Timezone string  `gorm:"default:'UTC'" json:"timezone"`
	Language string  `gorm:"default:'en'" json:"language"`

	// Account status
	IsActive     bool `gorm:"default:true" json:"is_active"`
	TokenVersion int  `gorm:"default:0" json:"-"`

	// Relations
	Teams []TeamMembership `gorm:"foreignKey:UserID" json:"teams,omitempty"`
}

// DisplayName returns the user's name when set, falling back to the
// email address that identifies them everywhere else.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return u.Email
}
