package models

import (
	"time"

	"gorm.io/gorm"
)

// InviteDuration is how long an invite token stays acceptable.
const InviteDuration = 7 * 24 * time.Hour

// InviteToken represents one pending invitation from an inviter to an
// invitee's email address. The team being joined is the inviter's own
// email; there is no separate team entity.
type InviteToken struct {
	gorm.Model

	Team              string `gorm:"not null" json:"team"`
	InvitedByUserName string `gorm:"not null" json:"invited_by_user_name"`
	InvitedByUserID   uint   `gorm:"not null;index" json:"invited_by_user_id"`

	// InvitedUserName is the invitee's email address. It is the only
	// field consulted for access control: whoever holds a session for
	// this email may list, accept or reject the token.
	InvitedUserName string `gorm:"not null;index" json:"invited_user_name"`

	ExpiresAt time.Time `gorm:"not null" json:"expires"`
}

// Expired reports whether the token's acceptance window has passed.
func (t *InviteToken) Expired() bool {
	return time.Now().After(t.ExpiresAt)
}
