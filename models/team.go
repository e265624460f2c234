package models

import "gorm.io/gorm"

// TeamMembership records one user's membership in one team. A team
// identifier is the inviting user's email address, so memberships are
// plain strings rather than foreign keys.
//
// There is deliberately no uniqueness constraint on (user_id, team):
// accepting two invites to the same team yields two rows, matching the
// observed behavior of the original system.
type TeamMembership struct {
	gorm.Model
	UserID uint   `gorm:"not null;index" json:"user_id"`
	Team   string `gorm:"not null" json:"team"`

	// Relations
	User User `json:"-"`
}
