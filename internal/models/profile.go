package models

import (
	"time"

	"gorm.io/datatypes"
)

// Profile is the durable record of an authenticated person, keyed by email.
type Profile struct {
	BaseModel

	Email     string  `gorm:"size:320;uniqueIndex;not null" json:"email"`
	Name      *string `gorm:"size:255" json:"name"`
	AvatarURL *string `gorm:"size:2048" json:"avatar_url"`

	LastSeenAt time.Time  `json:"last_seen_at"`
	BannedAt   *time.Time `gorm:"index" json:"-"`

	// SignupAttribution is written once at creation and never exposed through the API.
	SignupAttribution datatypes.JSONMap `gorm:"column:signup_attribution_data" json:"-"`

	Memberships []OrganizationMembership `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsBanned reports whether the profile has been banned.
func (p *Profile) IsBanned() bool {
	return p != nil && p.BannedAt != nil
}

// DisplayName returns the profile name or an empty string.
func (p *Profile) DisplayName() string {
	if p == nil || p.Name == nil {
		return ""
	}
	return *p.Name
}
