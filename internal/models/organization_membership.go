package models

import "time"

// MembershipRole is the role a profile holds inside an organization.
type MembershipRole string

const (
	RoleAdmin  MembershipRole = "admin"
	RoleMember MembershipRole = "member"
	RoleGuest  MembershipRole = "guest"
)

// Valid reports whether r is a known role.
func (r MembershipRole) Valid() bool {
	switch r {
	case RoleAdmin, RoleMember, RoleGuest:
		return true
	}
	return false
}

// OrganizationMembership links a profile to an organization with a role.
type OrganizationMembership struct {
	BaseModel

	ProfileID      string         `gorm:"size:36;not null;uniqueIndex:uix_profile_organization,priority:1" json:"profile_id"`
	OrganizationID string         `gorm:"size:36;not null;uniqueIndex:uix_profile_organization,priority:2;index" json:"organization_id"`
	Role           MembershipRole `gorm:"size:16;not null;default:member" json:"role"`
	JoinedAt       time.Time      `json:"joined_at"`

	Profile      *Profile      `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"-"`
	Organization *Organization `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsAdmin reports whether the membership grants administrative rights.
func (m *OrganizationMembership) IsAdmin() bool {
	return m != nil && m.Role == RoleAdmin
}
