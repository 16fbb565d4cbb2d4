package models

// Organization is collectively owned by its admin members.
type Organization struct {
	BaseModel

	Name string `gorm:"size:100;not null" json:"name"`

	Memberships []OrganizationMembership `gorm:"foreignKey:OrganizationID;constraint:OnDelete:CASCADE" json:"-"`
}
