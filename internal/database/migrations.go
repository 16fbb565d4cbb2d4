package database

import (
	"errors"

	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/models"
)

var errNilDB = errors.New("nil database handle")

// AutoMigrate creates or updates the database schema for all models. Profiles and
// organizations are migrated before memberships so the cascading foreign keys resolve.
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return errNilDB
	}
	return db.AutoMigrate(
		&models.Profile{},
		&models.Organization{},
		&models.OrganizationMembership{},
	)
}
