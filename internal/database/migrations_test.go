package database

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/pitchbase/internal/models"
)

func TestAutoMigrateCreatesSchema(t *testing.T) {
	db := openTestDB(t)

	require.NoError(t, AutoMigrate(db))

	migrator := db.Migrator()
	require.True(t, migrator.HasTable(&models.Profile{}))
	require.True(t, migrator.HasTable(&models.Organization{}))
	require.True(t, migrator.HasTable(&models.OrganizationMembership{}))
	require.True(t, migrator.HasColumn(&models.Profile{}, "signup_attribution_data"))
	require.True(t, migrator.HasIndex(&models.OrganizationMembership{}, "uix_profile_organization"))

	// Re-running is a no-op.
	require.NoError(t, AutoMigrate(db))
}

func TestAutoMigrateNilDB(t *testing.T) {
	require.ErrorIs(t, AutoMigrate(nil), errNilDB)
}

func TestMembershipUniquePerProfileAndOrganization(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	profile := models.Profile{Email: "a@example.com", LastSeenAt: time.Now()}
	org := models.Organization{Name: "Acme"}
	require.NoError(t, db.Create(&profile).Error)
	require.NoError(t, db.Create(&org).Error)

	first := models.OrganizationMembership{ProfileID: profile.ID, OrganizationID: org.ID, Role: models.RoleAdmin, JoinedAt: time.Now()}
	require.NoError(t, db.Create(&first).Error)

	dup := models.OrganizationMembership{ProfileID: profile.ID, OrganizationID: org.ID, Role: models.RoleMember, JoinedAt: time.Now()}
	require.Error(t, db.Create(&dup).Error)
}

func TestMembershipCascadesOnOrganizationDelete(t *testing.T) {
	db := openTestDB(t)
	require.NoError(t, AutoMigrate(db))

	profile := models.Profile{Email: "b@example.com", LastSeenAt: time.Now()}
	org := models.Organization{Name: "Cascade"}
	require.NoError(t, db.Create(&profile).Error)
	require.NoError(t, db.Create(&org).Error)
	require.NoError(t, db.Create(&models.OrganizationMembership{
		ProfileID: profile.ID, OrganizationID: org.ID, Role: models.RoleAdmin, JoinedAt: time.Now(),
	}).Error)

	require.NoError(t, db.Delete(&models.Organization{}, "id = ?", org.ID).Error)

	var count int64
	require.NoError(t, db.Model(&models.OrganizationMembership{}).Count(&count).Error)
	require.Zero(t, count)
}
