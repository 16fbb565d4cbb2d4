package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/charlesng35/pitchbase/internal/database/testutil"
	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/internal/services"
)

func seedProfile(t *testing.T, db *gorm.DB, email string) *models.Profile {
	t.Helper()
	profile := &models.Profile{Email: email, LastSeenAt: time.Now().UTC()}
	require.NoError(t, db.Create(profile).Error)
	return profile
}

func seedOrganization(t *testing.T, db *gorm.DB, name string, members map[string]models.MembershipRole) *models.Organization {
	t.Helper()
	org := &models.Organization{Name: name}
	require.NoError(t, db.Create(org).Error)
	for profileID, role := range members {
		require.NoError(t, db.Create(&models.OrganizationMembership{
			ProfileID:      profileID,
			OrganizationID: org.ID,
			Role:           role,
			JoinedAt:       time.Now().UTC(),
		}).Error)
	}
	return org
}

func TestRunOnceDeletesAdminlessOrganizations(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	orgs, err := services.NewOrganizationService(db, nil, nil, nil)
	require.NoError(t, err)

	alice := seedProfile(t, db, "alice@example.com")
	bob := seedProfile(t, db, "bob@example.com")

	owned := seedOrganization(t, db, "Owned", map[string]models.MembershipRole{
		alice.ID: models.RoleAdmin,
		bob.ID:   models.RoleMember,
	})
	orphaned := seedOrganization(t, db, "Orphaned", map[string]models.MembershipRole{
		bob.ID: models.RoleMember,
	})

	r := NewReconciler(db, orgs, WithCron(cron.New(cron.WithLogger(cron.DiscardLogger))))
	require.NoError(t, r.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.Organization{}).Where("id = ?", owned.ID).Count(&count).Error)
	require.Equal(t, int64(1), count)
	require.NoError(t, db.Model(&models.Organization{}).Where("id = ?", orphaned.ID).Count(&count).Error)
	require.Zero(t, count)
	require.NoError(t, db.Model(&models.OrganizationMembership{}).Where("organization_id = ?", orphaned.ID).Count(&count).Error)
	require.Zero(t, count)
}

func TestPruneOrphanMemberships(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	alice := seedProfile(t, db, "alice@example.com")
	org := seedOrganization(t, db, "Acme", map[string]models.MembershipRole{alice.ID: models.RoleAdmin})

	require.NoError(t, db.Exec("PRAGMA foreign_keys = OFF").Error)
	require.NoError(t, db.Create(&models.OrganizationMembership{
		ProfileID:      "missing-profile",
		OrganizationID: org.ID,
		Role:           models.RoleMember,
		JoinedAt:       time.Now().UTC(),
	}).Error)
	require.NoError(t, db.Exec("PRAGMA foreign_keys = ON").Error)

	pruned, err := PruneOrphanMemberships(context.Background(), db)
	require.NoError(t, err)
	require.Equal(t, int64(1), pruned)

	var count int64
	require.NoError(t, db.Model(&models.OrganizationMembership{}).Count(&count).Error)
	require.Equal(t, int64(1), count)

	_, err = PruneOrphanMemberships(context.Background(), nil)
	require.Error(t, err)
}

type failingRemover struct{}

func (failingRemover) DeleteAdminless(context.Context) ([]string, error) {
	return nil, errors.New("database unavailable")
}

func TestRunOnceCollectsErrors(t *testing.T) {
	r := NewReconciler(nil, failingRemover{})
	err := r.RunOnce(context.Background())
	require.ErrorContains(t, err, "database unavailable")
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	r := NewReconciler(nil, failingRemover{}, WithSchedule("not a schedule"))
	require.Error(t, r.Start())
}

func TestStartAndStop(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	r := NewReconciler(db, nil, WithSchedule("@every 1h"))
	require.NoError(t, r.Start())
	<-r.Stop().Done()

	idle := NewReconciler(nil, nil)
	require.NoError(t, idle.Start())
}
