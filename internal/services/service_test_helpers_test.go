package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/auth"
	"github.com/charlesng35/pitchbase/internal/database/testutil"
	"github.com/charlesng35/pitchbase/internal/models"
)

type recordingNotifier struct {
	mu                   sync.Mutex
	created              []string
	identified           []string
	deleted              []string
	organizationsCreated []string
}

func (r *recordingNotifier) ProfileCreated(_ context.Context, profile models.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, profile.ID)
}

func (r *recordingNotifier) ProfileIdentified(_ context.Context, profile models.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.identified = append(r.identified, profile.ID)
}

func (r *recordingNotifier) ProfileDeleted(_ context.Context, profileID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, profileID)
}

func (r *recordingNotifier) OrganizationCreated(_ context.Context, org models.Organization, _ string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.organizationsCreated = append(r.organizationsCreated, org.ID)
}

func (r *recordingNotifier) counts() (created, identified, deleted int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.created), len(r.identified), len(r.deleted)
}

type serviceFixture struct {
	db            *gorm.DB
	ledger        *MembershipLedger
	guard         *Guard
	profiles      *ProfileService
	organizations *OrganizationService
	notifier      *recordingNotifier
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	ledger := NewMembershipLedger()
	guard := NewGuard(ledger)
	notifier := &recordingNotifier{}

	profiles, err := NewProfileService(db, ledger, notifier)
	require.NoError(t, err)
	organizations, err := NewOrganizationService(db, ledger, guard, notifier)
	require.NoError(t, err)

	return &serviceFixture{
		db:            db,
		ledger:        ledger,
		guard:         guard,
		profiles:      profiles,
		organizations: organizations,
		notifier:      notifier,
	}
}

func identityFor(email, name string) auth.Identity {
	identity := auth.Identity{Email: email, UserID: email}
	if name != "" {
		identity.Name = &name
	}
	return identity
}

func (f *serviceFixture) mustProfile(t *testing.T, email, name string) *models.Profile {
	t.Helper()
	profile, err := f.profiles.ResolveOrCreate(context.Background(), identityFor(email, name), nil)
	require.NoError(t, err)
	return profile
}

func (f *serviceFixture) addMember(t *testing.T, profile *models.Profile, orgID string, role models.MembershipRole) {
	t.Helper()
	require.NoError(t, f.ledger.Insert(context.Background(), f.db, &models.OrganizationMembership{
		ProfileID:      profile.ID,
		OrganizationID: orgID,
		Role:           role,
	}))
}

func (f *serviceFixture) ban(t *testing.T, profile *models.Profile) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.db.Model(&models.Profile{}).Where("id = ?", profile.ID).Update("banned_at", &now).Error)
}

func (f *serviceFixture) count(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(model).Count(&n).Error)
	return n
}
