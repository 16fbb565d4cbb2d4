package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/charlesng35/pitchbase/internal/models"
)

func TestMembershipLedgerInsertDefaults(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	owner := f.mustProfile(t, "owner@example.com", "Owner")
	guest := f.mustProfile(t, "guest@example.com", "")

	memberships, err := f.ledger.ListByProfile(ctx, f.db, owner.ID)
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	orgID := memberships[0].OrganizationID

	membership := &models.OrganizationMembership{ProfileID: guest.ID, OrganizationID: orgID}
	require.NoError(t, f.ledger.Insert(ctx, f.db, membership))
	require.Equal(t, models.RoleMember, membership.Role)
	require.False(t, membership.JoinedAt.IsZero())

	found, err := f.ledger.Find(ctx, f.db, guest.ID, orgID)
	require.NoError(t, err)
	require.Equal(t, membership.ID, found.ID)

	byOrg, err := f.ledger.ListByOrganization(ctx, f.db, orgID)
	require.NoError(t, err)
	require.Len(t, byOrg, 2)
}

func TestMembershipLedgerRejectsInvalidRoleAndDuplicates(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	owner := f.mustProfile(t, "owner@example.com", "")
	memberships, err := f.ledger.ListByProfile(ctx, f.db, owner.ID)
	require.NoError(t, err)

	err = f.ledger.Insert(ctx, f.db, &models.OrganizationMembership{
		ProfileID: owner.ID, OrganizationID: memberships[0].OrganizationID, Role: "owner",
	})
	require.Error(t, err)

	err = f.ledger.Insert(ctx, f.db, &models.OrganizationMembership{
		ProfileID: owner.ID, OrganizationID: memberships[0].OrganizationID, Role: models.RoleGuest,
	})
	require.Error(t, err)
	require.True(t, isUniqueConstraintError(err))
}

func TestMembershipLedgerCountAdminsAndDeletes(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	alice := f.mustProfile(t, "alice@example.com", "Alice")
	bob := f.mustProfile(t, "bob@example.com", "Bob")

	memberships, err := f.ledger.ListByProfile(ctx, f.db, alice.ID)
	require.NoError(t, err)
	orgID := memberships[0].OrganizationID
	f.addMember(t, bob, orgID, models.RoleAdmin)

	total, err := f.ledger.CountAdmins(ctx, f.db, orgID, "")
	require.NoError(t, err)
	require.EqualValues(t, 2, total)

	others, err := f.ledger.CountAdmins(ctx, f.db, orgID, alice.ID)
	require.NoError(t, err)
	require.EqualValues(t, 1, others)

	removed, err := f.ledger.DeleteByProfile(ctx, f.db, bob.ID)
	require.NoError(t, err)
	require.EqualValues(t, 2, removed)

	_, err = f.ledger.Find(ctx, f.db, bob.ID, orgID)
	require.ErrorIs(t, err, ErrMembershipNotFound)

	require.NoError(t, f.ledger.DeleteByID(ctx, f.db, memberships[0].ID))
	require.ErrorIs(t, f.ledger.DeleteByID(ctx, f.db, memberships[0].ID), ErrMembershipNotFound)

	removed, err = f.ledger.DeleteByOrganization(ctx, f.db, orgID)
	require.NoError(t, err)
	require.Zero(t, removed)
}
