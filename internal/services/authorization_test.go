package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/charlesng35/pitchbase/internal/models"
)

func TestGuardAuthorize(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	admin := f.mustProfile(t, "admin@example.com", "Admin")
	member := f.mustProfile(t, "member@example.com", "Member")
	outsider := f.mustProfile(t, "outsider@example.com", "Outsider")

	org, err := f.organizations.Create(ctx, admin, "Guarded")
	require.NoError(t, err)
	f.addMember(t, member, org.ID, models.RoleMember)

	membership, err := f.guard.Authorize(ctx, f.db, admin, org.ID, models.RoleAdmin)
	require.NoError(t, err)
	require.True(t, membership.IsAdmin())

	membership, err = f.guard.Authorize(ctx, f.db, member, org.ID, "")
	require.NoError(t, err)
	require.Equal(t, models.RoleMember, membership.Role)

	_, err = f.guard.Authorize(ctx, f.db, member, org.ID, models.RoleAdmin)
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.guard.Authorize(ctx, f.db, outsider, org.ID, "")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.guard.Authorize(ctx, f.db, admin, uuid.NewString(), "")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.guard.Authorize(ctx, f.db, admin, "not-a-uuid", "")
	require.ErrorIs(t, err, ErrOrganizationNotFound)

	_, err = f.guard.Authorize(ctx, f.db, nil, org.ID, "")
	require.ErrorIs(t, err, ErrOrganizationNotFound)
}

func TestGuardDenialsAreIndistinguishable(t *testing.T) {
	f := newServiceFixture(t)
	ctx := context.Background()

	admin := f.mustProfile(t, "admin@example.com", "")
	outsider := f.mustProfile(t, "outsider@example.com", "")
	org, err := f.organizations.Create(ctx, admin, "Hidden")
	require.NoError(t, err)

	_, notMember := f.guard.Authorize(ctx, f.db, outsider, org.ID, "")
	_, missing := f.guard.Authorize(ctx, f.db, outsider, uuid.NewString(), "")
	require.Equal(t, missing.Error(), notMember.Error())
}
