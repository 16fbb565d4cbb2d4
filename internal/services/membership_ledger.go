package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/models"
)

// MembershipLedger is the data access layer for organization memberships. Every method runs
// on the caller's handle so it joins the caller's transaction.
type MembershipLedger struct{}

// NewMembershipLedger constructs a MembershipLedger.
func NewMembershipLedger() *MembershipLedger {
	return &MembershipLedger{}
}

// Insert records a membership, defaulting the role to member and JoinedAt to now.
func (l *MembershipLedger) Insert(ctx context.Context, tx *gorm.DB, membership *models.OrganizationMembership) error {
	if membership == nil {
		return errors.New("membership ledger: membership is required")
	}
	if membership.Role == "" {
		membership.Role = models.RoleMember
	}
	if !membership.Role.Valid() {
		return fmt.Errorf("membership ledger: invalid role %q", membership.Role)
	}
	if membership.JoinedAt.IsZero() {
		membership.JoinedAt = time.Now().UTC()
	}
	if err := tx.WithContext(ensureContext(ctx)).Create(membership).Error; err != nil {
		return fmt.Errorf("membership ledger: insert: %w", err)
	}
	return nil
}

// Find returns the membership of profileID in organizationID.
func (l *MembershipLedger) Find(ctx context.Context, tx *gorm.DB, profileID, organizationID string) (*models.OrganizationMembership, error) {
	var membership models.OrganizationMembership
	err := tx.WithContext(ensureContext(ctx)).
		Where("profile_id = ? AND organization_id = ?", profileID, organizationID).
		Take(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMembershipNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("membership ledger: find: %w", err)
	}
	return &membership, nil
}

// ListByOrganization returns every membership of an organization, oldest first.
func (l *MembershipLedger) ListByOrganization(ctx context.Context, tx *gorm.DB, organizationID string) ([]models.OrganizationMembership, error) {
	var memberships []models.OrganizationMembership
	if err := tx.WithContext(ensureContext(ctx)).
		Where("organization_id = ?", organizationID).
		Order("created_at ASC, id ASC").
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("membership ledger: list by organization: %w", err)
	}
	return memberships, nil
}

// ListByProfile returns every membership held by a profile, oldest first.
func (l *MembershipLedger) ListByProfile(ctx context.Context, tx *gorm.DB, profileID string) ([]models.OrganizationMembership, error) {
	var memberships []models.OrganizationMembership
	if err := tx.WithContext(ensureContext(ctx)).
		Where("profile_id = ?", profileID).
		Order("created_at ASC, id ASC").
		Find(&memberships).Error; err != nil {
		return nil, fmt.Errorf("membership ledger: list by profile: %w", err)
	}
	return memberships, nil
}

// DeleteByID removes a single membership.
func (l *MembershipLedger) DeleteByID(ctx context.Context, tx *gorm.DB, id string) error {
	result := tx.WithContext(ensureContext(ctx)).Delete(&models.OrganizationMembership{}, "id = ?", id)
	if result.Error != nil {
		return fmt.Errorf("membership ledger: delete: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// DeleteByOrganization removes all memberships of an organization.
func (l *MembershipLedger) DeleteByOrganization(ctx context.Context, tx *gorm.DB, organizationID string) (int64, error) {
	result := tx.WithContext(ensureContext(ctx)).Delete(&models.OrganizationMembership{}, "organization_id = ?", organizationID)
	if result.Error != nil {
		return 0, fmt.Errorf("membership ledger: delete by organization: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// DeleteByProfile removes all memberships held by a profile.
func (l *MembershipLedger) DeleteByProfile(ctx context.Context, tx *gorm.DB, profileID string) (int64, error) {
	result := tx.WithContext(ensureContext(ctx)).Delete(&models.OrganizationMembership{}, "profile_id = ?", profileID)
	if result.Error != nil {
		return 0, fmt.Errorf("membership ledger: delete by profile: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// CountAdmins counts admin memberships of an organization, ignoring excludingProfileID when set.
func (l *MembershipLedger) CountAdmins(ctx context.Context, tx *gorm.DB, organizationID, excludingProfileID string) (int64, error) {
	query := tx.WithContext(ensureContext(ctx)).
		Model(&models.OrganizationMembership{}).
		Where("organization_id = ? AND role = ?", organizationID, models.RoleAdmin)
	if excludingProfileID != "" {
		query = query.Where("profile_id <> ?", excludingProfileID)
	}

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, fmt.Errorf("membership ledger: count admins: %w", err)
	}
	return count, nil
}
