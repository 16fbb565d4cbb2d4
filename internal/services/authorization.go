package services

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/pkg/logger"
	"github.com/charlesng35/pitchbase/pkg/metrics"
)

// Guard decides whether a profile may see or administer an organization. Denials are
// indistinguishable from a missing organization.
type Guard struct {
	ledger *MembershipLedger
}

// NewGuard constructs a Guard over the membership ledger.
func NewGuard(ledger *MembershipLedger) *Guard {
	if ledger == nil {
		ledger = NewMembershipLedger()
	}
	return &Guard{ledger: ledger}
}

// Authorize returns the caller's membership in organizationID. An empty requiredRole accepts
// any role; RoleAdmin demands an admin membership.
func (g *Guard) Authorize(ctx context.Context, tx *gorm.DB, profile *models.Profile, organizationID string, requiredRole models.MembershipRole) (*models.OrganizationMembership, error) {
	ctx = ensureContext(ctx)
	if profile == nil || profile.ID == "" {
		return nil, g.deny(profile, organizationID, "no profile")
	}
	if _, err := uuid.Parse(organizationID); err != nil {
		return nil, g.deny(profile, organizationID, "malformed id")
	}

	membership, err := g.ledger.Find(ctx, tx, profile.ID, organizationID)
	if errors.Is(err, ErrMembershipNotFound) {
		return nil, g.deny(profile, organizationID, "not a member")
	}
	if err != nil {
		return nil, err
	}

	if requiredRole == models.RoleAdmin && !membership.IsAdmin() {
		return nil, g.deny(profile, organizationID, "admin required")
	}

	metrics.AuthorizationDecisions.WithLabelValues("allow").Inc()
	return membership, nil
}

func (g *Guard) deny(profile *models.Profile, organizationID, reason string) error {
	metrics.AuthorizationDecisions.WithLabelValues("deny").Inc()

	profileID := ""
	if profile != nil {
		profileID = profile.ID
	}
	logger.WithModule("authorization").Debug("organization access denied",
		zap.String("profile_id", profileID),
		zap.String("organization_id", organizationID),
		zap.String("reason", reason),
	)
	return ErrOrganizationNotFound
}
