package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/auth"
	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/pkg/logger"
	"github.com/charlesng35/pitchbase/pkg/metrics"
)

// ProfileService resolves verified identities into durable profiles.
type ProfileService struct {
	db       *gorm.DB
	ledger   *MembershipLedger
	notifier Notifier
	now      func() time.Time
}

// ProfileServiceOption customises a ProfileService.
type ProfileServiceOption func(*ProfileService)

// WithProfileClock overrides the time source used for timestamps.
func WithProfileClock(now func() time.Time) ProfileServiceOption {
	return func(s *ProfileService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewProfileService constructs a ProfileService. A nil notifier discards events.
func NewProfileService(db *gorm.DB, ledger *MembershipLedger, notifier Notifier, opts ...ProfileServiceOption) (*ProfileService, error) {
	if db == nil {
		return nil, errors.New("profile service: db is required")
	}
	if ledger == nil {
		ledger = NewMembershipLedger()
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	svc := &ProfileService{
		db:       db,
		ledger:   ledger,
		notifier: notifier,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc, nil
}

// ResolveOrCreate returns the profile for identity, creating it together with a default
// organization on first sight. Calling it again for the same identity changes nothing.
func (s *ProfileService) ResolveOrCreate(ctx context.Context, identity auth.Identity, attribution map[string]string) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	email := strings.TrimSpace(identity.Email)
	if email == "" {
		return nil, errors.New("profile service: identity email is required")
	}
	identity.Email = email

	profile, err := s.findByEmail(ctx, s.db, email)
	if err == nil {
		return s.existing(ctx, profile)
	}
	if !errors.Is(err, ErrProfileNotFound) {
		return nil, err
	}

	profile, err = s.create(ctx, identity, attribution)
	if err == nil {
		metrics.ProfilesCreated.Inc()
		s.notifier.ProfileCreated(ctx, *profile)
		return profile, nil
	}
	if !isUniqueConstraintError(err) {
		return nil, fmt.Errorf("profile service: create profile: %w", err)
	}

	// A concurrent request created the profile between lookup and insert.
	profile, err = s.findByEmail(ctx, s.db, email)
	switch {
	case err == nil:
		return s.existing(ctx, profile)
	case errors.Is(err, ErrProfileNotFound):
		return nil, ErrProfileConflict
	default:
		return nil, err
	}
}

func (s *ProfileService) existing(ctx context.Context, profile *models.Profile) (*models.Profile, error) {
	if profile.IsBanned() {
		return nil, ErrProfileBanned
	}
	s.notifier.ProfileIdentified(ctx, *profile)
	return profile, nil
}

func (s *ProfileService) create(ctx context.Context, identity auth.Identity, attribution map[string]string) (*models.Profile, error) {
	now := s.now()
	profile := &models.Profile{
		Email:             identity.Email,
		Name:              identity.Name,
		AvatarURL:         identity.AvatarURL,
		LastSeenAt:        now,
		SignupAttribution: attributionMap(attribution),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(profile).Error; err != nil {
			return err
		}

		org := &models.Organization{Name: defaultOrganizationName(identity.Name)}
		if err := tx.Create(org).Error; err != nil {
			return err
		}

		return s.ledger.Insert(ctx, tx, &models.OrganizationMembership{
			ProfileID:      profile.ID,
			OrganizationID: org.ID,
			Role:           models.RoleAdmin,
			JoinedAt:       now,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithModule("profiles").Info("profile created",
		zap.String("profile_id", profile.ID),
	)
	return profile, nil
}

// Current returns the caller's profile without creating one.
func (s *ProfileService) Current(ctx context.Context, identity auth.Identity) (*models.Profile, error) {
	ctx = ensureContext(ctx)

	profile, err := s.findByEmail(ctx, s.db, strings.TrimSpace(identity.Email))
	if err != nil {
		return nil, err
	}
	if profile.IsBanned() {
		return nil, ErrProfileBanned
	}
	return profile, nil
}

// Delete removes the profile, its memberships and every organization in which it was the
// only admin. Organizations that keep another admin survive.
func (s *ProfileService) Delete(ctx context.Context, profile *models.Profile) error {
	ctx = ensureContext(ctx)
	if profile == nil || profile.ID == "" {
		return ErrProfileNotFound
	}
	if profile.IsBanned() {
		return ErrProfileBanned
	}

	var removedOrganizations int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		memberships, err := s.ledger.ListByProfile(ctx, tx, profile.ID)
		if err != nil {
			return err
		}

		for _, membership := range memberships {
			if !membership.IsAdmin() {
				continue
			}
			others, err := s.ledger.CountAdmins(ctx, tx, membership.OrganizationID, profile.ID)
			if err != nil {
				return err
			}
			if others > 0 {
				continue
			}
			if err := deleteOrganization(ctx, tx, s.ledger, membership.OrganizationID); err != nil {
				return err
			}
			removedOrganizations++
		}

		if _, err := s.ledger.DeleteByProfile(ctx, tx, profile.ID); err != nil {
			return err
		}

		result := tx.Delete(&models.Profile{}, "id = ?", profile.ID)
		if result.Error != nil {
			return fmt.Errorf("profile service: delete profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return ErrProfileNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithModule("profiles").Info("profile deleted",
		zap.String("profile_id", profile.ID),
		zap.Int("organizations_removed", removedOrganizations),
	)
	s.notifier.ProfileDeleted(ctx, profile.ID)
	return nil
}

func (s *ProfileService) findByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.Profile, error) {
	if email == "" {
		return nil, ErrProfileNotFound
	}
	var profile models.Profile
	err := tx.WithContext(ctx).Where("email = ?", email).Take(&profile).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("profile service: find profile: %w", err)
	}
	return &profile, nil
}

// deleteOrganization removes an organization's memberships and then the organization itself.
func deleteOrganization(ctx context.Context, tx *gorm.DB, ledger *MembershipLedger, organizationID string) error {
	if _, err := ledger.DeleteByOrganization(ctx, tx, organizationID); err != nil {
		return err
	}
	result := tx.WithContext(ctx).Delete(&models.Organization{}, "id = ?", organizationID)
	if result.Error != nil {
		return fmt.Errorf("delete organization: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrOrganizationNotFound
	}
	return nil
}
