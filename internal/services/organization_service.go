package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/pkg/logger"
)

// UpdateOrganizationInput represents mutable organization fields. Nil fields are left untouched.
type UpdateOrganizationInput struct {
	Name *string
}

// OrganizationList is one page of the caller's organizations.
type OrganizationList struct {
	Items []models.Organization
	Total int64
	Page  PageRequest
}

// OrganizationService manages lifecycle operations for organizations.
type OrganizationService struct {
	db       *gorm.DB
	ledger   *MembershipLedger
	guard    *Guard
	notifier Notifier
}

// NewOrganizationService constructs an OrganizationService instance.
func NewOrganizationService(db *gorm.DB, ledger *MembershipLedger, guard *Guard, notifier Notifier) (*OrganizationService, error) {
	if db == nil {
		return nil, errors.New("organization service: db is required")
	}
	if ledger == nil {
		ledger = NewMembershipLedger()
	}
	if guard == nil {
		guard = NewGuard(ledger)
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &OrganizationService{
		db:       db,
		ledger:   ledger,
		guard:    guard,
		notifier: notifier,
	}, nil
}

// ListFor returns the organizations profile belongs to in any role, oldest first.
func (s *OrganizationService) ListFor(ctx context.Context, profile *models.Profile, page PageRequest) (*OrganizationList, error) {
	ctx = ensureContext(ctx)
	if err := page.Validate(); err != nil {
		return nil, err
	}
	if profile == nil || profile.ID == "" {
		return nil, ErrProfileNotFound
	}

	list := &OrganizationList{Items: []models.Organization{}, Page: page}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		scope := func() *gorm.DB {
			return tx.Model(&models.Organization{}).
				Joins("JOIN organization_memberships ON organization_memberships.organization_id = organizations.id").
				Where("organization_memberships.profile_id = ?", profile.ID)
		}

		if err := scope().Count(&list.Total).Error; err != nil {
			return fmt.Errorf("organization service: count organizations: %w", err)
		}
		if page.PastEnd(list.Total) {
			return nil
		}

		if err := scope().
			Select("organizations.*").
			Order("organizations.created_at ASC, organizations.id ASC").
			Offset(page.Offset()).
			Limit(page.Size).
			Find(&list.Items).Error; err != nil {
			return fmt.Errorf("organization service: list organizations: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// Get loads an organization the profile is a member of.
func (s *OrganizationService) Get(ctx context.Context, profile *models.Profile, id string) (*models.Organization, error) {
	ctx = ensureContext(ctx)

	var org *models.Organization
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.guard.Authorize(ctx, tx, profile, id, ""); err != nil {
			return err
		}
		loaded, err := loadOrganization(tx, id)
		if err != nil {
			return err
		}
		org = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// Create registers a new organization with profile as its first admin.
func (s *OrganizationService) Create(ctx context.Context, profile *models.Profile, name string) (*models.Organization, error) {
	ctx = ensureContext(ctx)

	name, err := normaliseOrganizationName(name)
	if err != nil {
		return nil, err
	}
	if profile == nil || profile.ID == "" {
		return nil, ErrProfileNotFound
	}

	org := &models.Organization{Name: name}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(org).Error; err != nil {
			return fmt.Errorf("organization service: create organization: %w", err)
		}
		return s.ledger.Insert(ctx, tx, &models.OrganizationMembership{
			ProfileID:      profile.ID,
			OrganizationID: org.ID,
			Role:           models.RoleAdmin,
		})
	})
	if err != nil {
		return nil, err
	}

	logger.WithModule("organizations").Info("organization created",
		zap.String("organization_id", org.ID),
		zap.String("profile_id", profile.ID),
	)
	s.notifier.OrganizationCreated(ctx, *org, profile.ID)
	return org, nil
}

// Update modifies an organization the profile administers.
func (s *OrganizationService) Update(ctx context.Context, profile *models.Profile, id string, input UpdateOrganizationInput) (*models.Organization, error) {
	ctx = ensureContext(ctx)

	// The body is validated before membership is checked, so a malformed name is a 422
	// for members and non-members alike.
	updates := map[string]any{}
	if input.Name != nil {
		name, err := normaliseOrganizationName(*input.Name)
		if err != nil {
			return nil, err
		}
		updates["name"] = name
	}

	var org *models.Organization
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.guard.Authorize(ctx, tx, profile, id, models.RoleAdmin); err != nil {
			return err
		}
		loaded, err := loadOrganization(tx, id)
		if err != nil {
			return err
		}
		if len(updates) > 0 {
			if err := tx.Model(loaded).Updates(updates).Error; err != nil {
				return fmt.Errorf("organization service: update organization: %w", err)
			}
			if loaded, err = loadOrganization(tx, id); err != nil {
				return err
			}
		}
		org = loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

// Delete removes an organization the profile administers, along with all its memberships.
func (s *OrganizationService) Delete(ctx context.Context, profile *models.Profile, id string) error {
	ctx = ensureContext(ctx)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.guard.Authorize(ctx, tx, profile, id, models.RoleAdmin); err != nil {
			return err
		}
		if err := deleteOrganization(ctx, tx, s.ledger, id); err != nil {
			return fmt.Errorf("organization service: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithModule("organizations").Info("organization deleted",
		zap.String("organization_id", id),
		zap.String("profile_id", profile.ID),
	)
	return nil
}

// DeleteAdminless removes organizations that have no admin membership left. It restores the
// ownership invariant after out-of-band edits and returns the removed ids.
func (s *OrganizationService) DeleteAdminless(ctx context.Context) ([]string, error) {
	ctx = ensureContext(ctx)

	var removed []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ids []string
		admins := tx.Model(&models.OrganizationMembership{}).
			Select("organization_id").
			Where("role = ?", models.RoleAdmin)
		if err := tx.Model(&models.Organization{}).
			Where("id NOT IN (?)", admins).
			Order("created_at ASC").
			Pluck("id", &ids).Error; err != nil {
			return fmt.Errorf("organization service: find adminless organizations: %w", err)
		}

		for _, id := range ids {
			if err := deleteOrganization(ctx, tx, s.ledger, id); err != nil {
				return fmt.Errorf("organization service: %w", err)
			}
		}
		removed = ids
		return nil
	})
	if err != nil {
		return nil, err
	}
	return removed, nil
}

func loadOrganization(tx *gorm.DB, id string) (*models.Organization, error) {
	var org models.Organization
	err := tx.Take(&org, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrOrganizationNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("organization service: get organization: %w", err)
	}
	return &org, nil
}
