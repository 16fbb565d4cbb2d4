package services

import (
	"context"

	"github.com/charlesng35/pitchbase/internal/models"
)

// Notifier receives post-commit events. Implementations must not block the caller and
// must never surface delivery failures.
type Notifier interface {
	ProfileCreated(ctx context.Context, profile models.Profile)
	ProfileIdentified(ctx context.Context, profile models.Profile)
	ProfileDeleted(ctx context.Context, profileID string)
	OrganizationCreated(ctx context.Context, organization models.Organization, profileID string)
}

type noopNotifier struct{}

func (noopNotifier) ProfileCreated(context.Context, models.Profile) {}
func (noopNotifier) ProfileIdentified(context.Context, models.Profile) {}
func (noopNotifier) ProfileDeleted(context.Context, string) {}
func (noopNotifier) OrganizationCreated(context.Context, models.Organization, string) {}
