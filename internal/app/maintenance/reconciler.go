package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/pkg/logger"
	"github.com/charlesng35/pitchbase/pkg/metrics"
)

const defaultReconcileSpec = "@hourly"

// AdminlessRemover deletes organizations left without an admin membership.
type AdminlessRemover interface {
	DeleteAdminless(ctx context.Context) ([]string, error)
}

// Reconciler periodically restores the ownership invariants: it prunes memberships that
// point at missing rows and deletes organizations that no admin belongs to.
type Reconciler struct {
	db       *gorm.DB
	remover  AdminlessRemover
	cron     *cron.Cron
	schedule string
	timeout  time.Duration
	log      *zap.Logger
}

// Option customises the Reconciler.
type Option func(*Reconciler)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(r *Reconciler) {
		if c != nil {
			r.cron = c
		}
	}
}

// WithSchedule overrides the cron specification of the reconcile job.
func WithSchedule(spec string) Option {
	return func(r *Reconciler) {
		if spec != "" {
			r.schedule = spec
		}
	}
}

// WithTimeout bounds a single scheduled run.
func WithTimeout(timeout time.Duration) Option {
	return func(r *Reconciler) {
		if timeout > 0 {
			r.timeout = timeout
		}
	}
}

// NewReconciler constructs a Reconciler. A nil db skips membership pruning and a nil
// remover skips organization cleanup.
func NewReconciler(db *gorm.DB, remover AdminlessRemover, opts ...Option) *Reconciler {
	r := &Reconciler{
		db:       db,
		remover:  remover,
		schedule: defaultReconcileSpec,
		timeout:  5 * time.Minute,
		log:      logger.WithModule("maintenance"),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.cron == nil {
		r.cron = cron.New(cron.WithLogger(cron.DiscardLogger))
	}
	return r
}

// Start registers the reconcile job and launches the scheduler.
func (r *Reconciler) Start() error {
	if r.db == nil && r.remover == nil {
		return nil
	}

	if _, err := r.cron.AddFunc(r.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.RunOnce(ctx); err != nil {
			r.log.Warn("reconcile failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule %q: %w", r.schedule, err)
	}

	r.cron.Start()
	return nil
}

// Stop halts the scheduler. The returned context is done once running jobs complete.
func (r *Reconciler) Stop() context.Context {
	if r.cron == nil {
		return context.Background()
	}
	return r.cron.Stop()
}

// RunOnce executes every reconcile step, collecting failures instead of stopping at the first.
func (r *Reconciler) RunOnce(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	var errs error

	if r.db != nil {
		pruned, err := PruneOrphanMemberships(ctx, r.db)
		if err != nil {
			errs = multierr.Append(errs, err)
		} else if pruned > 0 {
			r.log.Info("orphan memberships pruned", zap.Int64("count", pruned))
		}
	}

	if r.remover != nil {
		removed, err := r.remover.DeleteAdminless(ctx)
		if err != nil {
			errs = multierr.Append(errs, err)
		}
		if len(removed) > 0 {
			metrics.OrganizationsReconciled.Add(float64(len(removed)))
			r.log.Info("admin-less organizations deleted",
				zap.Int("count", len(removed)),
				zap.Strings("organization_ids", removed),
			)
		}
	}

	return errs
}

// PruneOrphanMemberships removes memberships whose profile or organization no longer exists.
// Foreign keys normally prevent these rows; they appear after out-of-band edits or on
// databases where constraints are not enforced.
func PruneOrphanMemberships(ctx context.Context, db *gorm.DB) (int64, error) {
	if db == nil {
		return 0, errors.New("prune memberships: db is required")
	}

	profiles := db.Model(&models.Profile{}).Select("id")
	organizations := db.Model(&models.Organization{}).Select("id")

	result := db.WithContext(ctx).
		Where("profile_id NOT IN (?) OR organization_id NOT IN (?)", profiles, organizations).
		Delete(&models.OrganizationMembership{})
	if result.Error != nil {
		return 0, fmt.Errorf("prune memberships: %w", result.Error)
	}
	return result.RowsAffected, nil
}
