package notifications

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/charlesng35/pitchbase/internal/models"
	"github.com/charlesng35/pitchbase/pkg/logger"
	"github.com/charlesng35/pitchbase/pkg/metrics"
)

// DefaultDispatchTimeout bounds a single delivery attempt.
const DefaultDispatchTimeout = 10 * time.Second

// Dispatcher fans post-commit events out to the welcome mailer and analytics on background
// goroutines. Deliveries are attempted once; failures are logged and counted, never returned.
type Dispatcher struct {
	welcomer  Welcomer
	analytics Analytics
	timeout   time.Duration
	log       *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// DispatcherOption customises a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithWelcomer enables welcome emails.
func WithWelcomer(w Welcomer) DispatcherOption {
	return func(d *Dispatcher) {
		d.welcomer = w
	}
}

// WithAnalytics sets the analytics backend.
func WithAnalytics(a Analytics) DispatcherOption {
	return func(d *Dispatcher) {
		d.analytics = a
	}
}

// WithTimeout overrides DefaultDispatchTimeout.
func WithTimeout(timeout time.Duration) DispatcherOption {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.timeout = timeout
		}
	}
}

// NewDispatcher constructs a Dispatcher. Without options every event is dropped.
func NewDispatcher(opts ...DispatcherOption) *Dispatcher {
	d := &Dispatcher{
		timeout: DefaultDispatchTimeout,
		log:     logger.WithModule("notifications"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// ProfileCreated sends the welcome email and identifies the new profile.
func (d *Dispatcher) ProfileCreated(_ context.Context, profile models.Profile) {
	if d.welcomer != nil {
		d.dispatch("welcome", profile.ID, func(ctx context.Context) error {
			return d.welcomer.SendWelcome(ctx, profile)
		})
	}
	d.identify(profile)
}

// ProfileIdentified identifies a returning profile.
func (d *Dispatcher) ProfileIdentified(_ context.Context, profile models.Profile) {
	d.identify(profile)
}

// ProfileDeleted tracks the deletion.
func (d *Dispatcher) ProfileDeleted(_ context.Context, profileID string) {
	d.track(profileID, EventProfileDeleted, map[string]any{"profile_id": profileID})
}

// OrganizationCreated tracks a user-initiated organization creation.
func (d *Dispatcher) OrganizationCreated(_ context.Context, organization models.Organization, profileID string) {
	d.track(profileID, EventOrganizationCreated, map[string]any{
		"profile_id":      profileID,
		"organization_id": organization.ID,
	})
}

func (d *Dispatcher) identify(profile models.Profile) {
	if d.analytics == nil {
		return
	}
	d.dispatch("identify", profile.ID, func(ctx context.Context) error {
		return d.analytics.Identify(ctx, profile)
	})
}

func (d *Dispatcher) track(profileID, event string, properties map[string]any) {
	if d.analytics == nil {
		return
	}
	d.dispatch("track", profileID, func(ctx context.Context) error {
		return d.analytics.Track(ctx, event, properties)
	})
}

// dispatch runs fn on its own goroutine with a context detached from the request.
func (d *Dispatcher) dispatch(kind, profileID string, fn func(ctx context.Context) error) {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		metrics.NotificationOutcomes.WithLabelValues(kind, "dropped").Inc()
		return
	}
	d.wg.Add(1)
	d.mu.Unlock()

	go func() {
		defer d.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		err := d.safely(ctx, fn)
		if err != nil {
			metrics.NotificationOutcomes.WithLabelValues(kind, "failure").Inc()
			d.log.Warn("notification delivery failed",
				zap.String("kind", kind),
				zap.String("profile_id", profileID),
				zap.Error(err),
			)
			return
		}
		metrics.NotificationOutcomes.WithLabelValues(kind, "success").Inc()
	}()
}

func (d *Dispatcher) safely(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ctx)
}

// Close stops accepting events and waits for in-flight deliveries or ctx, whichever ends first.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("notifications: drain: %w", ctx.Err())
	}
}

// Wait blocks until all in-flight deliveries finish. Tests use it to observe side effects.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
