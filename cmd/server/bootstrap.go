package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/charlesng35/pitchbase/internal/api"
	"github.com/charlesng35/pitchbase/internal/app"
	"github.com/charlesng35/pitchbase/internal/app/maintenance"
	iauth "github.com/charlesng35/pitchbase/internal/auth"
	"github.com/charlesng35/pitchbase/internal/cache"
	"github.com/charlesng35/pitchbase/internal/database"
	"github.com/charlesng35/pitchbase/internal/middleware"
	"github.com/charlesng35/pitchbase/internal/monitoring"
	"github.com/charlesng35/pitchbase/internal/monitoring/checks"
	"github.com/charlesng35/pitchbase/internal/notifications"
	"github.com/charlesng35/pitchbase/internal/services"
	"github.com/charlesng35/pitchbase/pkg/logger"
	"github.com/charlesng35/pitchbase/pkg/mail"
)

// runtimeStack bundles long-lived services used by the HTTP server.
type runtimeStack struct {
	DB         *gorm.DB
	Redis      *cache.RedisStore
	Verifier   iauth.Verifier
	Kafka      *notifications.KafkaAnalytics
	Dispatcher *notifications.Dispatcher
	Reconciler *maintenance.Reconciler
	Health     *monitoring.HealthManager
	RateStore  middleware.RateStore
	Router     *gin.Engine
}

// bootstrapRuntime opens storage, builds the notification pipeline and the HTTP router.
func bootstrapRuntime(ctx context.Context, cfg *app.Config, log *zap.Logger) (*runtimeStack, error) {
	stack := &runtimeStack{}
	var err error
	success := false

	defer func() {
		if !success {
			_ = stack.Shutdown(context.Background(), log)
		}
	}()

	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	stack.DB, err = initialiseDatabase(cfg)
	if err != nil {
		return nil, err
	}

	stack.RateStore = middleware.NewMemoryRateStore()
	if cfg.Cache.Redis.Enabled {
		if stack.Redis, err = cache.NewRedisStore(ctx, cfg.Cache.RedisClientConfig()); err != nil {
			log.Warn("redis unavailable; falling back to in-process rate limiting", zap.Error(err))
			stack.Redis = nil
		} else {
			log.Info("redis connected", zap.String("addr", cfg.Cache.Redis.Address))
			stack.RateStore = middleware.NewRedisRateStore(stack.Redis)
		}
	}

	stack.Verifier, err = cfg.Auth.NewVerifier(ctx)
	if err != nil {
		return nil, fmt.Errorf("initialise token verifier: %w", err)
	}
	if _, ok := stack.Verifier.(*iauth.StaticVerifier); ok {
		log.Warn("static token verifier in use; do not expose this server publicly")
	}

	stack.Dispatcher, err = buildDispatcher(cfg.Notifications, stack, log)
	if err != nil {
		return nil, err
	}

	stack.Health = monitoring.NewHealthManager()
	stack.Health.RegisterReadiness(checks.Database(stack.DB, 0))
	if stack.Redis != nil {
		stack.Health.RegisterReadiness(checks.Redis(stack.Redis, 0))
	}

	if cfg.Maintenance.Enabled {
		orgSvc, err := services.NewOrganizationService(stack.DB, services.NewMembershipLedger(), nil, nil)
		if err != nil {
			return nil, fmt.Errorf("initialise organization service: %w", err)
		}
		stack.Reconciler = maintenance.NewReconciler(stack.DB, orgSvc, maintenance.WithSchedule(cfg.Maintenance.ReconcileSchedule))
		if cfg.Maintenance.RunOnStartup {
			if err := stack.Reconciler.RunOnce(ctx); err != nil {
				log.Warn("startup reconcile failed", zap.Error(err))
			}
		}
		if err := stack.Reconciler.Start(); err != nil {
			return nil, fmt.Errorf("start maintenance jobs: %w", err)
		}
	}

	stack.Router, err = api.NewRouter(api.Dependencies{
		DB:        stack.DB,
		Verifier:  stack.Verifier,
		Config:    cfg,
		Notifier:  stack.Dispatcher,
		RateStore: stack.RateStore,
		Health:    stack.Health,
	})
	if err != nil {
		return nil, fmt.Errorf("build api router: %w", err)
	}

	success = true
	return stack, nil
}

func buildDispatcher(cfg app.NotificationsConfig, stack *runtimeStack, log *zap.Logger) (*notifications.Dispatcher, error) {
	opts := []notifications.DispatcherOption{notifications.WithTimeout(cfg.DispatchTimeout)}

	if cfg.Welcome.Enabled && cfg.Email.SMTP.Enabled {
		mailer, err := mail.NewSMTPMailer(cfg.Email.SMTPSettings())
		if err != nil {
			return nil, fmt.Errorf("initialise smtp mailer: %w", err)
		}
		welcomer, err := notifications.NewMailWelcomer(mailer, cfg.Email.From)
		if err != nil {
			return nil, err
		}
		opts = append(opts, notifications.WithWelcomer(welcomer))
	} else if cfg.Welcome.Enabled {
		log.Info("smtp disabled; welcome emails will not be sent")
	}

	if cfg.Analytics.Kafka.Enabled {
		kafka, err := notifications.NewKafkaAnalytics(cfg.Analytics.KafkaConfig())
		if err != nil {
			return nil, fmt.Errorf("initialise kafka analytics: %w", err)
		}
		stack.Kafka = kafka
		opts = append(opts, notifications.WithAnalytics(kafka))
	} else {
		opts = append(opts, notifications.WithAnalytics(notifications.NewLogAnalytics()))
	}

	return notifications.NewDispatcher(opts...), nil
}

// Shutdown drains notifications, stops background jobs and releases resources.
func (s *runtimeStack) Shutdown(ctx context.Context, log *zap.Logger) error {
	if s == nil {
		return nil
	}

	var errs error
	if s.Dispatcher != nil {
		if err := s.Dispatcher.Close(ctx); err != nil {
			log.Warn("notification drain incomplete", zap.Error(err))
			errs = multierr.Append(errs, err)
		}
	}

	if s.Reconciler != nil {
		select {
		case <-s.Reconciler.Stop().Done():
		case <-ctx.Done():
			log.Warn("reconciler still running at shutdown")
		}
	}

	if s.Kafka != nil {
		errs = multierr.Append(errs, s.Kafka.Close())
	}
	if s.Redis != nil {
		errs = multierr.Append(errs, s.Redis.Close())
	}
	if s.DB != nil {
		errs = multierr.Append(errs, database.Close(s.DB))
	}
	return errs
}

func initialiseDatabase(cfg *app.Config) (*gorm.DB, error) {
	dbCfg := cfg.Database.ConnectionConfig()
	db, err := database.Prepare(dbCfg)
	if err != nil {
		return nil, err
	}

	driver := dbCfg.Driver
	if driver == "" {
		driver = "sqlite"
	}
	logger.WithModule("database").Info("database connected", zap.String("driver", driver))
	return db, nil
}
