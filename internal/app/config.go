package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"

	"github.com/charlesng35/pitchbase/internal/auth"
)

// Config represents the runtime configuration for the pitchbase backend.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Cache         CacheConfig         `mapstructure:"cache"`
	Auth          AuthConfig          `mapstructure:"auth"`
	Notifications NotificationsConfig `mapstructure:"notifications"`
	Monitoring    MonitoringConfig    `mapstructure:"monitoring"`
	Maintenance   MaintenanceConfig   `mapstructure:"maintenance"`
}

// ServerConfig configures the HTTP server.
type ServerConfig struct {
	Port            int             `mapstructure:"port"`
	LogLevel        string          `mapstructure:"log_level"`
	LogFormat       string          `mapstructure:"log_format"`
	ShutdownTimeout time.Duration   `mapstructure:"shutdown_timeout"`
	CORS            CORSConfig      `mapstructure:"cors"`
	RateLimit       RateLimitConfig `mapstructure:"rate_limit"`
}

// CORSConfig lists the origins allowed to call the API from a browser.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// RateLimitConfig bounds requests per client and route.
type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// DatabaseConfig describes connection options for the supported databases.
type DatabaseConfig struct {
	Driver   string       `mapstructure:"driver"`
	Path     string       `mapstructure:"path"`
	DSN      string       `mapstructure:"dsn"`
	Postgres DBAuthConfig `mapstructure:"postgres"`
	MySQL    DBAuthConfig `mapstructure:"mysql"`
}

// DBAuthConfig represents host based database parameters.
type DBAuthConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Database string `mapstructure:"database"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	// Options are appended to the DSN, e.g. sslmode for postgres or tls for mysql.
	Options map[string]string `mapstructure:"options"`
}

// CacheConfig describes cache backends.
type CacheConfig struct {
	Redis RedisCacheConfig `mapstructure:"redis"`
}

// RedisCacheConfig holds Redis connection options.
type RedisCacheConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Address  string        `mapstructure:"address"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TLS      bool          `mapstructure:"tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AuthConfig selects and configures the bearer token verifier.
type AuthConfig struct {
	// Provider is one of static, jwt or oidc.
	Provider string       `mapstructure:"provider"`
	Static   StaticConfig `mapstructure:"static"`
	JWT      JWTSettings  `mapstructure:"jwt"`
	OIDC     OIDCSettings `mapstructure:"oidc"`
}

// StaticConfig maps fixed tokens to identities. Keys are lower-cased by the config loader.
type StaticConfig struct {
	Tokens map[string]auth.StaticIdentity `mapstructure:"tokens"`
}

// JWTSettings configures HS256 bearer tokens.
type JWTSettings struct {
	Secret   string        `mapstructure:"secret"`
	Issuer   string        `mapstructure:"issuer"`
	Audience string        `mapstructure:"audience"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// OIDCSettings configures ID token verification against an OpenID provider.
type OIDCSettings struct {
	Issuer string `mapstructure:"issuer"`
	// FirebaseProject derives Issuer and Audience when they are empty.
	FirebaseProject string        `mapstructure:"firebase_project"`
	Audience        string        `mapstructure:"audience"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

// NotificationsConfig controls post-commit side effects.
type NotificationsConfig struct {
	DispatchTimeout time.Duration   `mapstructure:"dispatch_timeout"`
	Welcome         WelcomeConfig   `mapstructure:"welcome"`
	Email           EmailConfig     `mapstructure:"email"`
	Analytics       AnalyticsConfig `mapstructure:"analytics"`
}

// WelcomeConfig toggles the welcome email sent to new profiles.
type WelcomeConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// EmailConfig captures outbound email settings.
type EmailConfig struct {
	From string     `mapstructure:"from"`
	SMTP SMTPConfig `mapstructure:"smtp"`
}

// SMTPConfig defines SMTP dialer settings for sending email.
type SMTPConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	UseTLS   bool          `mapstructure:"use_tls"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// AnalyticsConfig selects the analytics backend. Without Kafka, events are logged.
type AnalyticsConfig struct {
	Kafka KafkaSettings `mapstructure:"kafka"`
}

// KafkaSettings configures the analytics topic writer.
type KafkaSettings struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// MonitoringConfig enables health checks and metrics.
type MonitoringConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
	Health     HealthConfig     `mapstructure:"health_check"`
}

// PrometheusConfig toggles metrics endpoints.
type PrometheusConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Endpoint string `mapstructure:"endpoint"`
}

// HealthConfig toggles health endpoints.
type HealthConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

// MaintenanceConfig schedules the admin-less organization reconciler.
type MaintenanceConfig struct {
	Enabled           bool   `mapstructure:"enabled"`
	ReconcileSchedule string `mapstructure:"reconcile_schedule"`
	RunOnStartup      bool   `mapstructure:"run_on_startup"`
}

// LoadConfig initialises application configuration using Viper with sensible defaults.
// Environment variables use the PITCHBASE_ prefix, e.g. PITCHBASE_SERVER_PORT.
func LoadConfig(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("./config")
	for _, path := range paths {
		v.AddConfigPath(path)
	}

	setDefaults(v)

	v.SetEnvPrefix("PITCHBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if !errors.As(err, &cfgErr) {
			return nil, fmt.Errorf("config: read file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config, decodeHook()); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// Validate rejects combinations that cannot start a server.
func (c *Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Auth.Provider)) {
	case "", AuthProviderStatic:
		if auth.NewStaticVerifier(c.Auth.Static.Tokens).Len() == 0 {
			return errNoStaticTokens
		}
	case AuthProviderJWT:
		if strings.TrimSpace(c.Auth.JWT.Secret) == "" {
			return errors.New("config: auth.jwt.secret is required for the jwt provider")
		}
	case AuthProviderOIDC:
		if c.Auth.OIDC.issuer() == "" {
			return errors.New("config: auth.oidc.issuer or auth.oidc.firebase_project is required for the oidc provider")
		}
	default:
		return fmt.Errorf("config: unsupported auth provider %q", c.Auth.Provider)
	}

	if c.Notifications.Analytics.Kafka.Enabled {
		if len(c.Notifications.Analytics.Kafka.Brokers) == 0 || strings.TrimSpace(c.Notifications.Analytics.Kafka.Topic) == "" {
			return errors.New("config: notifications.analytics.kafka requires brokers and topic")
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8000)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.log_format", "json")
	v.SetDefault("server.shutdown_timeout", "15s")
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("server.rate_limit.requests", 120)
	v.SetDefault("server.rate_limit.window", "1m")

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.path", "./data/pitchbase.sqlite")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.mysql.port", 3306)

	v.SetDefault("cache.redis.enabled", false)
	v.SetDefault("cache.redis.address", "127.0.0.1:6379")
	v.SetDefault("cache.redis.username", "")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)
	v.SetDefault("cache.redis.tls", false)
	v.SetDefault("cache.redis.timeout", "5s")

	v.SetDefault("auth.provider", AuthProviderStatic)
	v.SetDefault("auth.jwt.secret", "")
	v.SetDefault("auth.jwt.issuer", "pitchbase")
	v.SetDefault("auth.jwt.audience", "")
	v.SetDefault("auth.jwt.ttl", "1h")
	v.SetDefault("auth.oidc.issuer", "")
	v.SetDefault("auth.oidc.firebase_project", "")
	v.SetDefault("auth.oidc.audience", "")
	v.SetDefault("auth.oidc.timeout", "10s")

	v.SetDefault("notifications.dispatch_timeout", "10s")
	v.SetDefault("notifications.welcome.enabled", true)
	v.SetDefault("notifications.email.from", "IndiePitcher <hello@indiepitcher.com>")
	v.SetDefault("notifications.email.smtp.enabled", false)
	v.SetDefault("notifications.email.smtp.host", "")
	v.SetDefault("notifications.email.smtp.port", 587)
	v.SetDefault("notifications.email.smtp.username", "")
	v.SetDefault("notifications.email.smtp.password", "")
	v.SetDefault("notifications.email.smtp.use_tls", false)
	v.SetDefault("notifications.email.smtp.timeout", "10s")
	v.SetDefault("notifications.analytics.kafka.enabled", false)
	v.SetDefault("notifications.analytics.kafka.brokers", []string{})
	v.SetDefault("notifications.analytics.kafka.topic", "pitchbase.analytics")

	v.SetDefault("monitoring.prometheus.enabled", true)
	v.SetDefault("monitoring.prometheus.endpoint", "/metrics")
	v.SetDefault("monitoring.health_check.enabled", true)

	v.SetDefault("maintenance.enabled", true)
	v.SetDefault("maintenance.reconcile_schedule", "@hourly")
	v.SetDefault("maintenance.run_on_startup", true)
}

func decodeHook() viper.DecoderConfigOption {
	return func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}
}
