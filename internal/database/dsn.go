package database

import (
	"fmt"
	"net"
	"sort"
	"strconv"
	"strings"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	defaultPostgresPort = 5432
	defaultMySQLPort    = 3306
)

func openPostgres(cfg Config) (*gorm.DB, error) {
	dsn, err := buildPostgresDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(postgres.Open(dsn), gormConfig())
}

func openMySQL(cfg Config) (*gorm.DB, error) {
	dsn, err := buildMySQLDSN(cfg)
	if err != nil {
		return nil, err
	}
	return gorm.Open(mysql.Open(dsn), gormConfig())
}

// endpoint returns host and port with driver defaults applied.
func (c Config) endpoint(defaultHost string, defaultPort int) (string, int) {
	host := strings.TrimSpace(c.Host)
	if host == "" {
		host = defaultHost
	}
	port := c.Port
	if port <= 0 {
		port = defaultPort
	}
	return host, port
}

func (c Config) requireCredentials(driver string) error {
	if strings.TrimSpace(c.User) == "" || strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%s configuration requires user and database name", driver)
	}
	return nil
}

// buildPostgresDSN renders a libpq keyword/value connection string. Profiles and
// organizations store timestamps in UTC, so the session time zone defaults to UTC.
func buildPostgresDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}
	if err := cfg.requireCredentials("postgres"); err != nil {
		return "", err
	}

	host, port := cfg.endpoint("localhost", defaultPostgresPort)
	params := []string{
		"host=" + quotePostgresValue(host),
		"port=" + strconv.Itoa(port),
		"user=" + quotePostgresValue(cfg.User),
		"dbname=" + quotePostgresValue(cfg.Name),
	}
	if cfg.Password != "" {
		params = append(params, "password="+quotePostgresValue(cfg.Password))
	}

	options := mergeOptions(map[string]string{
		"sslmode":  "disable",
		"TimeZone": "UTC",
	}, cfg.Options)
	for _, key := range sortedKeys(options) {
		params = append(params, key+"="+quotePostgresValue(options[key]))
	}

	return strings.Join(params, " "), nil
}

// quotePostgresValue wraps values containing spaces or quotes as libpq requires.
func quotePostgresValue(value string) string {
	if value != "" && !strings.ContainsAny(value, " '\\") {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}

// buildMySQLDSN formats the DSN with the driver's own config so escaping follows its rules.
func buildMySQLDSN(cfg Config) (string, error) {
	if dsn := strings.TrimSpace(cfg.DSN); dsn != "" {
		return dsn, nil
	}
	if err := cfg.requireCredentials("mysql"); err != nil {
		return "", err
	}

	host, port := cfg.endpoint("127.0.0.1", defaultMySQLPort)

	driverCfg := mysqldrv.NewConfig()
	driverCfg.User = cfg.User
	driverCfg.Passwd = cfg.Password
	driverCfg.Net = "tcp"
	driverCfg.Addr = net.JoinHostPort(host, strconv.Itoa(port))
	driverCfg.DBName = cfg.Name
	driverCfg.ParseTime = true
	driverCfg.Loc = time.UTC
	driverCfg.Params = mergeOptions(map[string]string{"charset": "utf8mb4"}, cfg.Options)

	return driverCfg.FormatDSN(), nil
}

func mergeOptions(defaults, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		merged[key] = value
	}
	return merged
}

func sortedKeys(values map[string]string) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
