package app

import (
	"strings"

	"github.com/charlesng35/pitchbase/internal/database"
)

// ConnectionConfig converts DatabaseConfig into the database package representation,
// picking the host settings that match the driver.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	driver := strings.ToLower(strings.TrimSpace(c.Driver))
	cfg := database.Config{
		Driver: driver,
		Path:   c.Path,
		DSN:    c.DSN,
	}

	var host DBAuthConfig
	switch driver {
	case "postgres", "postgresql":
		host = c.Postgres
	case "mysql", "mariadb":
		host = c.MySQL
	default:
		return cfg
	}

	cfg.Host = host.Host
	cfg.Port = host.Port
	cfg.User = host.Username
	cfg.Password = host.Password
	cfg.Name = host.Database
	cfg.Options = host.Options
	return cfg
}
