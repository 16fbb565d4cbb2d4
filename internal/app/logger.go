package app

import (
	"strings"

	"github.com/charlesng35/pitchbase/pkg/logger"
)

// ConfigureLogging initialises the global logger from the server settings, defaulting to
// info level JSON output.
func ConfigureLogging(cfg ServerConfig) error {
	level := strings.TrimSpace(cfg.LogLevel)
	if level == "" {
		level = "info"
	}
	return logger.InitWithOptions(logger.Options{Level: level, Format: cfg.LogFormat})
}
