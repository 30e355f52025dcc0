package config

import (
	"strings"

	"figmgr/internal/figerr"
)

// LoggingConfig configures the run log.
type LoggingConfig struct {
	Level      string          `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string          `yaml:"format,omitempty"`     // console, json
	File       string          `yaml:"file,omitempty"`       // extra output, relative to the project root
	Categories map[string]bool `yaml:"categories,omitempty"` // per-category toggles
}

// IsCategoryEnabled returns whether a category logs.
// Categories not listed are enabled.
func (c LoggingConfig) IsCategoryEnabled(category string) bool {
	if c.Categories == nil {
		return true
	}
	enabled, exists := c.Categories[category]
	if !exists {
		return true
	}
	return enabled
}

// JSON reports whether log lines are JSON encoded.
func (c LoggingConfig) JSON() bool {
	return strings.EqualFold(c.Format, "json")
}

// FilePath returns the log file location under root, or "" when unset.
func (c LoggingConfig) FilePath(root string) string {
	if c.File == "" {
		return ""
	}
	return resolve(root, c.File)
}

func (c LoggingConfig) validate() error {
	switch strings.ToLower(c.Level) {
	case "", "debug", "info", "warn", "error":
	default:
		return figerr.Config("validate params", "invalid logging.level %q (valid: debug, info, warn, error)", c.Level)
	}
	switch strings.ToLower(c.Format) {
	case "", "console", "json":
	default:
		return figerr.Config("validate params", "invalid logging.format %q (valid: console, json)", c.Format)
	}
	return nil
}
