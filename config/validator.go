package config

import (
	"strings"
	"time"

	"github.com/penwyp/rewindcat/models"
)

var validLogLevels = map[string]bool{
	"debug":   true,
	"info":    true,
	"warn":    true,
	"warning": true,
	"error":   true,
}

// Validate checks the configuration for problems the run would otherwise
// only discover halfway through. Everything it rejects is a ConfigError.
func Validate(cfg *Config) error {
	if !validLogLevels[strings.ToLower(cfg.App.LogLevel)] {
		return models.NewConfigError("app.log_level", "invalid log level %q (debug, info, warn, error)", cfg.App.LogLevel)
	}

	if _, err := ResolveTimezone(cfg.App.Timezone); err != nil {
		return &models.ConfigError{Field: "app.timezone", Message: "invalid timezone " + cfg.App.Timezone, Cause: err}
	}

	for _, path := range cfg.Data.Paths {
		if strings.TrimSpace(path) == "" {
			return models.NewConfigError("data.paths", "empty data path")
		}
	}
	for _, remote := range cfg.Data.Remotes {
		if strings.TrimSpace(remote) == "" {
			return models.NewConfigError("data.remotes", "empty remote host")
		}
	}
	if cfg.Data.RemoteOnly && len(cfg.Data.Remotes) == 0 && len(cfg.Data.Paths) == 0 {
		return models.NewConfigError("data.remote_only", "remote-only set but no remotes or data paths given")
	}

	// Syntax only; name resolution happens after collection.
	if spec := strings.TrimSpace(cfg.Data.MergeSources); spec != "" {
		for _, pair := range strings.Split(spec, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}
			src, target, found := strings.Cut(pair, "=")
			if !found || strings.TrimSpace(src) == "" || strings.TrimSpace(target) == "" {
				return models.NewConfigError("data.merge_sources", "invalid directive %q, expected source=target", pair)
			}
		}
	}

	return nil
}

// ResolveTimezone maps the configured name to a location. "local" and ""
// mean the system timezone.
func ResolveTimezone(name string) (*time.Location, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "local":
		return time.Local, nil
	case "utc":
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}
