package config

import (
	"fmt"
	"log/slog"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version != 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateLog(cfg *Config) error {
	if _, err := ParseLevel(cfg.Log.Level); err != nil {
		return err
	}
	return nil
}

func validateDump(cfg *Config) error {
	switch cfg.Dump.Filter {
	case "all", "cur", "current", "gbl", "global":
		return nil
	}
	return fmt.Errorf("dump.filter must be one of: all, cur, gbl; got %q", cfg.Dump.Filter)
}

func validatePatterns(cfg *Config) error {
	groups := []struct {
		field    string
		patterns []string
	}{
		{"scan.include", cfg.Scan.Include},
		{"exclude.files", cfg.Exclude.Files},
		{"exclude.symbols", cfg.Exclude.Symbols},
	}
	for _, group := range groups {
		for i, p := range group.patterns {
			if _, err := glob.Compile(p, '/'); err != nil {
				return fmt.Errorf("%s[%d]: invalid glob %q: %w", group.field, i, p, err)
			}
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce < 0 {
		return fmt.Errorf("watch.debounce must not be negative")
	}
	if cfg.Watch.RateLimit < 0 {
		return fmt.Errorf("watch.rate_limit must not be negative, got %v", cfg.Watch.RateLimit)
	}
	return nil
}

// ParseLevel maps a config log level onto slog.
func ParseLevel(level string) (slog.Level, error) {
	switch level {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("log.level must be one of: debug, info, warn, error; got %q", level)
}
