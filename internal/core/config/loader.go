package config

import (
	"os"
	"strings"
	"time"

	"symtable/internal/core/errors"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxPath, path)
	}
	return cfg, nil
}

// Parse decodes TOML data, applies environment overrides and validates the
// result.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "malformed config")
	}

	ApplyEnvOverrides(&cfg)
	if err := finalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads path, falling back to DefaultConfig when path is the
// default location and does not exist. Environment overrides apply either way.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && os.IsNotExist(err) && path == DefaultPath {
		cfg = &Config{}
		ApplyEnvOverrides(cfg)
		if err := finalize(cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}
	return cfg, err
}

func finalize(cfg *Config) error {
	applyDefaults(cfg)
	normalize(cfg)

	for _, validate := range []func(*Config) error{
		validateVersion,
		validateLog,
		validateDump,
		validatePatterns,
		validateWatch,
	} {
		if err := validate(cfg); err != nil {
			return errors.Wrap(err, errors.CodeValidationError, "invalid config")
		}
	}
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}
	if strings.TrimSpace(cfg.Log.Level) == "" {
		cfg.Log.Level = "info"
	}
	if strings.TrimSpace(cfg.Dump.Filter) == "" {
		cfg.Dump.Filter = "all"
	}
	if len(cfg.Scan.Include) == 0 {
		cfg.Scan.Include = []string{"**.go"}
	}
	if cfg.Scan.ReportShadowing == nil {
		enabled := true
		cfg.Scan.ReportShadowing = &enabled
	}
	if cfg.Exclude.Dirs == nil {
		cfg.Exclude.Dirs = []string{".git", "vendor", "node_modules"}
	}
	if cfg.Exclude.Symbols == nil {
		cfg.Exclude.Symbols = []string{"_"}
	}
	// Default debounce if not set.
	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 300 * time.Millisecond
	}
	if cfg.Watch.RateLimit == 0 {
		cfg.Watch.RateLimit = 2
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 1
	}
	if strings.TrimSpace(cfg.Observability.ServiceName) == "" {
		cfg.Observability.ServiceName = "symtable"
	}
}

func normalize(cfg *Config) {
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.File = strings.TrimSpace(cfg.Log.File)
	cfg.Dump.Filter = strings.ToLower(strings.TrimSpace(cfg.Dump.Filter))
	cfg.Observability.MetricsAddr = strings.TrimSpace(cfg.Observability.MetricsAddr)
	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
	cfg.Scan.Include = trimAll(cfg.Scan.Include)
	cfg.Exclude.Dirs = trimAll(cfg.Exclude.Dirs)
	cfg.Exclude.Files = trimAll(cfg.Exclude.Files)
	cfg.Exclude.Symbols = trimAll(cfg.Exclude.Symbols)
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	return out
}
