package config

import (
	"time"
)

const DefaultPath = "./symtable.toml"

type Config struct {
	Version       int           `toml:"version"`
	Log           Log           `toml:"log"`
	Dump          Dump          `toml:"dump"`
	Scan          Scan          `toml:"scan"`
	Exclude       Exclude       `toml:"exclude"`
	Watch         Watch         `toml:"watch"`
	Observability Observability `toml:"observability"`
}

type Log struct {
	Level string `toml:"level"`
	File  string `toml:"file"`
}

type Dump struct {
	Filter string `toml:"filter"` // all, cur or gbl
}

type Scan struct {
	Include         []string `toml:"include"`
	ReportShadowing *bool    `toml:"report_shadowing"`
}

type Exclude struct {
	Dirs    []string `toml:"dirs"`
	Files   []string `toml:"files"`
	Symbols []string `toml:"symbols"` // Identifier globs never reported as unresolved
}

type Watch struct {
	Debounce  time.Duration `toml:"debounce"`
	RateLimit float64       `toml:"rate_limit"`
	Burst     int           `toml:"burst"`
}

type Observability struct {
	MetricsAddr  string `toml:"metrics_addr"`
	OTLPEndpoint string `toml:"otlp_endpoint"`
	ServiceName  string `toml:"service_name"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// ShadowingEnabled reports whether the scanner should report shadowed
// declarations.
func (c *Config) ShadowingEnabled() bool {
	return c.Scan.ReportShadowing == nil || *c.Scan.ReportShadowing
}
