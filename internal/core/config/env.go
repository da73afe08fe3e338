package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the configuration.
// Pattern: SYMTABLE_[SECTION]_[KEY] (e.g., SYMTABLE_LOG_LEVEL).
func ApplyEnvOverrides(cfg *Config) {
	// Log
	setEnvString(&cfg.Log.Level, "SYMTABLE_LOG_LEVEL")
	setEnvString(&cfg.Log.File, "SYMTABLE_LOG_FILE")

	// Dump
	setEnvString(&cfg.Dump.Filter, "SYMTABLE_DUMP_FILTER")

	// Scan
	setEnvList(&cfg.Scan.Include, "SYMTABLE_SCAN_INCLUDE")
	if val, ok := os.LookupEnv("SYMTABLE_SCAN_REPORT_SHADOWING"); ok {
		if b, err := strconv.ParseBool(strings.ToLower(val)); err == nil {
			slog.Debug("applying env override", "key", "SYMTABLE_SCAN_REPORT_SHADOWING", "value", val)
			cfg.Scan.ReportShadowing = &b
		}
	}

	// Exclude
	setEnvList(&cfg.Exclude.Symbols, "SYMTABLE_EXCLUDE_SYMBOLS")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "SYMTABLE_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.RateLimit, "SYMTABLE_WATCH_RATE_LIMIT")
	setEnvInt(&cfg.Watch.Burst, "SYMTABLE_WATCH_BURST")

	// Observability
	setEnvString(&cfg.Observability.MetricsAddr, "SYMTABLE_OBSERVABILITY_METRICS_ADDR")
	setEnvString(&cfg.Observability.OTLPEndpoint, "SYMTABLE_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvString(&cfg.Observability.ServiceName, "SYMTABLE_OBSERVABILITY_SERVICE_NAME")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = val
	}
}

// setEnvList reads a comma separated list.
func setEnvList(target *[]string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		slog.Debug("applying env override", "key", key, "value", val)
		*target = strings.Split(val, ",")
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = i
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			slog.Debug("applying env override", "key", key, "value", val)
			*target = d
		}
	}
}
