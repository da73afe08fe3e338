package config

import (
	"os"
	"path/filepath"
)

// ResolveLogPath returns where the REPL writes logs when no log.file is
// configured, keeping stdout free for the terminal UI.
func ResolveLogPath(cfg *Config) string {
	if cfg != nil && cfg.Log.File != "" {
		return cfg.Log.File
	}
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "symtable", "symtable.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "symtable", "symtable.log")
	}

	return "symtable.log"
}
