package cliconfig

import (
	"os"
	"path/filepath"
)

func DefaultConfigDir() string {
	if v := os.Getenv("CURSORBRIDGE_HOME"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".cursorbridge")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config")
}
