// Package config holds the env-driven Config struct for the proxy process,
// mirroring the FromEnv()-constructor convention used throughout this
// codebase's ambient configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config is the full set of runtime knobs for a cursorbridge process.
type Config struct {
	BaseURL       string
	AuthBaseURL   string
	WorkspacePath string

	RequestTimeout time.Duration

	HeartbeatIdleNoProgress   time.Duration
	HeartbeatMaxBeatsNoProgress int
	HeartbeatIdleProgress     time.Duration
	HeartbeatMaxBeatsProgress int

	Debug  bool
	Timing bool

	ListenAddr string

	CredentialPath string
	NATSURL        string

	LogJSON bool
}

// FromEnv builds a Config from CURSORBRIDGE_* environment variables,
// applying the session protocol's documented defaults where unset.
func FromEnv() Config {
	wd, _ := os.Getwd()
	c := Config{
		BaseURL:                     getenv("CURSORBRIDGE_BASE_URL", "https://api2.cursor.sh"),
		AuthBaseURL:                 getenv("CURSORBRIDGE_AUTH_BASE_URL", "https://api2.cursor.sh"),
		WorkspacePath:               getenv("CURSORBRIDGE_WORKSPACE_PATH", wd),
		RequestTimeout:              getenvDuration("CURSORBRIDGE_REQUEST_TIMEOUT_MS", 120_000),
		HeartbeatIdleNoProgress:     getenvDuration("CURSORBRIDGE_HEARTBEAT_IDLE_NOPGRS_MS", 180_000),
		HeartbeatMaxBeatsNoProgress: getenvInt("CURSORBRIDGE_HEARTBEAT_MAX_BEATS_NOPGRS", 1000),
		HeartbeatIdleProgress:       getenvDuration("CURSORBRIDGE_HEARTBEAT_IDLE_PGRS_MS", 120_000),
		HeartbeatMaxBeatsProgress:   getenvInt("CURSORBRIDGE_HEARTBEAT_MAX_BEATS_PGRS", 1000),
		Debug:                       getenvBool("CURSORBRIDGE_DEBUG", false),
		Timing:                      getenvBool("CURSORBRIDGE_TIMING", false),
		ListenAddr:                  getenv("CURSORBRIDGE_LISTEN_ADDR", ":8787"),
		CredentialPath:              os.Getenv("CURSORBRIDGE_CREDENTIAL_PATH"),
		NATSURL:                     os.Getenv("CURSORBRIDGE_NATS_URL"),
		LogJSON:                     getenvBool("CURSORBRIDGE_LOG_JSON", false),
	}
	return c
}

// Validate fails fast on combinations that cannot possibly work, without
// requiring features the caller hasn't enabled.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("config: base_url must not be empty")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("config: request_timeout must be positive")
	}
	return nil
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, defMs int64) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return time.Duration(defMs) * time.Millisecond
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return time.Duration(defMs) * time.Millisecond
	}
	return time.Duration(n) * time.Millisecond
}
