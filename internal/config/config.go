package config

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	// File paths
	DBPath     string
	OutputPath string

	// Open the database read-only. Only meaningful for the generator,
	// which never writes; the admin server requires read-write.
	DBReadOnly bool

	// Server settings
	ServerHost string
	ServerPort int

	// Admin credentials (shared secret login gate)
	AdminUser string
	AdminPass string

	// Session settings
	SessionTTL      time.Duration
	SessionRotation time.Duration

	// Feed generation settings
	Interval time.Duration

	// Log settings
	LogLevel zerolog.Level
}

// DefaultConfig returns an initial configuration with hardcoded defaults,
// overridable by environment variables.
func DefaultConfig() *Config {
	defaultLevel, _ := zerolog.ParseLevel(DefaultLogLevel)

	return &Config{
		DBPath:     DefaultDBPath,
		OutputPath: DefaultOutputPath,
		ServerHost: DefaultServerHost,
		ServerPort: DefaultServerPort,
		AdminUser:  GetEnvString("GAMEDAY_ADMIN_USER", ""),
		AdminPass:  GetEnvString("GAMEDAY_ADMIN_PASS", ""),
		SessionTTL: GetEnvDuration("GAMEDAY_SESSION_TTL",
			time.Duration(DefaultSessionTTLMinutes)*time.Minute),
		SessionRotation: GetEnvDuration("GAMEDAY_SESSION_ROTATION",
			time.Duration(DefaultSessionRotationMinutes)*time.Minute),
		Interval: time.Duration(DefaultInterval) * time.Minute,
		LogLevel: GetEnvLogLevel("GAMEDAY_LOG_LEVEL", defaultLevel),
	}
}

// ListenAddr returns the formatted listen address for the HTTP server.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}
