package bbapi

import (
	"os"
	"strconv"
)

// Defaults for the signature search. The window ends flush against the
// 4 GiB boundary where the board flash is decoded.
const (
	DefaultPhysAddr   uint64 = 0xFFE00000
	DefaultSearchArea uint64 = 0x00200000
)

// Config controls firmware discovery and the error numbering mode.
// The zero value selects the defaults.
type Config struct {
	// PhysAddr is the physical base of the signature search window.
	PhysAddr uint64

	// SearchArea is the window size in bytes. Oversized windows are
	// rejected at Open, never clamped.
	SearchArea uint64

	// Device overrides the physical memory device path.
	Device string

	// LegacyErrors selects the historical error numbering, where
	// firmware status codes are not offset out of the host errno
	// space and the two may collide. The collision is a documented
	// property of old deployments, not a defect; leave this off
	// unless a legacy consumer depends on it.
	LegacyErrors bool
}

func (c Config) withDefaults() Config {
	if c.PhysAddr == 0 {
		c.PhysAddr = DefaultPhysAddr
	}
	if c.SearchArea == 0 {
		c.SearchArea = DefaultSearchArea
	}
	return c
}

// getEnv returns an environment variable or a default value.
func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

// getEnvUint64 returns an environment variable as uint64 (decimal or
// 0x-prefixed hex) or a default value.
func getEnvUint64(key string, defaultValue uint64) uint64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseUint(v, 0, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvBool returns an environment variable as bool or a default
// value.
func getEnvBool(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

// ConfigFromEnv builds a Config from BBAPI_* environment variables,
// falling back to the defaults.
func ConfigFromEnv() Config {
	return Config{
		PhysAddr:     getEnvUint64("BBAPI_PHYS_ADDR", DefaultPhysAddr),
		SearchArea:   getEnvUint64("BBAPI_SEARCH_AREA", DefaultSearchArea),
		Device:       getEnv("BBAPI_DEVMEM", ""),
		LegacyErrors: getEnvBool("BBAPI_LEGACY_ERRORS", false),
	}
}
