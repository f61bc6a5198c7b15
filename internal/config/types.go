package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/ZebulonRouseFrantzich/wdb/internal/driver"
	"github.com/ZebulonRouseFrantzich/wdb/internal/fetch"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// MaxRetries caps the retries field.
const MaxRetries = 10

// Config is the resolved wdb configuration.
type Config struct {
	// Root is the download root; drivers live in Root/webdriver.
	Root string
	// Proxy is an optional HTTP proxy URL.
	Proxy string
	// Timeout bounds each HTTP request.
	Timeout time.Duration
	// Retries is the number of extra attempts per HTTP request.
	Retries int
	// Strict forces a download even when a cached binary exists.
	Strict bool
	// AutoDetect matches drivers to installed browser versions.
	AutoDetect bool
	// LogLevel is one of debug, info, warn, error.
	LogLevel string
	// Drivers holds per-family pins.
	Drivers map[driver.Family]DriverConfig
	// Endpoints are the vendor base URLs.
	Endpoints driver.Endpoints
}

// DriverConfig pins a single driver family.
type DriverConfig struct {
	Version string
	Arch    int
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Root:       os.TempDir(),
		Timeout:    fetch.DefaultTimeout,
		AutoDetect: true,
		LogLevel:   "info",
		Drivers:    make(map[driver.Family]DriverConfig),
		Endpoints:  driver.DefaultEndpoints(),
	}
}

// Driver returns the pin for f, or the zero value.
func (c *Config) Driver(f driver.Family) DriverConfig {
	return c.Drivers[f]
}

// Level returns LogLevel as a slog level.
func (c *Config) Level() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}

// Validate checks field ranges.
func (c *Config) Validate() error {
	if c.Root == "" {
		return &ValidationError{Field: "root", Message: "cannot be empty"}
	}
	if c.Timeout <= 0 {
		return &ValidationError{Field: "timeout", Message: fmt.Sprintf("must be positive, got %s", c.Timeout)}
	}
	if c.Retries < 0 || c.Retries > MaxRetries {
		return &ValidationError{Field: "retries", Message: fmt.Sprintf("must be between 0 and %d, got %d", MaxRetries, c.Retries)}
	}
	if c.Proxy != "" {
		if _, err := fetch.New(fetch.Config{Proxy: c.Proxy}); err != nil {
			return &ValidationError{Field: "proxy", Message: err.Error()}
		}
	}
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return &ValidationError{Field: "log_level", Message: fmt.Sprintf("unknown level %q", c.LogLevel)}
	}

	families := make([]string, 0, len(c.Drivers))
	for f := range c.Drivers {
		families = append(families, string(f))
	}
	sort.Strings(families)
	for _, name := range families {
		dc := c.Drivers[driver.Family(name)]
		if err := platform.ValidateArch(dc.Arch); err != nil {
			return &ValidationError{Field: "drivers." + name + ".arch", Message: err.Error()}
		}
	}
	return nil
}

// ValidationError reports an out-of-range field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return "config validation failed for " + e.Field + ": " + e.Message
	}
	return "config validation failed: " + e.Message
}
