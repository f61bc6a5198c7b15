package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvRoot     = "WDB_ROOT"
	EnvProxy    = "WDB_PROXY"
	EnvLogLevel = "WDB_LOG_LEVEL"
	EnvStrict   = "WDB_STRICT"
	EnvTimeout  = "WDB_TIMEOUT"
	EnvRetries  = "WDB_RETRIES"
)

// DefaultDotEnv is the .env file looked up in the working directory.
const DefaultDotEnv = ".env"

// Lookup resolves an environment variable.
type Lookup func(key string) (string, bool)

// LoadEnv returns a Lookup over the process environment layered on top
// of the variables in dotenvPath. Empty process variables do not mask the
// file. A missing dotenv file is not an error. The process environment is
// left untouched.
func LoadEnv(dotenvPath string) (Lookup, error) {
	var file map[string]string
	if dotenvPath != "" {
		m, err := godotenv.Read(dotenvPath)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("read %s: %w", dotenvPath, err)
		default:
			file = m
		}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			return v, true
		}
		v, ok := file[key]
		return v, ok
	}, nil
}

// ApplyEnv overlays the WDB_* variables found by lookup and revalidates.
// Empty values are ignored.
func (c *Config) ApplyEnv(lookup Lookup) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get(EnvRoot); ok {
		c.Root = v
	}
	if v, ok := get(EnvProxy); ok {
		c.Proxy = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.LogLevel = v
	}
	if v, ok := get(EnvStrict); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return &ValidationError{Field: EnvStrict, Message: fmt.Sprintf("not a boolean: %q", v)}
		}
		c.Strict = b
	}
	if v, ok := get(EnvTimeout); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return &ValidationError{Field: EnvTimeout, Message: err.Error()}
		}
		c.Timeout = d
	}
	if v, ok := get(EnvRetries); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return &ValidationError{Field: EnvRetries, Message: fmt.Sprintf("not an integer: %q", v)}
		}
		c.Retries = n
	}
	return c.Validate()
}
