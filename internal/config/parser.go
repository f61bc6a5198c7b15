package config

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ZebulonRouseFrantzich/wdb/internal/driver"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
	lua "github.com/yuin/gopher-lua"
)

const (
	luaGlobalWdb = "wdb"

	// maxConfigSize bounds the config file read.
	maxConfigSize = 1 << 20
)

// DefaultFileName is the config file looked up in the working directory.
const DefaultFileName = "wdb.lua"

// Parser evaluates Lua config files.
type Parser struct {
	detector platform.Detector
}

// NewParser creates a parser. A nil detector leaves the platform table
// undefined.
func NewParser(detector platform.Detector) *Parser {
	return &Parser{detector: detector}
}

// ParseFile reads and evaluates path. A missing file yields Default.
func (p *Parser) ParseFile(ctx context.Context, path string) (*Config, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxConfigSize+1))
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > maxConfigSize {
		return nil, &ParseError{
			Message: "config file too large",
			Detail:  fmt.Sprintf("%s exceeds %d bytes", path, maxConfigSize),
		}
	}
	return p.ParseString(ctx, string(data))
}

// ParseString evaluates luaCode and returns the config it declares on
// top of Default.
func (p *Parser) ParseString(ctx context.Context, luaCode string) (*Config, error) {
	L := newSandboxedVM()
	defer L.Close()
	L.SetContext(ctx)

	if p.detector != nil {
		env, err := p.detector.Detect(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("platform detection failed: %w", err)
		}
		if err := platform.InjectPlatformTable(L, env); err != nil {
			return nil, fmt.Errorf("inject platform table: %w", err)
		}
	}

	if err := L.DoString(luaCode); err != nil {
		return nil, &ParseError{
			Message: "Lua syntax error",
			Detail:  err.Error(),
		}
	}

	cfg, err := extractConfig(L)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseError represents a config parsing error with friendly message.
type ParseError struct {
	Message string // User-friendly message
	Detail  string // Technical details (raw Lua error)
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Message, e.Detail)
}

// extractConfig reads the global wdb table. A config without one is
// treated as empty.
func extractConfig(L *lua.LState) (*Config, error) {
	cfg := Default()

	global := L.GetGlobal(luaGlobalWdb)
	if global.Type() == lua.LTNil {
		return cfg, nil
	}
	table, ok := global.(*lua.LTable)
	if !ok {
		return nil, &ParseError{
			Message: "invalid 'wdb' table",
			Detail:  fmt.Sprintf("expected table, got %s", global.Type()),
		}
	}

	var err error
	if cfg.Root, err = stringField(table, "root", cfg.Root); err != nil {
		return nil, err
	}
	if cfg.Proxy, err = stringField(table, "proxy", cfg.Proxy); err != nil {
		return nil, err
	}
	if cfg.LogLevel, err = stringField(table, "log_level", cfg.LogLevel); err != nil {
		return nil, err
	}
	if cfg.Retries, err = intField(table, "retries", cfg.Retries); err != nil {
		return nil, err
	}
	if cfg.Strict, err = boolField(table, "strict", cfg.Strict); err != nil {
		return nil, err
	}
	if cfg.AutoDetect, err = boolField(table, "auto_detect", cfg.AutoDetect); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = durationField(table, "timeout", cfg.Timeout); err != nil {
		return nil, err
	}

	if v := table.RawGetString("drivers"); v.Type() != lua.LTNil {
		drivers, ok := v.(*lua.LTable)
		if !ok {
			return nil, typeError("drivers", "table", v)
		}
		if err := extractDrivers(drivers, cfg.Drivers); err != nil {
			return nil, err
		}
	}

	if v := table.RawGetString("endpoints"); v.Type() != lua.LTNil {
		endpoints, ok := v.(*lua.LTable)
		if !ok {
			return nil, typeError("endpoints", "table", v)
		}
		if err := extractEndpoints(endpoints, &cfg.Endpoints); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// extractDrivers reads drivers = { <family> = { version=, arch= } }.
func extractDrivers(table *lua.LTable, out map[driver.Family]DriverConfig) error {
	var err error
	table.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		var f driver.Family
		if f, err = driver.ParseFamily(k.String()); err != nil {
			err = &ParseError{Message: "unknown driver in 'drivers'", Detail: err.Error()}
			return
		}
		entry, ok := v.(*lua.LTable)
		if !ok {
			err = typeError("drivers."+k.String(), "table", v)
			return
		}
		dc := out[f]
		field := "drivers." + string(f)
		if dc.Version, err = stringField(entry, "version", dc.Version); err != nil {
			err = prefixField(err, field)
			return
		}
		if dc.Arch, err = intField(entry, "arch", dc.Arch); err != nil {
			err = prefixField(err, field)
			return
		}
		out[f] = dc
	})
	return err
}

// extractEndpoints reads endpoints = { <family> = "https://..." }.
func extractEndpoints(table *lua.LTable, ep *driver.Endpoints) error {
	var err error
	table.ForEach(func(k, v lua.LValue) {
		if err != nil {
			return
		}
		var f driver.Family
		if f, err = driver.ParseFamily(k.String()); err != nil {
			err = &ParseError{Message: "unknown driver in 'endpoints'", Detail: err.Error()}
			return
		}
		if v.Type() != lua.LTString {
			err = typeError("endpoints."+k.String(), "string", v)
			return
		}
		if setErr := ep.Set(f, v.String()); setErr != nil {
			err = &ValidationError{Field: "endpoints." + string(f), Message: setErr.Error()}
		}
	})
	return err
}

func stringField(t *lua.LTable, name, def string) (string, error) {
	v := t.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return def, nil
	case lua.LTString:
		return strings.TrimSpace(v.String()), nil
	}
	return "", typeError(name, "string", v)
}

func intField(t *lua.LTable, name string, def int) (int, error) {
	v := t.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return def, nil
	case lua.LTNumber:
		n := float64(lua.LVAsNumber(v))
		if n != float64(int(n)) {
			return 0, &ParseError{Message: fmt.Sprintf("field %q must be an integer", name), Detail: v.String()}
		}
		return int(n), nil
	}
	return 0, typeError(name, "number", v)
}

func boolField(t *lua.LTable, name string, def bool) (bool, error) {
	v := t.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return def, nil
	case lua.LTBool:
		return bool(v.(lua.LBool)), nil
	}
	return false, typeError(name, "boolean", v)
}

// durationField accepts a number of seconds or a Go duration string.
func durationField(t *lua.LTable, name string, def time.Duration) (time.Duration, error) {
	v := t.RawGetString(name)
	switch v.Type() {
	case lua.LTNil:
		return def, nil
	case lua.LTNumber:
		secs := float64(lua.LVAsNumber(v))
		return time.Duration(secs * float64(time.Second)), nil
	case lua.LTString:
		d, err := time.ParseDuration(strings.TrimSpace(v.String()))
		if err != nil {
			return 0, &ParseError{Message: fmt.Sprintf("field %q is not a duration", name), Detail: err.Error()}
		}
		return d, nil
	}
	return 0, typeError(name, "number or duration string", v)
}

func typeError(field, want string, got lua.LValue) error {
	return &ParseError{
		Message: fmt.Sprintf("field %q must be a %s", field, want),
		Detail:  fmt.Sprintf("got %s", got.Type()),
	}
}

func prefixField(err error, prefix string) error {
	var pe *ParseError
	if errors.As(err, &pe) {
		return &ParseError{Message: pe.Message + " in " + prefix, Detail: pe.Detail}
	}
	return err
}

// FormatError formats a ParseError for user display.
// In verbose mode, show the raw Lua error. Otherwise, show friendly message.
func FormatError(err error, verbose bool) string {
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if verbose {
			return fmt.Sprintf("%s\n\nDetails:\n%s", parseErr.Message, parseErr.Detail)
		}
		detail := parseErr.Detail
		if idx := strings.Index(detail, "stack traceback"); idx > 0 {
			detail = strings.TrimSpace(detail[:idx])
		}
		return fmt.Sprintf("%s: %s", parseErr.Message, detail)
	}
	return err.Error()
}
