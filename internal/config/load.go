package config

import (
	"context"

	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// Load evaluates the Lua file at luaPath and applies environment
// overrides, reading dotenvPath first. Either path may be missing.
func Load(ctx context.Context, detector platform.Detector, luaPath, dotenvPath string) (*Config, error) {
	cfg, err := NewParser(detector).ParseFile(ctx, luaPath)
	if err != nil {
		return nil, err
	}
	lookup, err := LoadEnv(dotenvPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
