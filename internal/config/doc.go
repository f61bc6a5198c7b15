// Package config loads wdb settings.
//
// Settings come from three layers, later layers winning:
//
//  1. a Lua file (wdb.lua) evaluated in a sandboxed gopher-lua VM with a
//     read-only platform table describing the host
//  2. WDB_* environment variables, optionally seeded from a .env file
//  3. command-line flags, applied by the caller
//
// A minimal file:
//
//	wdb = {
//	    root = "/var/cache/wdb",
//	    timeout = "90s",
//	    drivers = {
//	        chrome = { version = "114.0.5735.90" },
//	        firefox = { arch = platform.bits },
//	    },
//	}
//
// Every field is optional. Missing fields keep the values from Default.
package config
