package config

import (
	"strings"
	"testing"

	lua "github.com/yuin/gopher-lua"
)

func TestSandboxLuaVM_Blocked(t *testing.T) {
	tests := []struct {
		name   string
		code   string
		errMsg string
	}{
		{"os.execute", `os.execute("ls")`, "attempt to index"},
		{"os.getenv", `x = os.getenv("HOME")`, "attempt to index"},
		{"io.open", `f = io.open("/etc/passwd")`, "attempt to index"},
		{"io.popen", `f = io.popen("id")`, "attempt to index"},
		{"require", `m = require("socket")`, "attempt to call"},
		{"dofile", `dofile("/tmp/x.lua")`, "attempt to call"},
		{"loadfile", `f = loadfile("/tmp/x.lua")`, "attempt to call"},
		{"load", `f = load("return 1")`, "attempt to call"},
		{"loadstring", `f = loadstring("return 1")`, "attempt to call"},
		{"debug", `debug.getinfo(1)`, "attempt to index"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			L := newSandboxedVM()
			defer L.Close()

			err := L.DoString(tt.code)
			if err == nil {
				t.Fatalf("DoString(%q) succeeded, want error", tt.code)
			}
			if !strings.Contains(err.Error(), tt.errMsg) {
				t.Errorf("DoString(%q) error = %v, want substring %q", tt.code, err, tt.errMsg)
			}
		})
	}
}

func TestSandboxLuaVM_SafeLibraries(t *testing.T) {
	L := newSandboxedVM()
	defer L.Close()

	code := `
		t = {"a", "b"}
		table.insert(t, "c")
		joined = table.concat(t, ",")
		upper = string.upper("chrome")
		secs = math.floor(90.7)
		kind = type(tonumber("3"))
	`
	if err := L.DoString(code); err != nil {
		t.Fatalf("safe libraries failed: %v", err)
	}

	checks := map[string]string{
		"joined": "a,b,c",
		"upper":  "CHROME",
		"secs":   "90",
		"kind":   "number",
	}
	for name, want := range checks {
		if got := L.GetGlobal(name).String(); got != want {
			t.Errorf("%s = %q, want %q", name, got, want)
		}
	}
}

func TestNewSandboxedVM(t *testing.T) {
	L := newSandboxedVM()
	defer L.Close()

	for _, name := range blockedGlobals {
		if v := L.GetGlobal(name); v.Type() != lua.LTNil {
			t.Errorf("global %s = %v, want nil", name, v.Type())
		}
	}
	if v := L.GetGlobal("string"); v.Type() != lua.LTTable {
		t.Errorf("global string = %v, want table", v.Type())
	}
}
