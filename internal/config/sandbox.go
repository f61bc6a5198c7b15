package config

import (
	lua "github.com/yuin/gopher-lua"
)

// blockedGlobals are removed from every config VM. A config file only
// assigns the wdb table, so it needs no process, filesystem or loader
// access. string, table and math stay available.
var blockedGlobals = []string{
	"os",
	"io",
	"require",
	"dofile",
	"loadfile",
	"load",
	"loadstring",
	"debug",
}

// sandboxLuaVM strips the blocked globals from L.
func sandboxLuaVM(L *lua.LState) {
	for _, name := range blockedGlobals {
		L.SetGlobal(name, lua.LNil)
	}
}

// newSandboxedVM returns a fresh Lua state with the sandbox applied.
func newSandboxedVM() *lua.LState {
	L := lua.NewState()
	sandboxLuaVM(L)
	return L
}
