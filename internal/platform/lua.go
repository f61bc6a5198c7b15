package platform

import (
	lua "github.com/yuin/gopher-lua"
)

// InjectPlatformTable creates a read-only platform table and injects it into
// the Lua state as a global. This should be called before loading any user
// configuration code.
func InjectPlatformTable(L *lua.LState, env *Environment) error {
	platformTable := L.NewTable()

	L.SetField(platformTable, "os", lua.LString(env.OS))
	L.SetField(platformTable, "bits", lua.LNumber(env.Bits))
	L.SetField(platformTable, "token", lua.LString(env.Token()))
	L.SetField(platformTable, "arch", lua.LString(env.Arch))
	L.SetField(platformTable, "kernel_arch", lua.LString(env.KernelArch))

	L.SetField(platformTable, "is_linux", lua.LBool(env.IsLinux()))
	L.SetField(platformTable, "is_macos", lua.LBool(env.IsMac()))
	L.SetField(platformTable, "is_windows", lua.LBool(env.IsWindows()))
	L.SetField(platformTable, "is_64", lua.LBool(env.Is64()))
	L.SetField(platformTable, "is_apple_silicon", lua.LBool(env.IsAppleSilicon()))

	// Linux distribution (nil elsewhere)
	if env.IsLinux() && env.Distro != "" {
		distroTable := L.NewTable()
		L.SetField(distroTable, "id", lua.LString(env.Distro))
		L.SetField(distroTable, "family", lua.LString(env.Family))
		L.SetField(distroTable, "version", lua.LString(env.Version))
		L.SetField(platformTable, "distro", distroTable)
	} else {
		L.SetField(platformTable, "distro", lua.LNil)
	}

	// when(condition, value) returns value if condition is true, nil otherwise
	whenFunc := L.NewFunction(func(L *lua.LState) int {
		cond := L.CheckBool(1)
		value := L.Get(2)
		if cond {
			L.Push(value)
		} else {
			L.Push(lua.LNil)
		}
		return 1
	})
	L.SetField(platformTable, "when", whenFunc)

	L.SetGlobal("platform", makeReadOnly(L, platformTable))

	return nil
}

// makeReadOnly makes a Lua table read-only by creating a proxy table with a metatable.
// The proxy redirects reads to the original table but prevents all writes.
func makeReadOnly(L *lua.LState, table *lua.LTable) *lua.LTable {
	mt := L.NewTable()

	L.SetField(mt, "__index", table)
	L.SetField(mt, "__newindex", L.NewFunction(func(L *lua.LState) int {
		L.RaiseError("platform table is read-only and cannot be modified")
		return 0
	}))
	L.SetField(mt, "__metatable", lua.LString("protected"))

	proxy := L.NewTable()
	L.SetMetatable(proxy, mt)

	return proxy
}
