package platform

import (
	"context"
	"fmt"
	"runtime"

	"github.com/shirou/gopsutil/v4/host"
)

// RealDetector implements Detector using actual platform detection.
type RealDetector struct {
	goos   string
	goarch string

	kernelArch   func(ctx context.Context) (string, error)
	platformInfo func(ctx context.Context) (platform, family, version string, err error)
}

// NewDetector creates a new environment detector for the running host.
func NewDetector() Detector {
	return &RealDetector{
		goos:   runtime.GOOS,
		goarch: runtime.GOARCH,
		kernelArch: func(ctx context.Context) (string, error) {
			return host.KernelArch()
		},
		platformInfo: host.PlatformInformationWithContext,
	}
}

// Detect performs environment detection.
//
// The word size is 64 if either the process architecture or the kernel
// architecture reported by gopsutil is 64-bit, so a 32-bit build on a
// 64-bit kernel still resolves 64-bit drivers. Kernel and distro lookups
// are best effort: failures fall back to runtime values. An unsupported
// OS or an invalid override is a configuration error.
func (d *RealDetector) Detect(ctx context.Context, archOverride int) (*Environment, error) {
	if err := ValidateArch(archOverride); err != nil {
		return nil, err
	}

	osFamily, err := mapOS(d.goos)
	if err != nil {
		return nil, fmt.Errorf("environment detection failed: %w", err)
	}

	env := &Environment{
		OS:   osFamily,
		Arch: normalizeArch(d.goarch),
	}
	env.Bits = archBits(env.Arch)

	if d.kernelArch != nil {
		kernel, err := d.kernelArch(ctx)
		if err != nil && ctx.Err() != nil {
			return nil, fmt.Errorf("environment detection cancelled: %w", ctx.Err())
		}
		if err == nil && kernel != "" {
			env.KernelArch = kernel
			if archBits(normalizeArch(kernel)) == 64 {
				env.Bits = 64
			}
		}
	}

	if archOverride != 0 {
		env.Bits = archOverride
	}

	// Distro details only feed the Lua platform table; failures are ignored
	if osFamily == OSLinux && d.platformInfo != nil {
		platform, family, version, err := d.platformInfo(ctx)
		if err == nil {
			platform = normalizePlatform(platform)
			if platform != "" {
				env.Distro = platform
				env.Family = mapFamily(family)
				env.Version = normalizePlatform(version)
			}
		}
	}

	return env, nil
}

// StaticDetector returns a fixed environment, honouring the override.
// It is used by tests and by callers that target a foreign host.
type StaticDetector struct {
	Env *Environment
	Err error
}

// Detect returns the configured environment.
func (s *StaticDetector) Detect(ctx context.Context, archOverride int) (*Environment, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if err := ValidateArch(archOverride); err != nil {
		return nil, err
	}
	if archOverride != 0 {
		return s.Env.WithBits(archOverride), nil
	}
	cp := *s.Env
	return &cp, nil
}
