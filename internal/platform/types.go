// Package platform detects the host environment that driver binaries are
// resolved for: the OS family, the CPU word size and the canonical
// "<os><bits>" token that driver download URLs are named with.
//
// It uses runtime for OS detection and gopsutil for the kernel
// architecture, so a 32-bit build running on a 64-bit kernel still picks
// 64-bit drivers. The environment is also injected as a read-only table
// into the Lua configuration VM.
package platform

import (
	"context"
	"errors"
	"strconv"
)

// OSFamily is the host OS family as driver vendors name it.
type OSFamily string

const (
	OSWindows OSFamily = "win"
	OSLinux   OSFamily = "linux"
	OSMac     OSFamily = "mac"
)

// Linux distribution family constants.
const (
	FamilyDebian  = "debian"  // Debian, Ubuntu, Linux Mint
	FamilyRHEL    = "rhel"    // RHEL, CentOS, Rocky Linux, AlmaLinux
	FamilyFedora  = "fedora"  // Fedora
	FamilySUSE    = "suse"    // openSUSE, SLES
	FamilyArch    = "arch"    // Arch Linux, Manjaro
	FamilyAlpine  = "alpine"  // Alpine Linux
	FamilyUnknown = "unknown" // Unrecognized distributions
)

var (
	// ErrUnsupportedOS is returned for hosts no driver vendor publishes for.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// ErrInvalidArch is returned for an architecture override other than 32 or 64.
	ErrInvalidArch = errors.New("invalid architecture override: must be 32 or 64")
)

// Environment describes the host a driver binary is acquired for.
// It is immutable once returned by a Detector.
type Environment struct {
	OS         OSFamily
	Bits       int    // 32 or 64
	Arch       string // normalized GOARCH ("amd64", "arm64", "386", "arm")
	KernelArch string // raw kernel arch from gopsutil (e.g. "x86_64"), may be empty
	Distro     string // distro ID (Linux only, e.g. "ubuntu")
	Family     string // canonical distro family (Linux only)
	Version    string // distro version (Linux only)
}

// Token returns the canonical OS/arch naming token, e.g. "linux64" or "win32".
func (e *Environment) Token() string {
	return string(e.OS) + strconv.Itoa(e.Bits)
}

// WithBits returns a copy of e with the word size replaced.
func (e *Environment) WithBits(bits int) *Environment {
	cp := *e
	cp.Bits = bits
	return &cp
}

// IsWindows returns true if the host is Windows.
func (e *Environment) IsWindows() bool {
	return e.OS == OSWindows
}

// IsLinux returns true if the host is Linux.
func (e *Environment) IsLinux() bool {
	return e.OS == OSLinux
}

// IsMac returns true if the host is macOS.
func (e *Environment) IsMac() bool {
	return e.OS == OSMac
}

// Is64 returns true for a 64-bit environment.
func (e *Environment) Is64() bool {
	return e.Bits == 64
}

// IsAppleSilicon returns true if running on Apple Silicon (macOS + arm64).
func (e *Environment) IsAppleSilicon() bool {
	return e.OS == OSMac && e.Arch == "arm64"
}

// Detector is the interface for environment detection.
type Detector interface {
	// Detect resolves the host environment. A non-zero archOverride
	// (32 or 64) replaces the detected word size.
	Detect(ctx context.Context, archOverride int) (*Environment, error)
}

// ValidateArch checks an architecture override. Zero means auto-detect.
func ValidateArch(bits int) error {
	switch bits {
	case 0, 32, 64:
		return nil
	default:
		return ErrInvalidArch
	}
}
