package platform

import (
	"fmt"
	"strings"
)

// familyMap maps distribution names to their canonical family names.
// This is used to normalize variations of family strings from gopsutil.
var familyMap = map[string]string{
	"debian":   FamilyDebian,
	"ubuntu":   FamilyDebian,
	"rhel":     FamilyRHEL,
	"centos":   FamilyRHEL,
	"rocky":    FamilyRHEL,
	"fedora":   FamilyFedora,
	"suse":     FamilySUSE,
	"opensuse": FamilySUSE,
	"arch":     FamilyArch,
	"manjaro":  FamilyArch,
	"alpine":   FamilyAlpine,
}

// mapOS converts a GOOS value to the driver vendors' OS family.
func mapOS(goos string) (OSFamily, error) {
	switch goos {
	case "windows":
		return OSWindows, nil
	case "linux":
		return OSLinux, nil
	case "darwin":
		return OSMac, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedOS, goos)
	}
}

// normalizeArch converts GOARCH or kernel arch values to GOARCH names.
// Unknown values are passed through lower-cased.
func normalizeArch(arch string) string {
	switch a := strings.ToLower(strings.TrimSpace(arch)); a {
	case "amd64", "x86_64", "x64":
		return "amd64"
	case "arm64", "aarch64":
		return "arm64"
	case "386", "i386", "i686", "x86":
		return "386"
	case "arm", "armv7l", "armv6l":
		return "arm"
	default:
		return a
	}
}

// archBits returns the word size implied by a normalized arch name.
// Anything naming a 64-bit machine counts as 64.
func archBits(arch string) int {
	if strings.Contains(arch, "64") {
		return 64
	}
	return 32
}

// normalizePlatform converts platform IDs to lowercase for consistency.
func normalizePlatform(platform string) string {
	return strings.ToLower(strings.TrimSpace(platform))
}

// mapFamily maps distribution family strings to canonical family names.
func mapFamily(family string) string {
	normalized := strings.ToLower(strings.TrimSpace(family))
	if canonical, ok := familyMap[normalized]; ok {
		return canonical
	}
	return FamilyUnknown
}
