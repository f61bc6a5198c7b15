package driver

import (
	"context"
	"fmt"
	"strings"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// Binary is one acquisition's view of a driver: a strategy bound to an
// environment and, once chosen, a release. The release is set exactly once.
type Binary struct {
	strategy Strategy
	env      *platform.Environment
	release  Release
	released bool
}

// NewBinary binds s to env. archOverridden reports whether the caller
// forced the word size, which some families need to pick their default build.
func NewBinary(s Strategy, env *platform.Environment, archOverridden bool) *Binary {
	if adj, ok := s.(environmentAdjuster); ok {
		env = adj.AdjustEnvironment(env, archOverridden)
	}
	return &Binary{strategy: s, env: env}
}

// Family returns the driver family.
func (b *Binary) Family() Family { return b.strategy.Family() }

// DriverName returns the vendor's executable base name.
func (b *Binary) DriverName() string { return b.strategy.DriverName() }

// Environment returns the environment the binary is built for.
func (b *Binary) Environment() *platform.Environment { return b.env }

// ArchiveKind returns the packaging of the download.
func (b *Binary) ArchiveKind() ArchiveKind { return b.strategy.ArchiveKind(b.env) }

// SetRelease fixes the release. A second call fails with ErrReleaseSet.
func (b *Binary) SetRelease(rel Release) error {
	if b.released {
		return fmt.Errorf("%w: %s already at %s", ErrReleaseSet, b.Family(), b.release.Version)
	}
	if n, ok := b.strategy.(versionNormalizer); ok {
		rel.Version = n.NormalizeVersion(rel.Version)
	}
	if strings.TrimSpace(rel.Version) == "" {
		return fmt.Errorf("%w: empty version for %s", ErrNoRelease, b.Family())
	}
	b.release = rel
	b.released = true
	return nil
}

// Release returns the release and whether it has been set.
func (b *Binary) Release() (Release, bool) {
	return b.release, b.released
}

// Version returns the release version, or "" before SetRelease.
func (b *Binary) Version() string {
	return b.release.Version
}

// DownloadURL returns the validated archive URL for the release.
func (b *Binary) DownloadURL() (string, error) {
	if !b.released {
		return "", fmt.Errorf("%w: %s has no release", ErrMalformedURL, b.Family())
	}
	raw := b.strategy.DownloadURL(b.env, b.release)
	if err := validateURL(raw); err != nil {
		return "", err
	}
	return raw, nil
}

// LatestRelease asks the vendor for its newest release. It does not set it.
func (b *Binary) LatestRelease(ctx context.Context, remote Remote) (Release, error) {
	return b.strategy.LatestRelease(ctx, remote, b.env)
}

// CatalogSource returns the listing used to match an installed browser.
func (b *Binary) CatalogSource() (string, catalog.Filter, bool) {
	return b.strategy.CatalogSource(b.env)
}

// ExecutableOS returns the OS the downloaded build targets. It is the
// host OS unless the family ships a foreign build.
func (b *Binary) ExecutableOS() platform.OSFamily {
	if e, ok := b.strategy.(executableOSer); ok {
		return e.ExecutableOS(b.env)
	}
	return b.env.OS
}

// FileName returns the name of the executable on disk.
func (b *Binary) FileName() string {
	switch {
	case b.ArchiveKind() == Jar:
		return b.DriverName() + ".jar"
	case b.ExecutableOS() == platform.OSWindows:
		return b.DriverName() + ".exe"
	}
	return b.DriverName()
}

// DirectoryName returns the per-version cache directory name.
func (b *Binary) DirectoryName() string {
	return strings.ToLower(b.DriverName()) + "_" + b.release.Version
}

// CompressedFileName returns the name the download is stored under.
func (b *Binary) CompressedFileName() string {
	return b.DirectoryName() + "." + b.ArchiveKind().Extension()
}

// PropertyKey returns the process-state key the binary path is bound to.
func (b *Binary) PropertyKey() string {
	return "webdriver." + string(b.Family()) + ".driver"
}
