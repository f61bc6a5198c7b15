package driver

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// ieStrategy: <base>/<major.minor>/IEDriverServer_<x64|Win32>_<v>.zip.
// Latest releases are scraped from the bucket listing and keep the exact
// entry path they were found under.
type ieStrategy struct {
	base string
}

func (s *ieStrategy) Family() Family     { return IE }
func (s *ieStrategy) DriverName() string { return "IEDriverServer" }

func (s *ieStrategy) ArchiveKind(env *platform.Environment) ArchiveKind {
	return Zip
}

func (s *ieStrategy) matcher(env *platform.Environment) string {
	if env.Is64() {
		return "IEDriverServer_x64"
	}
	return "IEDriverServer_Win32"
}

func (s *ieStrategy) DownloadURL(env *platform.Environment, rel Release) string {
	if rel.Path != "" {
		return s.base + "/" + rel.Path
	}
	return fmt.Sprintf("%s/%s/%s_%s.zip", s.base, majorMinor(rel.Version), s.matcher(env), rel.Version)
}

func (s *ieStrategy) LatestRelease(ctx context.Context, remote Remote, env *platform.Environment) (Release, error) {
	return scrapeLatest(ctx, remote, s.base, s.matcher(env), Zip)
}

func (s *ieStrategy) CatalogSource(env *platform.Environment) (string, catalog.Filter, bool) {
	return "", catalog.Filter{}, false
}
