package driver

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

const serverJarPrefix = "selenium-server-standalone"

// serverStrategy: <base>/<major.minor>/selenium-server-standalone-<v>.jar.
// The jar is used as downloaded; there is nothing to extract.
type serverStrategy struct {
	base string
}

func (s *serverStrategy) Family() Family     { return Server }
func (s *serverStrategy) DriverName() string { return "selenium-server" }

func (s *serverStrategy) ArchiveKind(env *platform.Environment) ArchiveKind {
	return Jar
}

func (s *serverStrategy) DownloadURL(env *platform.Environment, rel Release) string {
	if rel.Path != "" {
		return s.base + "/" + rel.Path
	}
	return fmt.Sprintf("%s/%s/%s-%s.jar", s.base, majorMinor(rel.Version), serverJarPrefix, rel.Version)
}

func (s *serverStrategy) LatestRelease(ctx context.Context, remote Remote, env *platform.Environment) (Release, error) {
	return scrapeLatest(ctx, remote, s.base, serverJarPrefix, Jar)
}

func (s *serverStrategy) CatalogSource(env *platform.Environment) (string, catalog.Filter, bool) {
	return "", catalog.Filter{}, false
}
