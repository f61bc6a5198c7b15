package driver

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// chromeStrategy: <base>/<v>/chromedriver_<token>.zip
type chromeStrategy struct {
	base string
}

func (s *chromeStrategy) Family() Family     { return Chrome }
func (s *chromeStrategy) DriverName() string { return "chromedriver" }

func (s *chromeStrategy) ArchiveKind(env *platform.Environment) ArchiveKind {
	return Zip
}

// AdjustEnvironment selects the 32-bit build on Windows unless the
// architecture was overridden.
func (s *chromeStrategy) AdjustEnvironment(env *platform.Environment, archOverridden bool) *platform.Environment {
	if env.IsWindows() && !archOverridden {
		return env.WithBits(32)
	}
	return env
}

func (s *chromeStrategy) DownloadURL(env *platform.Environment, rel Release) string {
	if rel.Path != "" {
		return s.base + "/" + rel.Path
	}
	return fmt.Sprintf("%s/%s/chromedriver_%s.zip", s.base, rel.Version, env.Token())
}

func (s *chromeStrategy) LatestRelease(ctx context.Context, remote Remote, env *platform.Environment) (Release, error) {
	v, err := plainTextLatest(ctx, remote, s.base+"/LATEST_RELEASE")
	if err != nil {
		return Release{}, err
	}
	return Release{Version: v}, nil
}

func (s *chromeStrategy) CatalogSource(env *platform.Environment) (string, catalog.Filter, bool) {
	return s.base, catalog.Filter{Prefix: "chromedriver_", Token: env.Token()}, true
}
