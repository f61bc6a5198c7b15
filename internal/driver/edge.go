package driver

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// edgeStrategy: <base>/<v>/edgedriver_<token>.zip. Linux hosts get the
// Windows build, so the token there is win<bits>.
type edgeStrategy struct {
	base string
}

func (s *edgeStrategy) Family() Family     { return Edge }
func (s *edgeStrategy) DriverName() string { return "msedgedriver" }

func (s *edgeStrategy) ArchiveKind(env *platform.Environment) ArchiveKind {
	return Zip
}

// ExecutableOS reports the Windows build on Linux hosts, so the
// executable keeps its .exe suffix.
func (s *edgeStrategy) ExecutableOS(env *platform.Environment) platform.OSFamily {
	if env.IsLinux() {
		return platform.OSWindows
	}
	return env.OS
}

func (s *edgeStrategy) token(env *platform.Environment) string {
	return string(s.ExecutableOS(env)) + strconv.Itoa(env.Bits)
}

func (s *edgeStrategy) DownloadURL(env *platform.Environment, rel Release) string {
	if rel.Path != "" {
		return s.base + "/" + rel.Path
	}
	return fmt.Sprintf("%s/%s/edgedriver_%s.zip", s.base, rel.Version, s.token(env))
}

func (s *edgeStrategy) LatestRelease(ctx context.Context, remote Remote, env *platform.Environment) (Release, error) {
	url := s.base + "/LATEST_STABLE"
	raw, err := plainTextLatest(ctx, remote, url)
	if err != nil {
		return Release{}, err
	}
	v := sanitizeVersion(raw)
	if v == "" {
		return Release{}, fmt.Errorf("%w at %s", ErrNoRelease, url)
	}
	return Release{Version: v}, nil
}

func (s *edgeStrategy) CatalogSource(env *platform.Environment) (string, catalog.Filter, bool) {
	return s.base, catalog.Filter{Prefix: "edgedriver_", Token: s.token(env)}, true
}
