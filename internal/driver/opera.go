package driver

import (
	"context"
	"fmt"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// operaStrategy: <base>/download/<v>/operadriver_<token>.zip
type operaStrategy struct {
	base string
}

func (s *operaStrategy) Family() Family     { return Opera }
func (s *operaStrategy) DriverName() string { return "operadriver" }

func (s *operaStrategy) ArchiveKind(env *platform.Environment) ArchiveKind {
	return Zip
}

func (s *operaStrategy) DownloadURL(env *platform.Environment, rel Release) string {
	return fmt.Sprintf("%s/download/%s/operadriver_%s.zip", s.base, rel.Version, env.Token())
}

func (s *operaStrategy) LatestRelease(ctx context.Context, remote Remote, env *platform.Environment) (Release, error) {
	v, err := redirectLatest(ctx, remote, s.base+"/latest")
	if err != nil {
		return Release{}, err
	}
	return Release{Version: v}, nil
}

func (s *operaStrategy) CatalogSource(env *platform.Environment) (string, catalog.Filter, bool) {
	return "", catalog.Filter{}, false
}
