package driver

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// geckoStrategy: <base>/download/<tag>/geckodriver-<tag>-<token>.<ext>,
// where tag is the version with a leading "v". Versions are kept without it.
type geckoStrategy struct {
	base string
}

func (s *geckoStrategy) Family() Family     { return Firefox }
func (s *geckoStrategy) DriverName() string { return "geckodriver" }

func (s *geckoStrategy) ArchiveKind(env *platform.Environment) ArchiveKind {
	if env.IsWindows() {
		return Zip
	}
	return TarGz
}

// NormalizeVersion drops the tag prefix, so "v0.35.0" and "0.35.0" share
// a cache directory.
func (s *geckoStrategy) NormalizeVersion(v string) string {
	return strings.TrimPrefix(strings.TrimSpace(v), "v")
}

func (s *geckoStrategy) DownloadURL(env *platform.Environment, rel Release) string {
	tag := "v" + s.NormalizeVersion(rel.Version)
	return fmt.Sprintf("%s/download/%s/geckodriver-%s-%s.%s",
		s.base, tag, tag, geckoToken(env), s.ArchiveKind(env).Extension())
}

// geckoToken names the platform the way geckodriver release assets do.
func geckoToken(env *platform.Environment) string {
	switch {
	case env.IsMac() && env.IsAppleSilicon():
		return "macos-aarch64"
	case env.IsMac():
		return "macos"
	case env.IsLinux() && env.Arch == "arm64":
		return "linux-aarch64"
	}
	return string(env.OS) + strconv.Itoa(env.Bits)
}

func (s *geckoStrategy) LatestRelease(ctx context.Context, remote Remote, env *platform.Environment) (Release, error) {
	v, err := redirectLatest(ctx, remote, s.base+"/latest")
	if err != nil {
		return Release{}, err
	}
	return Release{Version: s.NormalizeVersion(v)}, nil
}

func (s *geckoStrategy) CatalogSource(env *platform.Environment) (string, catalog.Filter, bool) {
	return "", catalog.Filter{}, false
}
