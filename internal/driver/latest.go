package driver

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/version"
)

var nonVersionChars = regexp.MustCompile(`[^A-Za-z0-9_.]`)

// plainTextLatest reads a version from a "LATEST" text file.
func plainTextLatest(ctx context.Context, remote Remote, url string) (string, error) {
	body, err := remote.Bytes(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch latest version: %w", err)
	}
	v := strings.TrimSpace(string(body))
	if v == "" {
		return "", fmt.Errorf("%w at %s", ErrNoRelease, url)
	}
	return v, nil
}

// sanitizeVersion drops everything but [A-Za-z0-9_.], which also removes
// UTF-16 byte order marks and NUL padding.
func sanitizeVersion(raw string) string {
	return nonVersionChars.ReplaceAllString(raw, "")
}

// redirectLatest returns the last path segment of the redirect target of url.
func redirectLatest(ctx context.Context, remote Remote, url string) (string, error) {
	location, err := remote.RedirectLocation(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch latest release: %w", err)
	}
	location = strings.TrimRight(location, "/")
	i := strings.LastIndex(location, "/")
	if len(location) < 2 || i < 0 || i == len(location)-1 {
		return "", fmt.Errorf("%w: no redirect from %s", ErrNoRelease, url)
	}
	return location[i+1:], nil
}

// scrapeLatest picks the highest version among listing entries that contain
// matcher. Entries look like "<dir>/<matcher>[_-]<version>.<ext>".
func scrapeLatest(ctx context.Context, remote Remote, url, matcher string, kind ArchiveKind) (Release, error) {
	body, err := remote.Bytes(ctx, url)
	if err != nil {
		return Release{}, fmt.Errorf("fetch release listing: %w", err)
	}
	entries, err := catalog.ParseEntries(body)
	if err != nil {
		return Release{}, fmt.Errorf("%w: %v", ErrNoRelease, err)
	}

	var best Release
	for _, entry := range entries {
		_, file, ok := strings.Cut(entry, "/")
		if !ok || !strings.HasPrefix(file, matcher) {
			continue
		}
		v := strings.TrimSuffix(strings.TrimPrefix(file, matcher), "."+kind.Extension())
		v = strings.TrimLeft(v, "_-")
		if v == "" {
			continue
		}
		if best.Version == "" || version.Compare(v, best.Version) > 0 {
			best = Release{Version: v, Path: entry}
		}
	}

	if best.Version == "" {
		return Release{}, fmt.Errorf("%w: no %s entries at %s", ErrNoRelease, matcher, url)
	}
	return best, nil
}

// majorMinor returns the first two dot-separated components of v.
func majorMinor(v string) string {
	parts := strings.SplitN(v, ".", 3)
	if len(parts) < 2 {
		return v
	}
	return parts[0] + "." + parts[1]
}
