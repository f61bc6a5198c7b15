// Package driver describes the browser driver families: how each names its
// archives, where it is downloaded from and how its latest release is found.
//
// Every family is one Strategy. A Binary binds a strategy to an environment
// and a release and exposes the derived names the acquisition pipeline
// needs.
package driver

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// Family identifies a driver family.
type Family string

const (
	Chrome  Family = "chrome"
	Firefox Family = "firefox"
	Edge    Family = "edge"
	IE      Family = "ie"
	Opera   Family = "opera"
	Server  Family = "server"
)

// String returns the string representation of the family
func (f Family) String() string {
	return string(f)
}

var families = map[Family]bool{
	Chrome: true, Firefox: true, Edge: true, IE: true, Opera: true, Server: true,
}

// Families returns every supported family in a stable order.
func Families() []Family {
	out := make([]Family, 0, len(families))
	for f := range families {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseFamily maps a user-supplied name to a Family.
func ParseFamily(name string) (Family, error) {
	f := Family(strings.ToLower(strings.TrimSpace(name)))
	switch f {
	case "gecko", "geckodriver":
		f = Firefox
	case "iexplorer", "internetexplorer":
		f = IE
	case "selenium-server", "grid":
		f = Server
	}
	if !families[f] {
		return "", fmt.Errorf("unknown driver family %q", name)
	}
	return f, nil
}

// ArchiveKind is the packaging of a downloaded driver.
type ArchiveKind string

const (
	Zip   ArchiveKind = "zip"
	TarGz ArchiveKind = "tar.gz"
	Jar   ArchiveKind = "jar"
)

// Extension returns the file extension, without the leading dot.
func (k ArchiveKind) Extension() string {
	return string(k)
}

var (
	// ErrMalformedURL is returned when a download URL cannot be built.
	ErrMalformedURL = errors.New("malformed download URL")
	// ErrNoRelease is returned when a latest-version lookup answers with nothing usable.
	ErrNoRelease = errors.New("no release found")
	// ErrReleaseSet is returned when a binary's release is set twice.
	ErrReleaseSet = errors.New("release already set")
)

// Release is a concrete driver version. Path, when known, is the exact
// remote entry (relative to the family endpoint) the version was listed
// under and takes precedence over the URL template.
type Release struct {
	Version string
	Path    string
}

// Remote is the HTTP surface latest-version lookups need. *fetch.Client
// satisfies it.
type Remote interface {
	Bytes(ctx context.Context, url string) ([]byte, error)
	RedirectLocation(ctx context.Context, url string) (string, error)
}

// Strategy is the per-family naming and lookup contract.
type Strategy interface {
	Family() Family
	DriverName() string
	ArchiveKind(env *platform.Environment) ArchiveKind
	// DownloadURL formats the archive URL for rel. The result is validated
	// by Binary.
	DownloadURL(env *platform.Environment, rel Release) string
	// LatestRelease asks the vendor for its newest release.
	LatestRelease(ctx context.Context, remote Remote, env *platform.Environment) (Release, error)
	// CatalogSource returns the listing used for browser-compatible
	// resolution. ok is false for families without one.
	CatalogSource(env *platform.Environment) (listingURL string, filter catalog.Filter, ok bool)
}

// environmentAdjuster is implemented by strategies that publish for a
// different word size than the host's unless the caller overrides it.
type environmentAdjuster interface {
	AdjustEnvironment(env *platform.Environment, archOverridden bool) *platform.Environment
}

// executableOSer is implemented by strategies whose download targets a
// different OS than the host, which decides the executable suffix.
type executableOSer interface {
	ExecutableOS(env *platform.Environment) platform.OSFamily
}

// versionNormalizer is implemented by strategies whose releases are
// spelled more than one way, so the cache directory stays stable.
type versionNormalizer interface {
	NormalizeVersion(v string) string
}

// Endpoints holds the base URL of every family.
type Endpoints struct {
	Chrome  string
	Firefox string
	Edge    string
	IE      string
	Opera   string
	Server  string
}

// DefaultEndpoints returns the production vendor endpoints.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Chrome:  "https://chromedriver.storage.googleapis.com",
		Firefox: "https://github.com/mozilla/geckodriver/releases",
		Edge:    "https://msedgedriver.azureedge.net",
		IE:      "https://selenium-release.storage.googleapis.com",
		Opera:   "https://github.com/operasoftware/operachromiumdriver/releases",
		Server:  "https://selenium-release.storage.googleapis.com",
	}
}

// For returns the base URL of f.
func (e Endpoints) For(f Family) string {
	switch f {
	case Chrome:
		return e.Chrome
	case Firefox:
		return e.Firefox
	case Edge:
		return e.Edge
	case IE:
		return e.IE
	case Opera:
		return e.Opera
	case Server:
		return e.Server
	}
	return ""
}

// Set replaces the base URL of f. The URL must be absolute.
func (e *Endpoints) Set(f Family, base string) error {
	if err := validateURL(base); err != nil {
		return fmt.Errorf("endpoint for %s: %w", f, err)
	}
	base = strings.TrimRight(base, "/")
	switch f {
	case Chrome:
		e.Chrome = base
	case Firefox:
		e.Firefox = base
	case Edge:
		e.Edge = base
	case IE:
		e.IE = base
	case Opera:
		e.Opera = base
	case Server:
		e.Server = base
	default:
		return fmt.Errorf("unknown driver family %q", f)
	}
	return nil
}

// NewStrategy returns the strategy for f using the endpoints in ep.
func NewStrategy(f Family, ep Endpoints) (Strategy, error) {
	base := strings.TrimRight(ep.For(f), "/")
	if err := validateURL(base); err != nil {
		return nil, fmt.Errorf("endpoint for %s: %w", f, err)
	}

	switch f {
	case Chrome:
		return &chromeStrategy{base: base}, nil
	case Firefox:
		return &geckoStrategy{base: base}, nil
	case Edge:
		return &edgeStrategy{base: base}, nil
	case IE:
		return &ieStrategy{base: base}, nil
	case Opera:
		return &operaStrategy{base: base}, nil
	case Server:
		return &serverStrategy{base: base}, nil
	}
	return nil, fmt.Errorf("unknown driver family %q", f)
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrMalformedURL, raw)
	}
	return nil
}
