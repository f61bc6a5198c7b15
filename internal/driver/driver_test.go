package driver

import (
	"context"
	"errors"
	"testing"

	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

var (
	linux64  = &platform.Environment{OS: platform.OSLinux, Bits: 64, Arch: "amd64"}
	linuxArm = &platform.Environment{OS: platform.OSLinux, Bits: 64, Arch: "arm64"}
	win64    = &platform.Environment{OS: platform.OSWindows, Bits: 64, Arch: "amd64"}
	win32    = &platform.Environment{OS: platform.OSWindows, Bits: 32, Arch: "386"}
	mac64    = &platform.Environment{OS: platform.OSMac, Bits: 64, Arch: "amd64"}
	macArm   = &platform.Environment{OS: platform.OSMac, Bits: 64, Arch: "arm64"}
)

// fakeRemote serves canned bodies and redirect targets keyed by URL.
type fakeRemote struct {
	bodies    map[string]string
	redirects map[string]string
	err       error
}

func (f *fakeRemote) Bytes(ctx context.Context, url string) ([]byte, error) {
	if f.err != nil {
		return nil, f.err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, errors.New("unexpected status code: 404")
	}
	return []byte(body), nil
}

func (f *fakeRemote) RedirectLocation(ctx context.Context, url string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.redirects[url], nil
}

func mustBinary(t *testing.T, f Family, env *platform.Environment, overridden bool, v string) *Binary {
	t.Helper()
	s, err := NewStrategy(f, DefaultEndpoints())
	if err != nil {
		t.Fatalf("NewStrategy(%s) error = %v", f, err)
	}
	b := NewBinary(s, env, overridden)
	if v != "" {
		if err := b.SetRelease(Release{Version: v}); err != nil {
			t.Fatalf("SetRelease() error = %v", err)
		}
	}
	return b
}

func TestBinary_DownloadURL(t *testing.T) {
	tests := []struct {
		name       string
		family     Family
		env        *platform.Environment
		overridden bool
		version    string
		want       string
	}{
		{
			name: "chrome_linux", family: Chrome, env: linux64, version: "91.0.4472.101",
			want: "https://chromedriver.storage.googleapis.com/91.0.4472.101/chromedriver_linux64.zip",
		},
		{
			name: "chrome_windows_defaults_to_32", family: Chrome, env: win64, version: "91.0.4472.101",
			want: "https://chromedriver.storage.googleapis.com/91.0.4472.101/chromedriver_win32.zip",
		},
		{
			name: "chrome_windows_override_kept", family: Chrome, env: win64, overridden: true, version: "91.0.4472.101",
			want: "https://chromedriver.storage.googleapis.com/91.0.4472.101/chromedriver_win64.zip",
		},
		{
			name: "chrome_mac", family: Chrome, env: mac64, version: "2.46",
			want: "https://chromedriver.storage.googleapis.com/2.46/chromedriver_mac64.zip",
		},
		{
			name: "gecko_linux", family: Firefox, env: linux64, version: "v0.30.0",
			want: "https://github.com/mozilla/geckodriver/releases/download/v0.30.0/geckodriver-v0.30.0-linux64.tar.gz",
		},
		{
			name: "gecko_adds_tag_prefix", family: Firefox, env: linux64, version: "0.30.0",
			want: "https://github.com/mozilla/geckodriver/releases/download/v0.30.0/geckodriver-v0.30.0-linux64.tar.gz",
		},
		{
			name: "gecko_windows_zip", family: Firefox, env: win32, version: "v0.30.0",
			want: "https://github.com/mozilla/geckodriver/releases/download/v0.30.0/geckodriver-v0.30.0-win32.zip",
		},
		{
			name: "gecko_mac", family: Firefox, env: mac64, version: "v0.30.0",
			want: "https://github.com/mozilla/geckodriver/releases/download/v0.30.0/geckodriver-v0.30.0-macos.tar.gz",
		},
		{
			name: "gecko_apple_silicon", family: Firefox, env: macArm, version: "v0.30.0",
			want: "https://github.com/mozilla/geckodriver/releases/download/v0.30.0/geckodriver-v0.30.0-macos-aarch64.tar.gz",
		},
		{
			name: "gecko_linux_arm", family: Firefox, env: linuxArm, version: "v0.34.0",
			want: "https://github.com/mozilla/geckodriver/releases/download/v0.34.0/geckodriver-v0.34.0-linux-aarch64.tar.gz",
		},
		{
			name: "edge_linux_uses_windows_build", family: Edge, env: linux64, version: "92.0.902.9",
			want: "https://msedgedriver.azureedge.net/92.0.902.9/edgedriver_win64.zip",
		},
		{
			name: "edge_windows", family: Edge, env: win32, version: "92.0.902.9",
			want: "https://msedgedriver.azureedge.net/92.0.902.9/edgedriver_win32.zip",
		},
		{
			name: "edge_mac", family: Edge, env: mac64, version: "92.0.902.9",
			want: "https://msedgedriver.azureedge.net/92.0.902.9/edgedriver_mac64.zip",
		},
		{
			name: "ie_64", family: IE, env: win64, version: "3.150.1",
			want: "https://selenium-release.storage.googleapis.com/3.150/IEDriverServer_x64_3.150.1.zip",
		},
		{
			name: "ie_32", family: IE, env: win32, version: "3.150.1",
			want: "https://selenium-release.storage.googleapis.com/3.150/IEDriverServer_Win32_3.150.1.zip",
		},
		{
			name: "opera", family: Opera, env: linux64, version: "v.96.0.4664.45",
			want: "https://github.com/operasoftware/operachromiumdriver/releases/download/v.96.0.4664.45/operadriver_linux64.zip",
		},
		{
			name: "server_jar", family: Server, env: linux64, version: "3.141.59",
			want: "https://selenium-release.storage.googleapis.com/3.141/selenium-server-standalone-3.141.59.jar",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBinary(t, tt.family, tt.env, tt.overridden, tt.version)
			got, err := b.DownloadURL()
			if err != nil {
				t.Fatalf("DownloadURL() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("DownloadURL() =\n%s\nwant\n%s", got, tt.want)
			}
		})
	}
}

func TestBinary_Names(t *testing.T) {
	tests := []struct {
		name           string
		family         Family
		env            *platform.Environment
		version        string
		wantKind       ArchiveKind
		wantFile       string
		wantDir        string
		wantCompressed string
		wantKey        string
	}{
		{"chrome_linux", Chrome, linux64, "91.0", Zip, "chromedriver", "chromedriver_91.0", "chromedriver_91.0.zip", "webdriver.chrome.driver"},
		{"chrome_windows", Chrome, win64, "91.0", Zip, "chromedriver.exe", "chromedriver_91.0", "chromedriver_91.0.zip", "webdriver.chrome.driver"},
		{"gecko_linux", Firefox, linux64, "v0.30.0", TarGz, "geckodriver", "geckodriver_0.30.0", "geckodriver_0.30.0.tar.gz", "webdriver.firefox.driver"},
		{"gecko_windows", Firefox, win64, "0.30.0", Zip, "geckodriver.exe", "geckodriver_0.30.0", "geckodriver_0.30.0.zip", "webdriver.firefox.driver"},
		{"ie", IE, win64, "3.150.1", Zip, "IEDriverServer.exe", "iedriverserver_3.150.1", "iedriverserver_3.150.1.zip", "webdriver.ie.driver"},
		{"edge_mac", Edge, mac64, "92.0", Zip, "msedgedriver", "msedgedriver_92.0", "msedgedriver_92.0.zip", "webdriver.edge.driver"},
		{"edge_linux_windows_build", Edge, linux64, "92.0", Zip, "msedgedriver.exe", "msedgedriver_92.0", "msedgedriver_92.0.zip", "webdriver.edge.driver"},
		{"server_windows", Server, win64, "3.141.59", Jar, "selenium-server.jar", "selenium-server_3.141.59", "selenium-server_3.141.59.jar", "webdriver.server.driver"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustBinary(t, tt.family, tt.env, false, tt.version)
			if got := b.ArchiveKind(); got != tt.wantKind {
				t.Errorf("ArchiveKind() = %s, want %s", got, tt.wantKind)
			}
			if got := b.FileName(); got != tt.wantFile {
				t.Errorf("FileName() = %s, want %s", got, tt.wantFile)
			}
			if got := b.DirectoryName(); got != tt.wantDir {
				t.Errorf("DirectoryName() = %s, want %s", got, tt.wantDir)
			}
			if got := b.CompressedFileName(); got != tt.wantCompressed {
				t.Errorf("CompressedFileName() = %s, want %s", got, tt.wantCompressed)
			}
			if got := b.PropertyKey(); got != tt.wantKey {
				t.Errorf("PropertyKey() = %s, want %s", got, tt.wantKey)
			}
		})
	}
}

func TestBinary_GeckoTagSpellingsShareCache(t *testing.T) {
	plain := mustBinary(t, Firefox, linux64, false, "0.35.0")
	tagged := mustBinary(t, Firefox, linux64, false, "v0.35.0")

	if plain.Version() != "0.35.0" || tagged.Version() != "0.35.0" {
		t.Errorf("Version() = %q and %q, want 0.35.0 for both", plain.Version(), tagged.Version())
	}
	if plain.DirectoryName() != tagged.DirectoryName() {
		t.Errorf("DirectoryName() = %q and %q, want equal", plain.DirectoryName(), tagged.DirectoryName())
	}
	u1, err1 := plain.DownloadURL()
	u2, err2 := tagged.DownloadURL()
	if err1 != nil || err2 != nil || u1 != u2 {
		t.Errorf("DownloadURL() = %q (%v) and %q (%v), want equal", u1, err1, u2, err2)
	}

	bare := mustBinary(t, Firefox, linux64, false, "")
	if err := bare.SetRelease(Release{Version: "v"}); !errors.Is(err, ErrNoRelease) {
		t.Errorf("SetRelease(v) error = %v, want ErrNoRelease", err)
	}
}

func TestBinary_ExecutableOS(t *testing.T) {
	tests := []struct {
		family Family
		env    *platform.Environment
		want   platform.OSFamily
	}{
		{Edge, linux64, platform.OSWindows},
		{Edge, mac64, platform.OSMac},
		{Edge, win64, platform.OSWindows},
		{Chrome, linux64, platform.OSLinux},
		{Firefox, mac64, platform.OSMac},
	}
	for _, tt := range tests {
		b := mustBinary(t, tt.family, tt.env, false, "1.0")
		if got := b.ExecutableOS(); got != tt.want {
			t.Errorf("%s on %s: ExecutableOS() = %s, want %s", tt.family, tt.env.Token(), got, tt.want)
		}
	}
}

func TestBinary_ReleaseSetOnce(t *testing.T) {
	b := mustBinary(t, Chrome, linux64, false, "")

	if _, err := b.DownloadURL(); !errors.Is(err, ErrMalformedURL) {
		t.Errorf("DownloadURL() before release: error = %v, want ErrMalformedURL", err)
	}
	if err := b.SetRelease(Release{Version: " "}); !errors.Is(err, ErrNoRelease) {
		t.Errorf("SetRelease(blank) error = %v, want ErrNoRelease", err)
	}
	if err := b.SetRelease(Release{Version: "91.0"}); err != nil {
		t.Fatalf("SetRelease() error = %v", err)
	}
	if err := b.SetRelease(Release{Version: "92.0"}); !errors.Is(err, ErrReleaseSet) {
		t.Errorf("second SetRelease() error = %v, want ErrReleaseSet", err)
	}
	if b.Version() != "91.0" {
		t.Errorf("Version() = %s, want 91.0", b.Version())
	}
}

func TestBinary_ReleasePathWins(t *testing.T) {
	b := mustBinary(t, IE, win64, false, "")
	if err := b.SetRelease(Release{Version: "2.39.0", Path: "2.39/IEDriverServer_x64_2.39.0.zip"}); err != nil {
		t.Fatal(err)
	}
	got, err := b.DownloadURL()
	if err != nil {
		t.Fatal(err)
	}
	if want := "https://selenium-release.storage.googleapis.com/2.39/IEDriverServer_x64_2.39.0.zip"; got != want {
		t.Errorf("DownloadURL() = %s, want %s", got, want)
	}
}

func TestBinary_CatalogSource(t *testing.T) {
	tests := []struct {
		family     Family
		env        *platform.Environment
		wantOK     bool
		wantPrefix string
		wantToken  string
	}{
		{Chrome, linux64, true, "chromedriver_", "linux64"},
		{Chrome, win64, true, "chromedriver_", "win32"},
		{Edge, linux64, true, "edgedriver_", "win64"},
		{Edge, mac64, true, "edgedriver_", "mac64"},
		{Firefox, linux64, false, "", ""},
		{IE, win64, false, "", ""},
		{Opera, linux64, false, "", ""},
		{Server, linux64, false, "", ""},
	}

	for _, tt := range tests {
		b := mustBinary(t, tt.family, tt.env, false, "")
		_, filter, ok := b.CatalogSource()
		if ok != tt.wantOK || filter.Prefix != tt.wantPrefix || filter.Token != tt.wantToken {
			t.Errorf("%s/%s CatalogSource() = (%+v, %v)", tt.family, tt.env.Token(), filter, ok)
		}
	}
}

func TestEndpoints(t *testing.T) {
	ep := DefaultEndpoints()
	if err := ep.Set(Chrome, "http://127.0.0.1:8080/chrome/"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if ep.For(Chrome) != "http://127.0.0.1:8080/chrome" {
		t.Errorf("For(Chrome) = %s", ep.For(Chrome))
	}
	if err := ep.Set(Edge, "ftp://mirror"); !errors.Is(err, ErrMalformedURL) {
		t.Errorf("Set(ftp) error = %v, want ErrMalformedURL", err)
	}
	if err := ep.Set(Family("safari"), "https://example.test"); err == nil {
		t.Error("Set(unknown family) should fail")
	}

	ep.Opera = "::not a url"
	if _, err := NewStrategy(Opera, ep); !errors.Is(err, ErrMalformedURL) {
		t.Errorf("NewStrategy(bad endpoint) error = %v, want ErrMalformedURL", err)
	}
}

func TestParseFamily(t *testing.T) {
	tests := []struct {
		in      string
		want    Family
		wantErr bool
	}{
		{"chrome", Chrome, false},
		{" Firefox ", Firefox, false},
		{"gecko", Firefox, false},
		{"EDGE", Edge, false},
		{"ie", IE, false},
		{"iexplorer", IE, false},
		{"opera", Opera, false},
		{"selenium-server", Server, false},
		{"safari", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseFamily(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFamily(%q) = (%s, %v), want %s", tt.in, got, err, tt.want)
		}
	}

	if n := len(Families()); n != 6 {
		t.Errorf("Families() has %d entries, want 6", n)
	}
}
