package binary

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ZebulonRouseFrantzich/wdb/internal/browser"
	"github.com/ZebulonRouseFrantzich/wdb/internal/catalog"
	"github.com/ZebulonRouseFrantzich/wdb/internal/driver"
	"github.com/ZebulonRouseFrantzich/wdb/internal/fetch"
	"github.com/ZebulonRouseFrantzich/wdb/internal/lock"
	"github.com/ZebulonRouseFrantzich/wdb/internal/logging"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
	"github.com/ZebulonRouseFrantzich/wdb/internal/version"
)

const (
	// cacheDirName is the directory under Root holding every driver.
	cacheDirName = "webdriver"
	// versionCacheFile holds resolved browser-compatible versions.
	versionCacheFile = "versions.json"
)

// Config holds configuration for the driver manager
type Config struct {
	// Root is the download root; drivers live in Root/webdriver. Default: os.TempDir()
	Root string
	// Endpoints overrides the vendor base URLs. Zero value means defaults.
	Endpoints *driver.Endpoints
	// Proxy is the default proxy URL, overridable per acquisition.
	Proxy string
	// Timeout bounds each HTTP request. Zero means fetch.DefaultTimeout.
	Timeout time.Duration
	// Retries is the number of extra attempts per HTTP request.
	Retries int
	// Platform detects the host. Default: platform.NewDetector()
	Platform platform.Detector
	// Browser detects installed browser versions. Default: browser.NewDetector
	Browser browser.Detector
	// Store receives property bindings. Default: a new MemoryStore
	Store Store
	// Logger receives structured logs. Default: no-op
	Logger logging.Logger
	// Metrics records acquisition metrics. Optional.
	Metrics *Metrics
	// Clock drives version cache expiry. Default: RealClock
	Clock Clock
	// VersionCacheTTL defaults to DefaultVersionCacheTTL.
	VersionCacheTTL time.Duration
}

// Options configures one acquisition.
type Options struct {
	// Release pins the driver version; empty means resolve or use latest.
	Release string
	// ArchBits forces 32 or 64; zero auto-detects.
	ArchBits int
	// StrictDownload downloads even when a cached binary exists.
	StrictDownload bool
	// ClearCache removes every cached driver before acquiring.
	ClearCache bool
	// AutoDetectBrowserVersion matches the driver to the installed browser.
	AutoDetectBrowserVersion bool
	// Proxy overrides Config.Proxy.
	Proxy string
}

// Result describes an acquired driver.
type Result struct {
	Family      driver.Family
	Version     string
	Directory   string
	BinaryPath  string
	PropertyKey string
	CacheHit    bool
}

// Manager acquires driver binaries: it picks a version, downloads and
// extracts the archive when needed, and binds the binary path into the Store.
type Manager struct {
	root      string
	endpoints driver.Endpoints
	cfg       Config
	platform  platform.Detector
	browser   browser.Detector
	store     Store
	logger    logging.Logger
	metrics   *Metrics
	extractor *Extractor
	versions  *VersionCache

	// mu is held shared by acquisitions and exclusively by ClearCache.
	mu sync.RWMutex

	familyMu    sync.Mutex
	familyLocks map[driver.Family]*sync.Mutex
}

// NewManager creates a new driver manager
func NewManager(cfg Config) (*Manager, error) {
	root := cfg.Root
	if root == "" {
		root = os.TempDir()
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}

	endpoints := driver.DefaultEndpoints()
	if cfg.Endpoints != nil {
		endpoints = *cfg.Endpoints
	}

	logger := logging.OrNop(cfg.Logger)

	m := &Manager{
		root:        root,
		endpoints:   endpoints,
		cfg:         cfg,
		platform:    cfg.Platform,
		browser:     cfg.Browser,
		store:       cfg.Store,
		logger:      logger,
		metrics:     cfg.Metrics,
		extractor:   NewExtractor(),
		familyLocks: make(map[driver.Family]*sync.Mutex),
	}
	if m.platform == nil {
		m.platform = platform.NewDetector()
	}
	if m.browser == nil {
		m.browser = browser.NewDetector(browser.ExecRunner{}, logger)
	}
	if m.store == nil {
		m.store = NewMemoryStore()
	}
	m.versions = NewVersionCache(filepath.Join(m.CacheDir(), versionCacheFile), cfg.VersionCacheTTL, cfg.Clock)

	return m, nil
}

// Store returns the store bindings are written to.
func (m *Manager) Store() Store {
	return m.store
}

// CacheDir is the directory drivers are stored under, <root>/webdriver.
func (m *Manager) CacheDir() string {
	return filepath.Join(m.root, cacheDirName)
}

// ClearCache removes every cached driver. It waits for in-flight
// acquisitions and blocks new ones until done.
func (m *Manager) ClearCache() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := os.RemoveAll(m.CacheDir()); err != nil {
		return fmt.Errorf("clear cache: %w", err)
	}
	m.metrics.recordClear()
	m.logger.Info("driver cache cleared", "dir", m.CacheDir())
	return nil
}

// Acquire makes the driver for family available and returns its path.
// Every failure is an *AcquireError.
func (m *Manager) Acquire(ctx context.Context, family driver.Family, opts Options) (*Result, error) {
	start := time.Now()
	reqID := uuid.NewString()

	res, err := m.acquire(ctx, family, opts, reqID)
	if err != nil {
		m.metrics.recordAcquisition(string(family), OutcomeFailed, time.Since(start))
		m.logger.Error("driver acquisition failed", "request_id", reqID, "family", family, "error", err)
		return nil, err
	}

	outcome := OutcomeDownloaded
	if res.CacheHit {
		outcome = OutcomeCacheHit
	}
	m.metrics.recordAcquisition(string(family), outcome, time.Since(start))
	m.logger.Info("driver ready",
		"request_id", reqID,
		"family", family,
		"version", res.Version,
		"path", res.BinaryPath,
		"cache_hit", res.CacheHit,
		"duration", time.Since(start))
	return res, nil
}

func (m *Manager) acquire(ctx context.Context, family driver.Family, opts Options, reqID string) (*Result, error) {
	fail := func(stage Stage, kind Kind, err error) error {
		return &AcquireError{Family: family, Stage: stage, Kind: kind, Err: err}
	}

	if opts.ClearCache {
		if err := m.ClearCache(); err != nil {
			return nil, fail(StageDetect, KindConfig, err)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	familyLock := m.familyLock(family)
	familyLock.Lock()
	defer familyLock.Unlock()

	// START: environment and descriptor
	bin, client, err := m.prepare(ctx, family, opts)
	if err != nil {
		return nil, fail(StageDetect, KindConfig, err)
	}

	rel, err := m.selectRelease(ctx, bin, client, opts, reqID)
	if err != nil {
		return nil, fail(StageResolve, classify(err), err)
	}
	if err := bin.SetRelease(rel); err != nil {
		return nil, fail(StageResolve, KindResolution, err)
	}

	dir := filepath.Join(m.CacheDir(), bin.DirectoryName())
	binaryPath := filepath.Join(dir, bin.FileName())

	fileLock, err := lock.Acquire(ctx, m.CacheDir(), bin.DirectoryName(), 0)
	if err != nil {
		return nil, fail(StageDownload, KindConfig, fmt.Errorf("lock %s: %w", bin.DirectoryName(), err))
	}
	defer fileLock.Release()

	if !opts.StrictDownload {
		if found, ok := cachedBinary(dir, bin.FileName()); ok {
			m.logger.Debug("cache hit", "request_id", reqID, "path", found)
			return m.bind(bin, dir, found, true), nil
		}
	}

	// DOWNLOADING
	url, err := bin.DownloadURL()
	if err != nil {
		return nil, fail(StageDownload, KindConfig, err)
	}
	archivePath := filepath.Join(m.CacheDir(), bin.CompressedFileName())
	m.logger.Info("downloading driver", "request_id", reqID, "family", family, "version", bin.Version(), "url", url)
	n, err := client.DownloadToFile(ctx, url, archivePath)
	if err != nil {
		return nil, fail(StageDownload, KindNetwork, fmt.Errorf("download %s: %w", url, err))
	}
	m.metrics.recordDownload(string(family), n)

	// EXTRACTING
	if bin.ArchiveKind() == driver.Jar {
		err = copyFile(archivePath, binaryPath)
	} else {
		err = m.extractor.Extract(archivePath, dir, bin.ArchiveKind())
	}
	if err != nil {
		return nil, fail(StageExtract, KindExtraction, err)
	}

	found, ok := cachedBinary(dir, bin.FileName())
	if !ok {
		return nil, fail(StageExtract, KindExtraction, fmt.Errorf("%s not found in %s", bin.FileName(), dir))
	}

	if runtime.GOOS != "windows" {
		if err := SetExecutable(found); err != nil {
			m.logger.Warn("could not mark driver executable", "request_id", reqID, "path", found, "error", err)
		}
	}
	if err := os.Remove(archivePath); err != nil {
		m.logger.Warn("could not remove archive", "request_id", reqID, "path", archivePath, "error", err)
	}

	// BOUND
	return m.bind(bin, dir, found, false), nil
}

// prepare detects the environment and builds the descriptor and HTTP client.
func (m *Manager) prepare(ctx context.Context, family driver.Family, opts Options) (*driver.Binary, *fetch.Client, error) {
	if err := platform.ValidateArch(opts.ArchBits); err != nil {
		return nil, nil, err
	}

	strategy, err := driver.NewStrategy(family, m.endpoints)
	if err != nil {
		return nil, nil, err
	}

	env, err := m.platform.Detect(ctx, opts.ArchBits)
	if err != nil {
		return nil, nil, fmt.Errorf("detect platform: %w", err)
	}

	proxy := opts.Proxy
	if proxy == "" {
		proxy = m.cfg.Proxy
	}
	client, err := fetch.New(fetch.Config{Proxy: proxy, Timeout: m.cfg.Timeout, Retries: m.cfg.Retries})
	if err != nil {
		return nil, nil, err
	}

	return driver.NewBinary(strategy, env, opts.ArchBits != 0), client, nil
}

// selectRelease picks the release: a pinned one, a browser-compatible one
// from the family catalog, or the vendor's latest.
func (m *Manager) selectRelease(ctx context.Context, bin *driver.Binary, client *fetch.Client, opts Options, reqID string) (driver.Release, error) {
	if opts.Release != "" {
		return driver.Release{Version: opts.Release}, nil
	}

	if opts.AutoDetectBrowserVersion {
		if rel, ok := m.compatibleRelease(ctx, bin, client, reqID); ok {
			return rel, nil
		}
	}

	rel, err := bin.LatestRelease(ctx, client)
	if err != nil {
		return driver.Release{}, err
	}
	m.logger.Debug("using latest driver", "request_id", reqID, "family", bin.Family(), "version", rel.Version)
	return rel, nil
}

// compatibleRelease resolves the driver matching the installed browser.
// ok is false whenever the caller should fall back to the latest release.
func (m *Manager) compatibleRelease(ctx context.Context, bin *driver.Binary, client *fetch.Client, reqID string) (driver.Release, bool) {
	listingURL, filter, ok := bin.CatalogSource()
	if !ok {
		return driver.Release{}, false
	}

	cacheKey := bin.DriverName() + "_" + bin.Environment().Token()
	if v, ok := m.versions.Get(cacheKey); ok {
		m.logger.Debug("resolved version from cache", "request_id", reqID, "driver", bin.DriverName(), "version", v)
		return driver.Release{Version: v}, true
	}

	installed, ok := m.browser.Detect(ctx, string(bin.Family()))
	if !ok {
		m.logger.Info("browser version not detected, using latest driver", "request_id", reqID, "family", bin.Family())
		return driver.Release{}, false
	}

	cat := catalog.NewReader(client, m.logger).List(ctx, listingURL, filter)
	v, err := version.Resolve(installed, cat)
	if err != nil {
		m.logger.Warn("no compatible driver in catalog, using latest driver",
			"request_id", reqID, "family", bin.Family(), "browser_version", installed, "error", err)
		return driver.Release{}, false
	}

	if err := m.versions.Put(cacheKey, v); err != nil {
		m.logger.Warn("could not write version cache", "request_id", reqID, "error", err)
	}

	path, _ := cat.Get(v)
	m.logger.Info("resolved driver for installed browser",
		"request_id", reqID, "family", bin.Family(), "browser_version", installed, "driver_version", v)
	return driver.Release{Version: v, Path: path}, true
}

func (m *Manager) bind(bin *driver.Binary, dir, binaryPath string, cacheHit bool) *Result {
	m.store.Set(bin.PropertyKey(), binaryPath)
	return &Result{
		Family:      bin.Family(),
		Version:     bin.Version(),
		Directory:   dir,
		BinaryPath:  binaryPath,
		PropertyKey: bin.PropertyKey(),
		CacheHit:    cacheHit,
	}
}

// Latest returns the vendor's newest release for family without
// downloading anything.
func (m *Manager) Latest(ctx context.Context, family driver.Family, opts Options) (driver.Release, error) {
	bin, client, err := m.prepare(ctx, family, opts)
	if err != nil {
		return driver.Release{}, &AcquireError{Family: family, Stage: StageDetect, Kind: KindConfig, Err: err}
	}
	rel, err := bin.LatestRelease(ctx, client)
	if err != nil {
		return driver.Release{}, &AcquireError{Family: family, Stage: StageResolve, Kind: classify(err), Err: err}
	}
	return rel, nil
}

// Catalog lists the versions published for family on this platform. An
// empty catalog means the family has no listing or it could not be read.
func (m *Manager) Catalog(ctx context.Context, family driver.Family, opts Options) (*version.Catalog, error) {
	bin, client, err := m.prepare(ctx, family, opts)
	if err != nil {
		return nil, &AcquireError{Family: family, Stage: StageDetect, Kind: KindConfig, Err: err}
	}
	listingURL, filter, ok := bin.CatalogSource()
	if !ok {
		return version.NewCatalog(), nil
	}
	return catalog.NewReader(client, m.logger).List(ctx, listingURL, filter), nil
}

func (m *Manager) familyLock(family driver.Family) *sync.Mutex {
	m.familyMu.Lock()
	defer m.familyMu.Unlock()

	l, ok := m.familyLocks[family]
	if !ok {
		l = &sync.Mutex{}
		m.familyLocks[family] = l
	}
	return l
}

// cachedBinary finds a non-empty regular file named name in dir, either
// directly or one level down for archives that wrap the binary in a folder.
func cachedBinary(dir, name string) (string, bool) {
	direct := filepath.Join(dir, name)
	if nonEmptyFile(direct) {
		return direct, true
	}

	matches, _ := filepath.Glob(filepath.Join(dir, "*", name))
	for _, p := range matches {
		if nonEmptyFile(p) {
			return p, true
		}
	}
	return "", false
}

func nonEmptyFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular() && info.Size() > 0
}

// classify maps a resolution-stage error to its kind.
func classify(err error) Kind {
	switch {
	case errors.Is(err, driver.ErrMalformedURL):
		return KindConfig
	case errors.Is(err, driver.ErrNoRelease), errors.Is(err, version.ErrEmptyCatalog):
		return KindResolution
	}
	return KindNetwork
}
