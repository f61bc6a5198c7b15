package binary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultVersionCacheTTL is how long resolved versions are reused.
const DefaultVersionCacheTTL = time.Hour

// Clock provides time operations. This interface enables deterministic testing.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the actual system time.
type RealClock struct{}

// Now returns the current time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// versionFile is the on-disk form of the cache. The whole file expires
// ttl after Created.
type versionFile struct {
	Created  time.Time         `json:"created"`
	Versions map[string]string `json:"versions"`
}

// VersionCache remembers which driver version was resolved for a browser
// so repeat runs skip browser detection and the catalog request.
type VersionCache struct {
	mu    sync.Mutex
	path  string
	ttl   time.Duration
	clock Clock
}

// NewVersionCache creates a cache stored at path.
func NewVersionCache(path string, ttl time.Duration, clock Clock) *VersionCache {
	if ttl <= 0 {
		ttl = DefaultVersionCacheTTL
	}
	if clock == nil {
		clock = RealClock{}
	}
	return &VersionCache{path: path, ttl: ttl, clock: clock}
}

// Get returns the cached version for key.
func (c *VersionCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.load()
	if f == nil {
		return "", false
	}
	v, ok := f.Versions[key]
	return v, ok
}

// Put records version for key. A fresh file is started when the current
// one has expired.
func (c *VersionCache) Put(key, version string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	f := c.load()
	if f == nil {
		f = &versionFile{Created: c.clock.Now().UTC(), Versions: make(map[string]string)}
	}
	f.Versions[key] = version

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal version cache: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Processes sharing a root each write their own temp file.
	tmpPath := c.path + "." + uuid.NewString() + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("write version cache: %w", err)
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename version cache: %w", err)
	}
	return nil
}

// load reads the cache file, deleting it when expired or unreadable.
// It returns nil when there is nothing usable.
func (c *VersionCache) load() *versionFile {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil
	}

	var f versionFile
	if err := json.Unmarshal(data, &f); err != nil || f.Versions == nil {
		os.Remove(c.path)
		return nil
	}
	if c.clock.Now().Sub(f.Created) >= c.ttl {
		os.Remove(c.path)
		return nil
	}
	return &f
}
