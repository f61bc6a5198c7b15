package version

import "sort"

// Catalog maps driver versions to the literal remote path each was listed
// under. Keys are kept sorted by Compare.
type Catalog struct {
	keys    []string
	entries map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{entries: make(map[string]string)}
}

// Put records the path for a version. Re-listing a version replaces its
// path, so the last listed entry wins.
func (c *Catalog) Put(version, path string) {
	if c.entries == nil {
		c.entries = make(map[string]string)
	}
	if _, ok := c.entries[version]; !ok {
		i := c.upperBound(version)
		c.keys = append(c.keys, "")
		copy(c.keys[i+1:], c.keys[i:])
		c.keys[i] = version
	}
	c.entries[version] = path
}

// Get returns the path listed for an exact version string.
func (c *Catalog) Get(version string) (string, bool) {
	if c == nil {
		return "", false
	}
	path, ok := c.entries[version]
	return path, ok
}

// Len returns the number of versions in the catalog.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Versions returns the catalog keys in ascending order.
func (c *Catalog) Versions() []string {
	if c == nil {
		return nil
	}
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Latest returns the greatest version, or "" for an empty catalog.
func (c *Catalog) Latest() string {
	if c.Len() == 0 {
		return ""
	}
	return c.keys[len(c.keys)-1]
}

// upperBound returns the number of keys that compare less than or equal
// to v, which is where v would be inserted after any equal keys.
func (c *Catalog) upperBound(v string) int {
	return sort.Search(len(c.keys), func(i int) bool {
		return Compare(c.keys[i], v) > 0
	})
}
