package version

import "errors"

// ErrEmptyCatalog is returned when there is nothing to resolve against.
var ErrEmptyCatalog = errors.New("no driver versions available in catalog")

// Resolve returns the catalog version to use for an installed browser
// version. See the package documentation for the selection rule.
func Resolve(installed string, c *Catalog) (string, error) {
	if c.Len() == 0 {
		return "", ErrEmptyCatalog
	}

	if _, ok := c.Get(installed); ok {
		return installed, nil
	}

	i := c.upperBound(installed)
	if i == len(c.keys) {
		return c.keys[i-1], nil
	}

	next := c.keys[i]
	if Major(next) == Major(installed) || i == 0 {
		return next, nil
	}
	return c.keys[i-1], nil
}
