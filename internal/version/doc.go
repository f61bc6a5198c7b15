// Package version orders driver and browser version strings and resolves
// the driver release compatible with an installed browser.
//
// Versions are never parsed into structs. Compare defines a total order
// over raw strings such as "91.0.4472.101" or "0.30.0b3", and that single
// order is used to sort a Catalog and to locate an arbitrary version in it.
//
// # Compatibility resolution
//
// Resolve picks the catalog entry for an installed browser version:
//
//  1. An exact catalog key is returned unchanged.
//  2. Otherwise the version is placed into the sorted keys.
//  3. With no greater key, the previous key wins.
//  4. Otherwise the next key wins when it shares the installed major
//     version, and the previous key wins when it does not.
//
// Only the next key's major version is inspected before falling back.
package version
