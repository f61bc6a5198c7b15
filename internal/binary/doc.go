// Package binary acquires WebDriver binaries.
//
// A Manager picks a driver version for the requested family, downloads
// the vendor archive into <root>/webdriver, extracts it and binds the
// resulting path under the family's property key in a Store:
//
//	mgr, err := binary.NewManager(binary.Config{Root: "/var/cache/wdb"})
//	if err != nil {
//	    return err
//	}
//	res, err := mgr.Acquire(ctx, driver.Chrome, binary.Options{AutoDetectBrowserVersion: true})
//	if err != nil {
//	    return err
//	}
//	fmt.Println(res.PropertyKey, res.BinaryPath)
//
// # Version selection
//
// A pinned release always wins. Otherwise, with browser detection enabled
// and a family that publishes a listing, the installed browser version is
// matched against the listing. Resolved versions are remembered in
// <root>/webdriver/versions.json for an hour. Everything else falls back
// to the vendor's latest release.
//
// # Caching and locking
//
// A binary already present in its version directory is reused unless
// StrictDownload is set. Acquisitions of one family are serialized within
// the process by a mutex and across processes by a lock file in the cache
// directory. ClearCache waits for in-flight acquisitions.
//
// # Errors
//
// Acquire only returns *AcquireError, which records the failing stage and
// a coarse error kind.
package binary
