package browser

import (
	"context"
	"strings"

	"github.com/ZebulonRouseFrantzich/wdb/internal/logging"
)

type registryRoot int

const (
	localMachine registryRoot = iota
	currentUser
)

// registryKey locates the value holding a browser's version.
type registryKey struct {
	root  registryRoot
	path  string
	value string
}

// registryReader reads a string value from the Windows registry.
type registryReader func(k registryKey) (string, error)

var windowsRegistryKeys = map[string]registryKey{
	Chrome:  {currentUser, `Software\Google\Chrome\BLBeacon`, "version"},
	Edge:    {currentUser, `Software\Microsoft\Edge\BLBeacon`, "version"},
	Firefox: {localMachine, `Software\Mozilla\Mozilla Firefox`, "CurrentVersion"},
	IE:      {localMachine, `Software\Microsoft\Internet Explorer`, "svcVersion"},
}

var windowsExecutables = map[string]string{
	Chrome:  `C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	Edge:    `C:\Program Files (x86)\Microsoft\Edge\Application\msedge.exe`,
	Firefox: `C:\Program Files\Mozilla Firefox\firefox.exe`,
	IE:      `C:\Program Files\Internet Explorer\iexplore.exe`,
}

// WindowsDetector reads the browser version from the registry and falls
// back to a WMI file-version query.
type WindowsDetector struct {
	readRegistry registryReader
	runner       Runner
	logger       logging.Logger
}

// newWindowsDetector creates a detector. readRegistry may be nil to skip
// registry lookups.
func newWindowsDetector(readRegistry registryReader, runner Runner, logger logging.Logger) *WindowsDetector {
	return &WindowsDetector{
		readRegistry: readRegistry,
		runner:       runner,
		logger:       logging.OrNop(logger),
	}
}

// Detect implements Detector.
func (d *WindowsDetector) Detect(ctx context.Context, browser string) (string, bool) {
	if key, ok := windowsRegistryKeys[browser]; ok && d.readRegistry != nil {
		raw, err := d.readRegistry(key)
		if err == nil {
			if v, ok := ExtractVersion(raw); ok {
				d.logger.Debug("browser version read from registry", "browser", browser, "version", v)
				return v, true
			}
		} else {
			d.logger.Debug("registry lookup failed", "browser", browser, "key", key.path, "error", err)
		}
	}

	exe, ok := windowsExecutables[browser]
	if !ok {
		return "", false
	}
	if v, ok := d.fileVersion(ctx, exe); ok {
		return v, true
	}
	// 64-bit Chrome installs outside the x86 program directory
	if browser == Chrome {
		return d.fileVersion(ctx, strings.Replace(exe, " (x86)", "", 1))
	}
	return "", false
}

// fileVersion asks WMI for the file version of exe.
func (d *WindowsDetector) fileVersion(ctx context.Context, exe string) (string, bool) {
	query := "name='" + strings.ReplaceAll(exe, `\`, `\\`) + "'"
	out, err := d.runner.Run(ctx, "wmic", "datafile", "where", query, "get", "Version", "/value")
	if err != nil {
		d.logger.Debug("wmic query failed", "path", exe, "error", err)
		return "", false
	}
	return ExtractVersion(string(out))
}
