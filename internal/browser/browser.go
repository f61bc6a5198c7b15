// Package browser detects the version of an installed browser so a
// matching driver can be resolved.
//
// Detection is best effort. Every failure (missing executable, non-zero
// exit, unreadable registry key, unparsable output) reports "undetected"
// and the caller falls back to the latest driver.
package browser

import (
	"context"
	"os/exec"
	"regexp"
	"strings"
)

// Browser identifiers accepted by Detect. They match the driver family names.
const (
	Chrome  = "chrome"
	Firefox = "firefox"
	Edge    = "edge"
	IE      = "ie"
	Opera   = "opera"
)

// Detector reports the installed version of a browser. The boolean is false
// when the version could not be determined.
type Detector interface {
	Detect(ctx context.Context, browser string) (string, bool)
}

// Runner executes a command and returns its standard output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// Run executes name with args and returns stdout.
func (ExecRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// Undetected never detects anything. It is the detector on hosts without
// a detection strategy.
type Undetected struct{}

// Detect always reports undetected.
func (Undetected) Detect(ctx context.Context, browser string) (string, bool) {
	return "", false
}

var versionRegex = regexp.MustCompile(`\d+(?:\.\d+)+`)

// ExtractVersion returns the first dotted version found in output.
func ExtractVersion(output string) (string, bool) {
	v := versionRegex.FindString(output)
	return v, v != ""
}

// firstLine returns output up to the first line break.
func firstLine(output string) string {
	line, _, _ := strings.Cut(strings.TrimLeft(output, "\r\n"), "\n")
	return strings.TrimSpace(line)
}
