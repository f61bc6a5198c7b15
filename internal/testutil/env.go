// Package testutil provides helpers that keep wdb tests isolated from
// the developer's environment.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// wdbVariables are the environment variables wdb reads.
var wdbVariables = []string{
	"WDB_ROOT",
	"WDB_PROXY",
	"WDB_LOG_LEVEL",
	"WDB_STRICT",
	"WDB_TIMEOUT",
	"WDB_RETRIES",
}

// SetupTestEnv blanks every WDB_* variable for the duration of the test,
// so overrides set in the developer's shell do not leak in, and returns
// a fresh download root. Empty values are ignored by the config loader.
func SetupTestEnv(t *testing.T) string {
	t.Helper()

	for _, name := range wdbVariables {
		t.Setenv(name, "")
	}

	root := filepath.Join(t.TempDir(), "root")
	if err := os.MkdirAll(root, 0o750); err != nil {
		t.Fatalf("failed to create test root %s: %v", root, err)
	}
	return root
}
