package testutil_test

import (
	"os"
	"testing"

	"github.com/ZebulonRouseFrantzich/wdb/internal/testutil"
)

func TestSetupTestEnv(t *testing.T) {
	t.Run("blanks variables", func(t *testing.T) {
		t.Setenv("WDB_ROOT", "/should/not/leak")
		t.Setenv("WDB_STRICT", "true")

		testutil.SetupTestEnv(t)

		for _, name := range []string{"WDB_ROOT", "WDB_STRICT", "WDB_PROXY"} {
			if v := os.Getenv(name); v != "" {
				t.Errorf("%s = %q, want empty", name, v)
			}
		}
	})

	t.Run("returns existing root", func(t *testing.T) {
		root := testutil.SetupTestEnv(t)

		info, err := os.Stat(root)
		if err != nil {
			t.Fatalf("stat root: %v", err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", root)
		}
	})
}
