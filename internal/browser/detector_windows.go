package browser

import (
	"golang.org/x/sys/windows/registry"

	"github.com/ZebulonRouseFrantzich/wdb/internal/logging"
)

// NewDetector returns the detector for this host.
func NewDetector(runner Runner, logger logging.Logger) Detector {
	return newWindowsDetector(readRegistry, runner, logger)
}

func readRegistry(k registryKey) (string, error) {
	root := registry.LOCAL_MACHINE
	if k.root == currentUser {
		root = registry.CURRENT_USER
	}

	key, err := registry.OpenKey(root, k.path, registry.QUERY_VALUE)
	if err != nil {
		return "", err
	}
	defer key.Close()

	v, _, err := key.GetStringValue(k.value)
	return v, err
}
