package browser

import "github.com/ZebulonRouseFrantzich/wdb/internal/logging"

// NewDetector returns the detector for this host.
func NewDetector(runner Runner, logger logging.Logger) Detector {
	return NewShellDetector(runner, logger)
}
