//go:build !linux && !windows

package browser

import "github.com/ZebulonRouseFrantzich/wdb/internal/logging"

// NewDetector returns the detector for this host. Browser detection is not
// implemented here, so every lookup reports undetected.
func NewDetector(runner Runner, logger logging.Logger) Detector {
	return Undetected{}
}
