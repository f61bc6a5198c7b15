package binary

import (
	"fmt"

	"github.com/ZebulonRouseFrantzich/wdb/internal/driver"
)

// Stage names the pipeline step an acquisition failed in.
type Stage string

const (
	StageDetect   Stage = "detect"
	StageResolve  Stage = "resolve"
	StageDownload Stage = "download"
	StageExtract  Stage = "extract"
)

// Kind classifies an acquisition failure.
type Kind string

const (
	// KindConfig covers unsupported platforms, bad overrides and malformed URLs.
	KindConfig Kind = "config"
	// KindNetwork covers unreachable latest-version, catalog and archive endpoints.
	KindNetwork Kind = "network"
	// KindResolution covers empty catalogs and empty latest-version answers.
	KindResolution Kind = "resolution"
	// KindExtraction covers corrupt, empty and license-only archives.
	KindExtraction Kind = "extraction"
)

// AcquireError is the single error type returned by Manager.Acquire.
type AcquireError struct {
	Family driver.Family
	Stage  Stage
	Kind   Kind
	Err    error
}

func (e *AcquireError) Error() string {
	return fmt.Sprintf("acquire %s driver: %s failed (%s error): %v", e.Family, e.Stage, e.Kind, e.Err)
}

func (e *AcquireError) Unwrap() error {
	return e.Err
}
