package browser

import (
	"context"

	"github.com/ZebulonRouseFrantzich/wdb/internal/logging"
)

// linuxCommands lists the executables tried, in order, for each browser.
var linuxCommands = map[string][]string{
	Chrome:  {"google-chrome", "google-chrome-stable", "chromium"},
	Edge:    {"microsoft-edge", "microsoft-edge-stable"},
	Firefox: {"firefox"},
	Opera:   {"opera"},
}

// ShellDetector runs `<browser> --version` and reads the version from the
// first line of output.
type ShellDetector struct {
	runner   Runner
	commands map[string][]string
	logger   logging.Logger
}

// NewShellDetector creates a detector using the Linux executable names.
func NewShellDetector(runner Runner, logger logging.Logger) *ShellDetector {
	return &ShellDetector{
		runner:   runner,
		commands: linuxCommands,
		logger:   logging.OrNop(logger),
	}
}

// Detect implements Detector.
func (d *ShellDetector) Detect(ctx context.Context, browser string) (string, bool) {
	for _, name := range d.commands[browser] {
		out, err := d.runner.Run(ctx, name, "--version")
		if err != nil {
			d.logger.Debug("browser version command failed", "command", name, "error", err)
			continue
		}
		if v, ok := ExtractVersion(firstLine(string(out))); ok {
			d.logger.Debug("browser version detected", "browser", browser, "version", v, "command", name)
			return v, true
		}
		d.logger.Debug("browser version output not recognized", "command", name, "output", firstLine(string(out)))
	}
	return "", false
}
