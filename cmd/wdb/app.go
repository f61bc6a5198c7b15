package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"

	"github.com/ZebulonRouseFrantzich/wdb/internal/binary"
	"github.com/ZebulonRouseFrantzich/wdb/internal/browser"
	"github.com/ZebulonRouseFrantzich/wdb/internal/config"
	"github.com/ZebulonRouseFrantzich/wdb/internal/driver"
	"github.com/ZebulonRouseFrantzich/wdb/internal/platform"
)

// deps are the process-level collaborators, swapped out in tests.
type deps struct {
	stdout   io.Writer
	stderr   io.Writer
	platform platform.Detector
	browser  browser.Detector
}

func defaultDeps() deps {
	return deps{
		stdout:   os.Stdout,
		stderr:   os.Stderr,
		platform: platform.NewDetector(),
	}
}

// commonFlags are accepted by every subcommand.
type commonFlags struct {
	configPath  string
	envPath     string
	root        string
	proxy       string
	arch        int
	metricsFile string
	verbose     bool
}

func (c *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&c.configPath, "config", config.DefaultFileName, "Lua config file")
	fs.StringVar(&c.envPath, "env-file", config.DefaultDotEnv, "dotenv file with WDB_* variables")
	fs.StringVar(&c.root, "root", "", "download root (drivers live in <root>/webdriver)")
	fs.StringVar(&c.proxy, "proxy", "", "HTTP proxy URL")
	fs.IntVar(&c.arch, "arch", 0, "force 32 or 64 bit drivers")
	fs.StringVar(&c.metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	fs.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
}

func newFlagSet(name string, d deps) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(d.stderr)
	fs.SortFlags = false
	return fs
}

// parseFlags parses args. It reports done when help was requested.
func parseFlags(fs *pflag.FlagSet, args []string) (done bool, err error) {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// session is a configured manager plus the pieces that outlive it.
type session struct {
	cfg      *config.Config
	manager  *binary.Manager
	logger   *slog.Logger
	registry *prometheus.Registry
	flags    *commonFlags
}

// newSession loads configuration, applies flag overrides and builds the
// manager.
func newSession(ctx context.Context, fs *pflag.FlagSet, flags *commonFlags, d deps) (*session, error) {
	cfg, err := config.Load(ctx, d.platform, flags.configPath, flags.envPath)
	if err != nil {
		return nil, err
	}

	if fs.Changed("root") {
		cfg.Root = flags.root
	}
	if fs.Changed("proxy") {
		cfg.Proxy = flags.proxy
	}
	if err := platform.ValidateArch(flags.arch); err != nil {
		return nil, fmt.Errorf("--arch: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level := cfg.Level()
	if flags.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(d.stderr, &slog.HandlerOptions{Level: level}))

	registry := prometheus.NewRegistry()
	mgr, err := binary.NewManager(binary.Config{
		Root:      cfg.Root,
		Endpoints: &cfg.Endpoints,
		Proxy:     cfg.Proxy,
		Timeout:   cfg.Timeout,
		Retries:   cfg.Retries,
		Platform:  d.platform,
		Browser:   d.browser,
		Logger:    logger,
		Metrics:   binary.NewMetrics(registry),
	})
	if err != nil {
		return nil, err
	}

	logger.Debug("configuration loaded",
		"config", flags.configPath,
		"root", cfg.Root,
		"timeout", cfg.Timeout,
		"retries", cfg.Retries,
		"auto_detect", cfg.AutoDetect)

	return &session{cfg: cfg, manager: mgr, logger: logger, registry: registry, flags: flags}, nil
}

// options builds acquisition options for f from config and flags.
func (s *session) options(f driver.Family) binary.Options {
	pin := s.cfg.Driver(f)
	arch := pin.Arch
	if s.flags.arch != 0 {
		arch = s.flags.arch
	}
	return binary.Options{
		Release:                  pin.Version,
		ArchBits:                 arch,
		StrictDownload:           s.cfg.Strict,
		AutoDetectBrowserVersion: s.cfg.AutoDetect,
	}
}

// close writes the metrics textfile when one was requested.
func (s *session) close() error {
	if s.flags.metricsFile == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(s.flags.metricsFile, s.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// parseFamilies maps driver arguments to families.
func parseFamilies(args []string) ([]driver.Family, error) {
	out := make([]driver.Family, 0, len(args))
	for _, a := range args {
		f, err := driver.ParseFamily(a)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func formatError(err error, verbose bool) string {
	return config.FormatError(err, verbose)
}

func hasVerbose(args []string) bool {
	for _, a := range args {
		if a == "--verbose" || a == "-v" || strings.HasPrefix(a, "--verbose=") {
			return true
		}
	}
	return false
}
