package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/ZebulonRouseFrantzich/wdb/internal/binary"
)

// runInstall handles `wdb install <driver>...`.
func runInstall(ctx context.Context, args []string, d deps) (err error) {
	var (
		flags    commonFlags
		release  string
		strict   bool
		clearAll bool
		noDetect bool
	)
	fs := newFlagSet("install", d)
	fs.StringVar(&release, "version", "", "pin the driver version (single driver only)")
	fs.BoolVar(&strict, "strict", false, "download even when a cached binary exists")
	fs.BoolVar(&clearAll, "clear", false, "remove every cached driver first")
	fs.BoolVar(&noDetect, "no-detect", false, "skip browser version detection and use the latest driver")
	flags.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(d.stderr, "Usage: wdb install <driver>... [options]")
		fmt.Fprintln(d.stderr)
		fmt.Fprintln(d.stderr, "Options:")
		fs.PrintDefaults()
	}

	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("install requires at least one driver")
	}
	if release != "" && fs.NArg() > 1 {
		return errors.New("--version pins a single driver")
	}
	families, err := parseFamilies(fs.Args())
	if err != nil {
		return err
	}

	s, err := newSession(ctx, fs, &flags, d)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for i, f := range families {
		opts := s.options(f)
		if release != "" {
			opts.Release = release
		}
		opts.StrictDownload = opts.StrictDownload || strict
		opts.AutoDetectBrowserVersion = opts.AutoDetectBrowserVersion && !noDetect
		// Clearing per family would discard drivers installed earlier in this run.
		opts.ClearCache = clearAll && i == 0

		res, err := s.manager.Acquire(ctx, f, opts)
		if err != nil {
			return err
		}
		printBinding(d, res)
	}
	return nil
}

func printBinding(d deps, res *binary.Result) {
	fmt.Fprintf(d.stdout, "%s=%s\n", res.PropertyKey, res.BinaryPath)
}
