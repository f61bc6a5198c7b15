package main

import (
	"context"
	"errors"
	"fmt"
)

// runLatest handles `wdb latest <driver>`.
func runLatest(ctx context.Context, args []string, d deps) (err error) {
	var flags commonFlags
	fs := newFlagSet("latest", d)
	flags.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(d.stderr, "Usage: wdb latest <driver> [options]")
		fmt.Fprintln(d.stderr)
		fmt.Fprintln(d.stderr, "Options:")
		fs.PrintDefaults()
	}

	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("latest takes exactly one driver")
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

	rel, err := s.manager.Latest(ctx, families[0], s.options(families[0]))
	if err != nil {
		return err
	}
	fmt.Fprintln(d.stdout, rel.Version)
	return nil
}

// runVersions handles `wdb versions <driver>`.
func runVersions(ctx context.Context, args []string, d deps) (err error) {
	var flags commonFlags
	fs := newFlagSet("versions", d)
	flags.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(d.stderr, "Usage: wdb versions <driver> [options]")
		fmt.Fprintln(d.stderr)
		fmt.Fprintln(d.stderr, "Options:")
		fs.PrintDefaults()
	}

	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errors.New("versions takes exactly one driver")
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

	cat, err := s.manager.Catalog(ctx, families[0], s.options(families[0]))
	if err != nil {
		return err
	}
	if cat.Len() == 0 {
		fmt.Fprintf(d.stderr, "no published versions found for %s\n", families[0])
		return nil
	}
	for _, v := range cat.Versions() {
		fmt.Fprintln(d.stdout, v)
	}
	return nil
}

// runClear handles `wdb clear`.
func runClear(ctx context.Context, args []string, d deps) (err error) {
	var flags commonFlags
	fs := newFlagSet("clear", d)
	flags.register(fs)
	fs.Usage = func() {
		fmt.Fprintln(d.stderr, "Usage: wdb clear [options]")
		fmt.Fprintln(d.stderr)
		fmt.Fprintln(d.stderr, "Options:")
		fs.PrintDefaults()
	}

	if done, err := parseFlags(fs, args); done || err != nil {
		return err
	}
	if fs.NArg() != 0 {
		fs.Usage()
		return errors.New("clear takes no arguments")
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

	if err := s.manager.ClearCache(); err != nil {
		return err
	}
	fmt.Fprintf(d.stdout, "cleared %s\n", s.manager.CacheDir())
	return nil
}
