package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
)

// Version will be set at build time via -ldflags
var Version = "v0.1.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	os.Exit(run(ctx, os.Args[1:], defaultDeps()))
}

// run dispatches a subcommand and returns the process exit code.
func run(ctx context.Context, args []string, d deps) int {
	if len(args) == 0 {
		printUsage(d.stdout)
		return 0
	}

	var err error
	switch args[0] {
	case "--version", "version":
		fmt.Fprintf(d.stdout, "wdb %s\n", Version)
		return 0
	case "help", "--help", "-h":
		printUsage(d.stdout)
		return 0
	case "install":
		err = runInstall(ctx, args[1:], d)
	case "latest":
		err = runLatest(ctx, args[1:], d)
	case "versions":
		err = runVersions(ctx, args[1:], d)
	case "clear":
		err = runClear(ctx, args[1:], d)
	default:
		fmt.Fprintf(d.stderr, "Error: unknown command: %s\n\n", args[0])
		printUsage(d.stderr)
		return 2
	}

	if err != nil {
		fmt.Fprintf(d.stderr, "Error: %s\n", formatError(err, hasVerbose(args[1:])))
		return 1
	}
	return 0
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "wdb - WebDriver binary manager")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  wdb --version                  Show version information")
	fmt.Fprintln(w, "  wdb install <driver>... [opts] Download drivers and print key=path bindings")
	fmt.Fprintln(w, "  wdb latest <driver> [opts]     Print the newest published driver version")
	fmt.Fprintln(w, "  wdb versions <driver> [opts]   List the published driver versions")
	fmt.Fprintln(w, "  wdb clear [opts]               Remove every cached driver")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Drivers: chrome, firefox, edge, ie, opera, server")
	fmt.Fprintln(w, "Run 'wdb <command> --help' for command options.")
}
