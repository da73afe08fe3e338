package main

import (
	"flag"
	"fmt"
	"io"

	"symtable/internal/core/config"
)

const versionString = "1.0.0"

const usage = `usage:
  symtable [flags] run [script]            run a command script (stdin when omitted)
  symtable [flags] scan [-watch] [-dump] <path>...
  symtable [flags] repl                    interactive scope stack

flags:
`

type cliOptions struct {
	configPath  string
	verbose     bool
	version     bool
	metricsAddr string
	command     string
	args        []string
}

func parseOptions(args []string, stderr io.Writer) (cliOptions, error) {
	var opts cliOptions
	fs := flag.NewFlagSet("symtable", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	fs.StringVar(&opts.configPath, "config", config.DefaultPath, "Path to config file")
	fs.BoolVar(&opts.verbose, "verbose", false, "Enable verbose logging")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.StringVar(&opts.metricsAddr, "metrics-addr", "", "Serve /metrics and /health on this address (overrides config)")

	if err := fs.Parse(args); err != nil {
		return cliOptions{}, err
	}

	rest := fs.Args()
	if len(rest) > 0 {
		opts.command = rest[0]
		opts.args = rest[1:]
	}
	if !opts.version && opts.command == "" {
		fs.Usage()
		return cliOptions{}, fmt.Errorf("missing command")
	}
	return opts, nil
}

type scanOptions struct {
	watch      bool
	dump       bool
	paths      []string
	configPath string
}

func parseScanOptions(args []string, stderr io.Writer) (scanOptions, error) {
	var opts scanOptions
	fs := flag.NewFlagSet("scan", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.BoolVar(&opts.watch, "watch", false, "Rescan changed files until interrupted")
	fs.BoolVar(&opts.dump, "dump", false, "Dump each function scope before it is exited")

	if err := fs.Parse(args); err != nil {
		return scanOptions{}, err
	}
	opts.paths = fs.Args()
	if len(opts.paths) == 0 {
		return scanOptions{}, fmt.Errorf("scan requires at least one path")
	}
	return opts, nil
}
