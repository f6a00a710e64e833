// fragscan searches sequencing archives for a nucleotide query and builds archives
// from FASTA or Parquet input.
//
// Usage:
//
//	fragscan search [flags] QUERY ACCESSION...
//	fragscan import [flags] INPUT OUTPUT
//	fragscan export [flags] ACCESSION OUTPUT
//	fragscan info [flags] ACCESSION...
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()

	if err != nil {
		if errors.Is(err, errMatchFailures) {
			os.Exit(2)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, args []string, stdout, stderr io.Writer) error
}

var commands = []command{
	{"search", "search accessions for a query", runSearch},
	{"import", "build an archive from FASTA or Parquet", runImport},
	{"export", "write the reads of an archive as Parquet", runExport},
	{"info", "print archive metadata", runInfo},
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" || args[0] == "help" {
		printUsage(stderr)
		return nil
	}

	for _, cmd := range commands {
		if cmd.name == args[0] {
			return cmd.run(ctx, args[1:], stdout, stderr)
		}
	}
	printUsage(stderr)

	return fmt.Errorf("unknown command %q", args[0])
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "fragscan searches sequencing archives for nucleotide queries.\n\nUsage:\n  fragscan <command> [flags] [args]\n\nCommands:\n")
	for _, cmd := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintf(w, "\nRun 'fragscan <command> --help' for the flags of a command.\n")
}

// parseFlags parses args and reports whether help was requested.
func parseFlags(fs *pflag.FlagSet, args []string, usage string, stderr io.Writer) (bool, error) {
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage:\n  %s\n\nFlags:\n", usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return true, nil
		}

		return false, err
	}

	return false, nil
}
