package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"github.com/arloliu/fragscan/driver"
	"github.com/arloliu/fragscan/output"
)

// errMatchFailures reports that some accessions could not be searched.
var errMatchFailures = errors.New("some accessions failed")

func runSearch(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		common        commonFlags
		algorithm     string
		mode          string
		unalignedOnly bool
		threads       int
		workers       int
		ordered       bool
		outFormat     string
		width         int
		outPath       string
	)

	fs := pflag.NewFlagSet("search", pflag.ContinueOnError)
	common.register(fs)
	fs.StringVarP(&algorithm, "algorithm", "a", "", "scan algorithm: default, naive, skip")
	fs.StringVarP(&mode, "mode", "m", "", "iteration unit: blob or fragment")
	fs.BoolVarP(&unalignedOnly, "unaligned-only", "u", false, "search only unaligned fragments")
	fs.IntVarP(&threads, "threads", "t", 0, "accessions searched at once")
	fs.IntVarP(&workers, "workers", "w", 0, "buffers of one accession scanned at once (default GOMAXPROCS)")
	fs.BoolVar(&ordered, "ordered", false, "emit the matches of each accession in archive order")
	fs.StringVarP(&outFormat, "format", "f", "", "output format: ids, fasta, jsonl")
	fs.IntVar(&width, "width", 0, "wrap FASTA sequence lines at this many bases")
	fs.StringVarP(&outPath, "output", "o", "", "write matches to this file instead of stdout")

	help, err := parseFlags(fs, args, "fragscan search [flags] QUERY ACCESSION...", stderr)
	if help || err != nil {
		return err
	}
	if fs.NArg() < 2 {
		fs.Usage()
		return errors.New("search needs a query and at least one accession")
	}

	cfg, err := common.load(fs)
	if err != nil {
		return err
	}
	if fs.Changed("algorithm") {
		cfg.Search.Algorithm = algorithm
	}
	if fs.Changed("mode") {
		cfg.Search.Mode = mode
	}
	if fs.Changed("unaligned-only") {
		cfg.Search.UnalignedOnly = unalignedOnly
	}
	if fs.Changed("threads") {
		cfg.Search.Threads = threads
	}
	if fs.Changed("workers") {
		cfg.Search.Workers = workers
	}
	if fs.Changed("ordered") {
		cfg.Search.Ordered = ordered
	}
	if fs.Changed("format") {
		cfg.Output.Format = outFormat
	}
	if fs.Changed("width") {
		cfg.Output.Width = width
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return err
	}

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return err
	}

	opts := []driver.Option{driver.WithThreads(cfg.Search.Threads), driver.WithLogger(logger)}
	if cfg.Search.Workers > 0 {
		opts = append(opts, driver.WithWorkers(cfg.Search.Workers))
	}
	d, err := driver.New(repo, opts...)
	if err != nil {
		return err
	}

	out := stdout
	var outFile io.Closer
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer func() {
			if outFile != nil {
				_ = outFile.Close()
			}
		}()
		out, outFile = f, f
	}

	sink, err := newSink(cfg.Output.Format, cfg.Output.Width, out)
	if err != nil {
		return err
	}

	algo, _ := cfg.Search.AlgorithmValue()
	searchMode, _ := cfg.Search.ModeValue()

	report, runErr := d.Run(ctx, driver.Request{
		Query:         fs.Arg(0),
		Accessions:    fs.Args()[1:],
		Algorithm:     algo,
		Mode:          searchMode,
		UnalignedOnly: cfg.Search.UnalignedOnly,
		Ordered:       cfg.Search.Ordered,
	}, sink)
	closer := outFile
	outFile = nil
	if err := finishOutput(sink, closer); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		return runErr
	}

	failed := report.Failed()
	for _, res := range failed {
		fmt.Fprintf(stderr, "%s: %s error: %v\n", res.Accession, res.Kind(), res.Err)
	}
	if len(failed) > 0 {
		return fmt.Errorf("%w: %d of %d", errMatchFailures, len(failed), len(report.Results))
	}

	return nil
}

// finishOutput flushes sink and closes the output file, if any.
func finishOutput(sink output.Sink, closer io.Closer) error {
	err := sink.Flush()
	if closer != nil {
		if cerr := closer.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close output: %w", cerr)
		}
	}

	return err
}

func newSink(name string, width int, w io.Writer) (output.Sink, error) {
	format, err := output.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	if format == output.FormatFASTA {
		return output.NewFASTA(w, width), nil
	}

	return output.New(format, w)
}
