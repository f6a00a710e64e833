package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/pflag"

	"github.com/arloliu/fragscan/archive"
	"github.com/arloliu/fragscan/format"
)

func runImport(_ context.Context, args []string, stdout, stderr io.Writer) error {
	var (
		inFormat    string
		run         string
		platform    string
		kind        string
		compression string
		chunk       int
		rowsPerBlob int
		bigEndian   bool
	)

	fs := pflag.NewFlagSet("import", pflag.ContinueOnError)
	fs.StringVar(&inFormat, "format", "", "input format: fasta or parquet (default: from the file extension)")
	fs.StringVar(&run, "run", "", "run name stored in the archive (default: output file name)")
	fs.StringVar(&platform, "platform", "", "sequencing platform")
	fs.StringVar(&kind, "kind", "reads", "archive kind: reads or reference")
	fs.StringVarP(&compression, "compression", "c", "zstd", "payload compression: none, zstd, s2, lz4")
	fs.IntVar(&chunk, "chunk", 0, "split FASTA records into rows of at most this many bases")
	fs.IntVar(&rowsPerBlob, "rows-per-blob", archive.DefaultRowsPerBlob, "maximum rows per blob")
	fs.BoolVar(&bigEndian, "big-endian", false, "write big-endian section headers")

	help, err := parseFlags(fs, args, "fragscan import [flags] INPUT OUTPUT", stderr)
	if help || err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("import needs an input and an output path")
	}
	inPath, outPath := fs.Arg(0), fs.Arg(1)

	if inFormat == "" {
		inFormat = formatFromExtension(inPath)
	}
	if run == "" {
		run = strings.TrimSuffix(baseName(outPath), ".fsar")
	}

	archiveKind, err := format.ParseArchiveKind(kind)
	if err != nil {
		return err
	}
	codec, err := format.ParseCompression(compression)
	if err != nil {
		return err
	}

	opts := []archive.WriterOption{
		archive.WithRunName(run),
		archive.WithPlatform(platform),
		archive.WithKind(archiveKind),
		archive.WithCompression(codec),
		archive.WithRowsPerBlob(rowsPerBlob),
	}
	if bigEndian {
		opts = append(opts, archive.WithBigEndian())
	}

	in, err := os.Open(inPath)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}

	rows, err := writeArchive(in, out, inFormat, chunk, opts)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(outPath)
		return err
	}

	fmt.Fprintf(stdout, "imported %d rows into %s\n", rows, outPath)

	return nil
}

func writeArchive(in *os.File, out *os.File, inFormat string, chunk int, opts []archive.WriterOption) (uint64, error) {
	w, err := archive.NewWriter(out, opts...)
	if err != nil {
		return 0, err
	}

	var rows uint64
	switch inFormat {
	case "fasta":
		rows, err = archive.ImportFASTA(in, w, chunk)
	case "parquet":
		info, statErr := in.Stat()
		if statErr != nil {
			return 0, statErr
		}
		rows, err = archive.ImportParquet(in, info.Size(), w)
	default:
		return 0, fmt.Errorf("unknown input format %q", inFormat)
	}
	if err != nil {
		return rows, err
	}

	return rows, w.Finish()
}

func formatFromExtension(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".parquet"), strings.HasSuffix(lower, ".pq"):
		return "parquet"
	default:
		return "fasta"
	}
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}

	return path
}
