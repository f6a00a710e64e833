package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/pflag"

	"github.com/arloliu/fragscan/archive"
)

func runExport(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags

	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	common.register(fs)

	help, err := parseFlags(fs, args, "fragscan export [flags] ACCESSION OUTPUT", stderr)
	if help || err != nil {
		return err
	}
	if fs.NArg() != 2 {
		fs.Usage()
		return errors.New("export needs an accession and an output path")
	}

	coll, err := openAccession(ctx, &common, fs, fs.Arg(0), stderr)
	if err != nil {
		return err
	}
	defer coll.Close()

	out, err := os.Create(fs.Arg(1))
	if err != nil {
		return err
	}

	rows, err := archive.ExportParquet(coll, out)
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(stdout, "exported %d reads to %s\n", rows, fs.Arg(1))

	return nil
}

// infoRecord is the JSON form printed by the info command.
type infoRecord struct {
	Accession   string `json:"accession"`
	Run         string `json:"run"`
	Platform    string `json:"platform,omitempty"`
	Kind        string `json:"kind"`
	Compression string `json:"compression"`
	Rows        uint64 `json:"rows"`
	Bases       uint64 `json:"bases"`
	Fragments   uint64 `json:"fragments"`
	Blobs       uint32 `json:"blobs"`
}

func runInfo(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	var common commonFlags

	fs := pflag.NewFlagSet("info", pflag.ContinueOnError)
	common.register(fs)

	help, err := parseFlags(fs, args, "fragscan info [flags] ACCESSION...", stderr)
	if help || err != nil {
		return err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errors.New("info needs at least one accession")
	}

	enc := jsoniter.ConfigCompatibleWithStandardLibrary.NewEncoder(stdout)
	for _, accession := range fs.Args() {
		coll, err := openAccession(ctx, &common, fs, accession, stderr)
		if err != nil {
			return err
		}

		meta := coll.Metadata()
		rec := infoRecord{
			Accession:   coll.Accession(),
			Run:         meta.Run,
			Platform:    meta.Platform,
			Kind:        meta.Kind.String(),
			Compression: coll.Compression().String(),
			Rows:        meta.RowCount,
			Bases:       meta.BaseCount,
			Fragments:   meta.FragmentCount,
			Blobs:       meta.BlobCount,
		}
		_ = coll.Close()

		if err := enc.Encode(rec); err != nil {
			return err
		}
	}

	return nil
}

func openAccession(ctx context.Context, common *commonFlags, fs *pflag.FlagSet, accession string, stderr io.Writer) (*archive.Collection, error) {
	cfg, err := common.load(fs)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.Log, stderr)
	if err != nil {
		return nil, err
	}

	repo, err := newRepository(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	return repo.Open(ctx, accession)
}
