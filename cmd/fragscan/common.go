package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/spf13/pflag"

	"github.com/arloliu/fragscan/config"
	"github.com/arloliu/fragscan/repository"
)

// commonFlags are shared by every command that opens accessions.
type commonFlags struct {
	configPath string
	roots      []string
	remote     bool
	logLevel   string
	logFormat  string
}

func (f *commonFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.configPath, "config", "", "configuration file (default $"+config.EnvVar+")")
	fs.StringSliceVar(&f.roots, "root", nil, "directory searched for archives, repeatable")
	fs.BoolVar(&f.remote, "remote", false, "allow fetching accessions from the configured S3 repository")
	fs.StringVar(&f.logLevel, "log-level", "", "log level: debug, info, warn, error")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: text or json")
}

// load reads the config file and applies the flags that were set.
func (f *commonFlags) load(fs *pflag.FlagSet) (*config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}

	if fs.Changed("root") {
		cfg.Repository.Roots = f.roots
	}
	if fs.Changed("remote") {
		cfg.Repository.Remote.Enabled = f.remote
	}
	if fs.Changed("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if fs.Changed("log-format") {
		cfg.Log.Format = f.logFormat
	}

	return cfg, nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := cfg.LevelValue()
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}

	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// newRepository builds the local-then-remote resolution chain. The S3 client is only
// created when a bucket is configured.
func newRepository(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repository.Chain, error) {
	chain := &repository.Chain{
		Local:         &repository.Local{Roots: cfg.Repository.Roots, Extension: cfg.Repository.Extension},
		RemoteEnabled: cfg.Repository.Remote.Enabled,
		Logger:        logger,
	}

	remote := cfg.Repository.Remote
	if remote.Bucket == "" {
		return chain, nil
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if remote.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(remote.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if remote.Endpoint != "" {
			o.BaseEndpoint = aws.String(remote.Endpoint)
		}
		o.UsePathStyle = remote.PathStyle
	})

	s3Repo, err := repository.NewS3(client, repository.S3Config{
		Bucket:    remote.Bucket,
		Prefix:    remote.Prefix,
		Extension: cfg.Repository.Extension,
	})
	if err != nil {
		return nil, err
	}
	chain.Remote = s3Repo

	return chain, nil
}
