package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/search"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "fragscan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	algorithm, err := cfg.Search.AlgorithmValue()
	require.NoError(t, err)
	require.Equal(t, format.AlgorithmDefault, algorithm)
	require.Equal(t, format.AlgorithmSkipSearch, algorithm.Resolve())
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
search:
  algorithm: naive
  mode: fragment
  unaligned_only: true
  threads: 4
  ordered: true
repository:
  roots: [/data/runs, /data/refs]
  remote:
    enabled: true
    bucket: archives
    prefix: sra
log:
  level: debug
  format: json
output:
  format: fasta
  width: 60
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	algorithm, err := cfg.Search.AlgorithmValue()
	require.NoError(t, err)
	require.Equal(t, format.AlgorithmNaiveScan, algorithm)

	mode, err := cfg.Search.ModeValue()
	require.NoError(t, err)
	require.Equal(t, search.ModeFragment, mode)

	require.True(t, cfg.Search.UnalignedOnly)
	require.Equal(t, 4, cfg.Search.Threads)
	require.Equal(t, []string{"/data/runs", "/data/refs"}, cfg.Repository.Roots)
	require.Equal(t, ".fsar", cfg.Repository.Extension, "unset keys keep their defaults")
	require.Equal(t, "archives", cfg.Repository.Remote.Bucket)

	level, err := cfg.Log.LevelValue()
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, level)
	require.Equal(t, 60, cfg.Output.Width)
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(EnvVar, writeConfig(t, "search:\n  threads: 8\n"))

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, 8, cfg.Search.Threads)

	t.Setenv(EnvVar, "")
	cfg, err = Load("")
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadEmptyFile(t *testing.T) {
	cfg, err := Load(writeConfig(t, ""))
	require.NoError(t, err)
	require.Equal(t, Default(), cfg)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"bad algorithm", "search:\n  algorithm: regex\n", errs.ErrInvalidAlgorithm},
		{"bad mode", "search:\n  mode: zigzag\n", errs.ErrInvalidConfig},
		{"zero threads", "search:\n  threads: 0\n", errs.ErrInvalidConfig},
		{"negative workers", "search:\n  workers: -2\n", errs.ErrInvalidConfig},
		{"unknown key", "search:\n  threadz: 2\n", errs.ErrInvalidConfig},
		{"malformed yaml", "search: [\n", errs.ErrInvalidConfig},
		{"extension without dot", "repository:\n  extension: fsar\n", errs.ErrInvalidConfig},
		{"remote without bucket", "repository:\n  remote:\n    enabled: true\n", errs.ErrInvalidConfig},
		{"bad level", "log:\n  level: loud\n", errs.ErrInvalidConfig},
		{"bad log format", "log:\n  format: xml\n", errs.ErrInvalidConfig},
		{"bad output", "output:\n  format: sam\n", errs.ErrInvalidConfig},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, errs.KindConfig, errs.KindOf(err))
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
