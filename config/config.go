// Package config loads the fragscan configuration file.
//
// The file is YAML and is read from an explicit path, either the --config flag or the
// FRAGSCAN_CONFIG environment variable. Values missing from the file keep their
// defaults; command-line flags override the file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/arloliu/fragscan/errs"
	"github.com/arloliu/fragscan/format"
	"github.com/arloliu/fragscan/output"
	"github.com/arloliu/fragscan/repository"
	"github.com/arloliu/fragscan/search"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "FRAGSCAN_CONFIG"

// Config is the complete fragscan configuration.
type Config struct {
	Search     SearchConfig     `yaml:"search"`
	Repository RepositoryConfig `yaml:"repository"`
	Log        LogConfig        `yaml:"log"`
	Output     OutputConfig     `yaml:"output"`
}

// SearchConfig configures match iteration.
type SearchConfig struct {
	// Algorithm is "default", "naive" or "skip".
	Algorithm string `yaml:"algorithm"`
	// Mode is "blob" or "fragment".
	Mode          string `yaml:"mode"`
	UnalignedOnly bool   `yaml:"unaligned_only"`
	// Threads is the number of accessions searched at once.
	Threads int `yaml:"threads"`
	// Workers is the number of buffers of one accession scanned at once.
	// Zero means GOMAXPROCS.
	Workers int  `yaml:"workers"`
	Ordered bool `yaml:"ordered"`
}

// RepositoryConfig configures accession resolution.
type RepositoryConfig struct {
	Roots     []string     `yaml:"roots"`
	Extension string       `yaml:"extension"`
	Remote    RemoteConfig `yaml:"remote"`
}

// RemoteConfig configures the S3 repository.
type RemoteConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Bucket   string `yaml:"bucket"`
	Prefix   string `yaml:"prefix"`
	Region   string `yaml:"region"`
	Endpoint string `yaml:"endpoint"`
	// PathStyle forces path-style addressing, needed by most S3-compatible stores.
	PathStyle bool `yaml:"path_style"`
}

// LogConfig configures the slog handler of the CLI.
type LogConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// OutputConfig configures match output.
type OutputConfig struct {
	// Format is ids, fasta or jsonl.
	Format string `yaml:"format"`
	// Width wraps FASTA sequence lines; zero disables wrapping.
	Width int `yaml:"width"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Search: SearchConfig{
			Algorithm: "default",
			Mode:      "blob",
			Threads:   1,
		},
		Repository: RepositoryConfig{
			Roots:     []string{"."},
			Extension: repository.DefaultExtension,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Output: OutputConfig{
			Format: "ids",
		},
	}
}

// Load reads the file at path over the defaults. An empty path falls back to
// FRAGSCAN_CONFIG; when both are empty the defaults are returned.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}

	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := cfg.decode(data); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", errs.ErrInvalidConfig, path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// decode rejects unknown keys so typos do not pass silently.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	err := dec.Decode(c)
	if errors.Is(err, io.EOF) {
		return nil
	}

	return err
}

// Validate checks every enumerated value and numeric bound.
func (c *Config) Validate() error {
	if _, err := c.Search.AlgorithmValue(); err != nil {
		return err
	}
	if _, err := c.Search.ModeValue(); err != nil {
		return err
	}
	if c.Search.Threads <= 0 {
		return fmt.Errorf("%w: search.threads must be positive, got %d", errs.ErrInvalidConfig, c.Search.Threads)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("%w: search.workers must not be negative, got %d", errs.ErrInvalidConfig, c.Search.Workers)
	}
	if c.Repository.Extension != "" && !strings.HasPrefix(c.Repository.Extension, ".") {
		return fmt.Errorf("%w: repository.extension %q must start with a dot", errs.ErrInvalidConfig, c.Repository.Extension)
	}
	if c.Repository.Remote.Enabled && c.Repository.Remote.Bucket == "" {
		return fmt.Errorf("%w: repository.remote.bucket is required when remote access is enabled", errs.ErrInvalidConfig)
	}
	if _, err := c.Log.LevelValue(); err != nil {
		return err
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return fmt.Errorf("%w: log.format %q", errs.ErrInvalidConfig, c.Log.Format)
	}
	if _, err := output.ParseFormat(c.Output.Format); err != nil {
		return err
	}
	if c.Output.Width < 0 {
		return fmt.Errorf("%w: output.width must not be negative, got %d", errs.ErrInvalidConfig, c.Output.Width)
	}

	return nil
}

// AlgorithmValue parses Algorithm.
func (s SearchConfig) AlgorithmValue() (format.Algorithm, error) {
	return format.ParseAlgorithm(s.Algorithm)
}

// ModeValue parses Mode.
func (s SearchConfig) ModeValue() (search.Mode, error) {
	return search.ParseMode(s.Mode)
}

// LevelValue parses Level.
func (l LogConfig) LevelValue() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return level, fmt.Errorf("%w: log.level %q", errs.ErrInvalidConfig, l.Level)
	}

	return level, nil
}
