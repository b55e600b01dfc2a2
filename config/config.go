// Package config loads the tageval settings from an optional YAML file and
// the TAGEVAL_* environment variables. Command line flags are applied on
// top by the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/revelaction/tageval/tagger"
)

const (
	EnvConfig    = "TAGEVAL_CONFIG"
	EnvCorpus    = "TAGEVAL_CORPUS"
	EnvTaggerURL = "TAGEVAL_TAGGER_URL"
	EnvRuns      = "TAGEVAL_RUNS"
	EnvWorkers   = "TAGEVAL_WORKERS"

	DefaultAddr      = ":8000"
	DefaultOutputDir = "outputs"
)

type Config struct {
	// Gold corpus used by eval, matrix, export and the server
	Corpus string `yaml:"corpus"`

	Tagger tagger.Config `yaml:"tagger"`

	// Number of sentences tagged concurrently
	Workers int `yaml:"workers"`

	// Directory or SQLite file where evaluation runs are stored. Empty
	// disables storage.
	Runs string `yaml:"runs"`

	Server Server `yaml:"server"`

	OutputDir string `yaml:"output_dir"`
}

type Server struct {
	Addr            string        `yaml:"addr"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Tagger:  tagger.Config{Kind: tagger.KindNaive},
		Workers: 1,
		Server: Server{
			Addr:            DefaultAddr,
			ReadTimeout:     30 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		OutputDir: DefaultOutputDir,
	}
}

// Load returns the default configuration overlaid with the YAML file at path
// and then the environment. An empty path falls back to $TAGEVAL_CONFIG; a
// missing file is only an error when the path was given explicitly.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = os.Getenv(EnvConfig)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvCorpus); v != "" {
		c.Corpus = v
	}
	if v := os.Getenv(EnvTaggerURL); v != "" {
		c.Tagger.Kind = tagger.KindHTTP
		c.Tagger.URL = v
	}
	if v := os.Getenv(EnvRuns); v != "" {
		c.Runs = v
	}
	if v := os.Getenv(EnvWorkers); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvWorkers, err)
		}
		c.Workers = n
	}
	return nil
}

// Validate checks values that would only fail later, deep inside a run.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}

	kindOK := false
	for _, k := range tagger.SupportedKinds() {
		if c.Tagger.Kind == k {
			kindOK = true
		}
	}
	if !kindOK {
		return fmt.Errorf("unknown tagger kind %q", c.Tagger.Kind)
	}

	if c.Tagger.Timeout < 0 {
		return errors.New("tagger timeout must not be negative")
	}
	return nil
}
