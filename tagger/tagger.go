// Package tagger holds the external part-of-speech tagging capability that
// the evaluator drives. A Tagger is built once by the caller with Open and
// shared read-only afterwards.
package tagger

import (
	"context"
	"errors"
	"fmt"
	"time"

	sent "github.com/revelaction/tageval/sentence"
)

const (
	KindHTTP  = "http"
	KindFile  = "file"
	KindNaive = "naive"
)

// ErrNoPrediction is returned by a prediction file tagger for a sentence
// text it has no prediction for.
var ErrNoPrediction = errors.New("no prediction for sentence")

// Tagger maps raw sentence text to an ordered sequence of tagged tokens.
type Tagger interface {
	Tag(ctx context.Context, text string) ([]sent.Token, error)
}

// Func adapts an ordinary function to the Tagger interface.
type Func func(ctx context.Context, text string) ([]sent.Token, error)

func (f Func) Tag(ctx context.Context, text string) ([]sent.Token, error) {
	return f(ctx, text)
}

// Config selects and configures a Tagger implementation.
type Config struct {
	Kind    string        `yaml:"kind"`
	URL     string        `yaml:"url"`
	File    string        `yaml:"file"`
	Timeout time.Duration `yaml:"timeout"`
}

// SupportedKinds returns the accepted values of Config.Kind.
func SupportedKinds() []string {
	return []string{KindHTTP, KindFile, KindNaive}
}

// Open initializes the tagger described by cfg. For the http kind the
// service is probed once so that a wrong URL fails here and not on every
// sentence.
func Open(ctx context.Context, cfg Config) (Tagger, error) {
	switch cfg.Kind {
	case KindHTTP:
		if cfg.URL == "" {
			return nil, errors.New("http tagger needs an url")
		}
		h := NewHTTP(cfg.URL, cfg.Timeout)
		if err := h.Ping(ctx); err != nil {
			return nil, fmt.Errorf("tagger at %s not reachable: %w", cfg.URL, err)
		}
		return h, nil

	case KindFile:
		if cfg.File == "" {
			return nil, errors.New("file tagger needs a prediction file")
		}
		return LoadPredictions(cfg.File)

	case KindNaive, "":
		return Naive{}, nil
	}

	return nil, fmt.Errorf("unknown tagger kind: %s", cfg.Kind)
}

// Describe returns a short human readable name of the tagger configuration,
// stored alongside evaluation runs.
func (c Config) Describe() string {
	switch c.Kind {
	case KindHTTP:
		return "http:" + c.URL
	case KindFile:
		return "file:" + c.File
	}
	return KindNaive
}
