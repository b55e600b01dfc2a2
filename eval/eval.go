// Package eval scores a tagger against a gold corpus. Gold and predicted
// tokens are aligned by position: the first min(|gold|, |pred|) tokens are
// compared pairwise and every residual token on the longer side counts as a
// miss. Sentences are never re-aligned by content, so a tagger that
// tokenizes differently from the gold corpus is scored against shifted
// tokens.
package eval

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/tagger"
)

// Result is the aggregate accuracy of an evaluation.
type Result struct {
	Total    int     `json:"total"`
	Correct  int     `json:"correct"`
	Accuracy float64 `json:"accuracy"`
}

// Diagnostic records a sentence that was left out because the tagger failed
// on it.
type Diagnostic struct {
	// Index of the sentence in the corpus (or of the text in the input),
	// starting at 0.
	Index int
	Text  string
	Err   error
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("sentence %d skipped: %v", d.Index, d.Err)
}

func (d Diagnostic) MarshalJSON() ([]byte, error) {
	msg := ""
	if d.Err != nil {
		msg = d.Err.Error()
	}
	return json.Marshal(struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
		Error string `json:"error"`
	}{d.Index, d.Text, msg})
}

// Report is the outcome of a single evaluation pass.
type Report struct {
	Result      Result       `json:"result"`
	Matrix      Matrix       `json:"matrix"`
	Diagnostics []Diagnostic `json:"diagnostics"`
}

// Observer is notified once per tagged sentence. With more than one worker
// SentenceDone is called concurrently.
type Observer interface {
	SentenceDone(index int, err error)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(index int, err error)

func (f ObserverFunc) SentenceDone(index int, err error) {
	f(index, err)
}

type options struct {
	workers  int
	timeout  time.Duration
	observer Observer
}

// Option configures an evaluation pass.
type Option func(*options)

// WithWorkers tags up to n sentences concurrently. Results do not depend on
// n.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithTimeout bounds every single tagger call. A call running over d fails
// its sentence only.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		o.timeout = d
	}
}

// WithObserver registers an Observer.
func WithObserver(obs Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

func newOptions(opts []Option) options {
	o := options{workers: 1}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Run tags every sentence of corpus once and computes both the accuracy and
// the confusion matrix.
func Run(ctx context.Context, corpus sent.Corpus, tg tagger.Tagger, opts ...Option) Report {
	texts := make([]string, len(corpus))
	for i, s := range corpus {
		texts[i] = s.Text()
	}

	outcomes := tagAll(ctx, tg, texts, newOptions(opts))

	report := Report{Matrix: NewMatrix()}
	for i, s := range corpus {
		oc := outcomes[i]
		if oc.err != nil {
			report.Diagnostics = append(report.Diagnostics, Diagnostic{Index: i, Text: texts[i], Err: oc.err})
			continue
		}

		align(s.Labels(), labels(oc.tokens), func(gold, pred string, aligned bool) {
			report.Result.Total++
			if aligned && gold == pred {
				report.Result.Correct++
			}
			report.Matrix.Add(gold, pred)
		})
	}

	report.Result.Accuracy = accuracy(report.Result.Correct, report.Result.Total)
	return report
}

// Evaluate computes the token accuracy of tg over corpus.
func Evaluate(ctx context.Context, corpus sent.Corpus, tg tagger.Tagger, opts ...Option) (Result, []Diagnostic) {
	r := Run(ctx, corpus, tg, opts...)
	return r.Result, r.Diagnostics
}

// BuildMatrix computes the gold x predicted confusion matrix of tg over
// corpus.
func BuildMatrix(ctx context.Context, corpus sent.Corpus, tg tagger.Tagger, opts ...Option) (Matrix, []Diagnostic) {
	r := Run(ctx, corpus, tg, opts...)
	return r.Matrix, r.Diagnostics
}

// align visits the aligned label pairs, then the residual labels of the
// longer sequence paired with Missing.
func align(gold, pred []string, visit func(gold, pred string, aligned bool)) {
	n := min(len(gold), len(pred))

	for i := 0; i < n; i++ {
		visit(gold[i], pred[i], true)
	}
	for _, g := range gold[n:] {
		visit(g, Missing, false)
	}
	for _, p := range pred[n:] {
		visit(Missing, p, false)
	}
}

func accuracy(correct, total int) float64 {
	if total == 0 {
		return 0.0
	}
	return float64(correct) / float64(total)
}

func labels(tokens []sent.Token) []string {
	return sent.Sentence(tokens).Labels()
}

type outcome struct {
	tokens []sent.Token
	err    error
}

// tagAll tags every text and stores the outcome at the text's index. Tagger
// failures never stop the other texts.
func tagAll(ctx context.Context, tg tagger.Tagger, texts []string, o options) []outcome {
	outcomes := make([]outcome, len(texts))

	do := func(i int) {
		tokens, err := tagOne(ctx, tg, texts[i], o.timeout)
		outcomes[i] = outcome{tokens: tokens, err: err}
		if o.observer != nil {
			o.observer.SentenceDone(i, err)
		}
	}

	if o.workers <= 1 {
		for i := range texts {
			do(i)
		}
		return outcomes
	}

	var g errgroup.Group
	g.SetLimit(o.workers)
	for i := range texts {
		g.Go(func() error {
			do(i)
			return nil
		})
	}
	_ = g.Wait()

	return outcomes
}

func tagOne(ctx context.Context, tg tagger.Tagger, text string, timeout time.Duration) (tokens []sent.Token, err error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			tokens, err = nil, fmt.Errorf("tagger panic: %v", r)
		}
	}()

	return tg.Tag(ctx, text)
}
