// Package batch tags plain text files, one sentence per line, and writes the
// per-token analysis of each file as CSV.
package batch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/render"
	"github.com/revelaction/tageval/tagger"
)

const (
	inputExt     = ".txt"
	outputSuffix = "_analysis.csv"
)

// Processor tags input files with a Tagger.
type Processor struct {
	tagger tagger.Tagger
	logger *zap.Logger
	opts   []eval.Option
}

func NewProcessor(tg tagger.Tagger, logger *zap.Logger, opts ...eval.Option) *Processor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Processor{tagger: tg, logger: logger, opts: opts}
}

// FileResult summarizes one processed input file.
type FileResult struct {
	Input     string
	Output    string
	Sentences int
	Rows      int
	Skipped   int
	Err       error
}

// ReadSentences returns the non blank lines of r, trimmed.
func ReadSentences(r io.Reader) ([]string, error) {
	var texts []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		texts = append(texts, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return texts, nil
}

// File tags every sentence of the file in and writes the analysis rows to
// out. Sentences the tagger fails on are logged and left out.
func (p *Processor) File(ctx context.Context, in, out string) (FileResult, error) {
	res := FileResult{Input: in, Output: out}

	f, err := os.Open(in)
	if err != nil {
		return res, fmt.Errorf("opening %s: %w", in, err)
	}
	texts, err := ReadSentences(f)
	f.Close()
	if err != nil {
		return res, fmt.Errorf("reading %s: %w", in, err)
	}
	res.Sentences = len(texts)

	rows, diags := eval.Analyze(ctx, p.tagger, texts, p.opts...)
	for _, d := range diags {
		p.logger.Warn("sentence skipped",
			zap.String("file", in),
			zap.Int("sentence", d.Index),
			zap.Error(d.Err))
	}
	res.Rows = len(rows)
	res.Skipped = len(diags)

	err = render.SaveFile(out, func(w io.Writer) error {
		return render.WriteAnalysisRows(w, rows)
	})
	if err != nil {
		return res, err
	}

	p.logger.Info("file processed",
		zap.String("input", in),
		zap.String("output", out),
		zap.Int("sentences", res.Sentences),
		zap.Int("skipped", res.Skipped))
	return res, nil
}

// Dir processes every .txt file of dir, in name order, writing
// <base>_analysis.csv files to outDir. A failing file is recorded in its
// FileResult and the remaining files are still processed. The returned
// error joins all file errors.
func (p *Processor) Dir(ctx context.Context, dir, outDir string) ([]FileResult, error) {
	inputs, err := Inputs(dir)
	if err != nil {
		return nil, err
	}

	var results []FileResult
	var errs []error
	for _, in := range inputs {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		res, err := p.File(ctx, in, OutputPath(in, outDir))
		if err != nil {
			p.logger.Error("file failed", zap.String("input", in), zap.Error(err))
			res.Err = err
			errs = append(errs, err)
		}
		results = append(results, res)
	}

	return results, errors.Join(errs...)
}

// Inputs returns the sorted .txt files directly under dir.
func Inputs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading input dir: %w", err)
	}

	var inputs []string
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != inputExt {
			continue
		}
		inputs = append(inputs, filepath.Join(dir, e.Name()))
	}
	sort.Strings(inputs)
	return inputs, nil
}

// OutputPath returns the analysis CSV path for input inside outDir.
func OutputPath(input, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	return filepath.Join(outDir, base+outputSuffix)
}
