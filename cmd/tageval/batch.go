package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/revelaction/tageval/batch"
	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/tagger"
)

func batchCommand(ctx context.Context, opts BatchOptions, logger *zap.Logger, ui UI) error {
	info, err := os.Stat(opts.Input)
	if err != nil {
		return fmt.Errorf("input not found: %s", opts.Input)
	}

	tg, err := tagger.Open(ctx, opts.Config.Tagger)
	if err != nil {
		return err
	}

	p := batch.NewProcessor(tg, logger,
		eval.WithWorkers(opts.Config.Workers),
		eval.WithTimeout(opts.Config.Tagger.Timeout))

	if !info.IsDir() {
		out := opts.Out
		if out == "" {
			out = batch.OutputPath(opts.Input, opts.Config.OutputDir)
		}
		res, err := p.File(ctx, opts.Input, out)
		if err != nil {
			return err
		}
		printFileResult(ui, res)
		return nil
	}

	results, err := p.Dir(ctx, opts.Input, opts.Config.OutputDir)
	for _, res := range results {
		printFileResult(ui, res)
	}
	if err != nil {
		return fmt.Errorf("%d of %d files failed: %w", countFailed(results), len(results), err)
	}
	return nil
}

func printFileResult(ui UI, res batch.FileResult) {
	if res.Err != nil {
		fmt.Fprintf(ui.Out, "✗ %s: %v\n", res.Input, res.Err)
		return
	}
	fmt.Fprintf(ui.Out, "✓ %s -> %s (%d sentences, %d skipped)\n", res.Input, res.Output, res.Sentences, res.Skipped)
}

func countFailed(results []batch.FileResult) int {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	return n
}
