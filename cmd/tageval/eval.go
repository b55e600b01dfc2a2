package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/revelaction/tageval/config"
	"github.com/revelaction/tageval/conllu"
	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/render"
	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/storage"
	"github.com/revelaction/tageval/tagger"
)

const timestampLayout = "20060102_150405"

func evalCommand(ctx context.Context, opts EvalOptions, logger *zap.Logger, ui UI) error {
	corpus, tg, err := setupEvaluation(ctx, opts.Config)
	if err != nil {
		return err
	}

	report := evaluate(ctx, opts.Config, corpus, tg, opts.Progress && opts.Render.Format == render.Defaultformat, logger)

	r := newRenderer(ui, opts.Render)
	if err := r.Result(report.Result, len(report.Diagnostics)); err != nil {
		return err
	}
	if r.Format == render.Defaultformat {
		r.Diagnostics(report.Diagnostics)
	}

	if !opts.Save {
		return nil
	}

	var pool Pool
	defer pool.Close()
	repo, err := NewRunRepository(&pool, opts.Config.Runs)
	if err != nil {
		return err
	}

	run := storage.NewRun(opts.Config.Corpus, opts.Config.Tagger.Describe(), report)
	if err := repo.Write(run); err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	fmt.Fprintf(ui.Err, "Run saved with id %s\n", run.Id)
	return nil
}

func matrixCommand(ctx context.Context, opts MatrixOptions, logger *zap.Logger, ui UI) error {
	var m eval.Matrix

	if opts.RunId != "" {
		var pool Pool
		defer pool.Close()
		repo, err := NewRunRepository(&pool, opts.Config.Runs)
		if err != nil {
			return err
		}
		run, err := repo.Read(opts.RunId)
		if err != nil {
			return err
		}
		m = run.Matrix
	} else {
		corpus, tg, err := setupEvaluation(ctx, opts.Config)
		if err != nil {
			return err
		}
		m = evaluate(ctx, opts.Config, corpus, tg, opts.Progress && opts.Render.Format == render.Defaultformat, logger).Matrix
	}

	r := newRenderer(ui, opts.Render)
	if err := r.Matrix(m); err != nil {
		return err
	}
	if r.Format == render.Defaultformat {
		fmt.Fprintln(ui.Out)
		if err := r.Scores(m.Scores()); err != nil {
			return err
		}
	}

	out := opts.Out
	if out == "" {
		out = timestampedPath(opts.Config.OutputDir, "confusion_matrix")
	}
	err := render.SaveFile(out, func(w io.Writer) error {
		return render.WriteConfusionMatrix(w, m)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(ui.Err, "Confusion matrix saved to %s\n", out)
	return nil
}

func setupEvaluation(ctx context.Context, cfg config.Config) (sent.Corpus, tagger.Tagger, error) {
	corpus, err := conllu.Load(cfg.Corpus)
	if err != nil {
		return nil, nil, err
	}

	tg, err := tagger.Open(ctx, cfg.Tagger)
	if err != nil {
		return nil, nil, err
	}
	return corpus, tg, nil
}

// evaluate runs one evaluation pass. Skipped sentences are logged.
func evaluate(ctx context.Context, cfg config.Config, corpus sent.Corpus, tg tagger.Tagger, progress bool, logger *zap.Logger) eval.Report {
	opts := []eval.Option{eval.WithWorkers(cfg.Workers), eval.WithTimeout(cfg.Tagger.Timeout)}

	if progress && len(corpus) > 0 {
		pb := startProgress(len(corpus))
		defer pb.Stop()
		opts = append(opts, eval.WithObserver(pb))
	}

	logger.Debug("evaluation started",
		zap.String("corpus", cfg.Corpus),
		zap.String("tagger", cfg.Tagger.Describe()),
		zap.Int("sentences", len(corpus)),
		zap.Int("workers", cfg.Workers))

	report := eval.Run(ctx, corpus, tg, opts...)
	for _, d := range report.Diagnostics {
		logger.Warn("sentence skipped", zap.Int("sentence", d.Index), zap.Error(d.Err))
	}
	return report
}

func timestampedPath(dir, prefix string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.csv", prefix, time.Now().Format(timestampLayout)))
}
