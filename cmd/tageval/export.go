package main

import (
	"context"
	"fmt"
	"io"

	"github.com/revelaction/tageval/conllu"
	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/render"
	"github.com/revelaction/tageval/tagger"
)

// exportCommand writes the analysis table of the gold corpus, or of a
// single text tagged on the fly.
func exportCommand(ctx context.Context, opts ExportOptions, ui UI) error {
	var rows []eval.AnalysisRow
	prefix := "ud_analysis"

	if opts.Text == "" {
		corpus, err := conllu.Load(opts.Config.Corpus)
		if err != nil {
			return err
		}
		rows = eval.GoldRows(corpus)
	} else {
		tg, err := tagger.Open(ctx, opts.Config.Tagger)
		if err != nil {
			return err
		}
		tokens, err := tg.Tag(ctx, opts.Text)
		if err != nil {
			return fmt.Errorf("analysis failed: %w", err)
		}
		rows = eval.Rows(opts.Text, tokens)
		prefix = "user_analysis"
	}

	out := opts.Out
	if out == "" {
		out = timestampedPath(opts.Config.OutputDir, prefix)
	}
	err := render.SaveFile(out, func(w io.Writer) error {
		return render.WriteAnalysisRows(w, rows)
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(ui.Out, "Analysis of %d tokens exported to %s\n", len(rows), out)
	return nil
}
