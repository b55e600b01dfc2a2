package main

import (
	"context"
	"fmt"

	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/render"
	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/tagger"
)

func analyzeCommand(ctx context.Context, opts AnalyzeOptions, ui UI) error {
	tg, err := tagger.Open(ctx, opts.Config.Tagger)
	if err != nil {
		return err
	}

	tokens, err := tg.Tag(ctx, opts.Text)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	switch opts.Render.Format {
	case "json":
		return render.NewJSONRenderer(ui.Out).Render(tagger.NewSentenceAnalysis(opts.Text, tokens))
	case "csv":
		return render.WriteAnalysisRows(ui.Out, eval.Rows(opts.Text, tokens))
	}

	r := newRenderer(ui, opts.Render)
	r.Tokens(sent.Sentence(tokens))
	return nil
}
