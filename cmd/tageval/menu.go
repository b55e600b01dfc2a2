package main

import (
	"context"

	"github.com/revelaction/tageval/conllu"
	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/menu"
	"github.com/revelaction/tageval/tagger"
)

func menuCommand(ctx context.Context, opts MenuOptions, ui UI) error {
	cfg := opts.Config

	corpus, err := conllu.Load(cfg.Corpus)
	if err != nil {
		return err
	}
	tg, err := tagger.Open(ctx, cfg.Tagger)
	if err != nil {
		return err
	}

	h := menu.NewHandler(corpus, tg, newRenderer(ui, opts.Render),
		eval.WithWorkers(cfg.Workers),
		eval.WithTimeout(cfg.Tagger.Timeout))
	return h.Run(ctx)
}
