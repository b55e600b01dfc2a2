package main

import (
	"context"

	"go.uber.org/zap"

	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/server"
	"github.com/revelaction/tageval/tagger"
)

func serveCommand(ctx context.Context, opts ServeOptions, logger *zap.Logger) error {
	cfg := opts.Config

	tg, err := tagger.Open(ctx, cfg.Tagger)
	if err != nil {
		return err
	}

	srv := server.New(cfg.Corpus, tg, logger,
		eval.WithWorkers(cfg.Workers),
		eval.WithTimeout(cfg.Tagger.Timeout))

	return srv.ListenAndServe(ctx, cfg.Server.Addr, cfg.Server.ReadTimeout, cfg.Server.ShutdownTimeout)
}
