package main

import (
	"fmt"
	"time"

	"github.com/revelaction/tageval/render"
)

func runsCommand(opts RunsOptions, ui UI) error {
	var pool Pool
	defer pool.Close()
	repo, err := NewRunRepository(&pool, opts.Runs)
	if err != nil {
		return err
	}

	r := newRenderer(ui, opts.Render)

	if opts.Id != "" {
		run, err := repo.Read(opts.Id)
		if err != nil {
			return err
		}
		if r.Format == "json" {
			return render.NewJSONRenderer(ui.Out).Render(run)
		}
		fmt.Fprintf(ui.Out, "%s %s %s\n", run.Id, run.Corpus, run.Tagger)
		if err := r.Result(run.Result, run.Skipped); err != nil {
			return err
		}
		return r.Matrix(run.Matrix)
	}

	runs, err := repo.List()
	if err != nil {
		return err
	}

	switch r.Format {
	case "json":
		return render.NewJSONRenderer(ui.Out).Render(runs)
	case "csv":
		fmt.Fprintln(ui.Out, "id,created_at,corpus,tagger,total,correct,accuracy,skipped")
		for _, run := range runs {
			fmt.Fprintf(ui.Out, "%s,%s,%s,%s,%d,%d,%.6f,%d\n", run.Id, run.CreatedAt.Format(time.RFC3339), run.Corpus, run.Tagger, run.Result.Total, run.Result.Correct, run.Result.Accuracy, run.Skipped)
		}
		return nil
	}

	for _, run := range runs {
		fmt.Fprintf(ui.Out, "%s  %s  %.4f  %6d tokens  %s  %s\n", run.Id, run.CreatedAt.Local().Format("2006-01-02 15:04:05"), run.Result.Accuracy, run.Result.Total, run.Tagger, run.Corpus)
	}
	return nil
}
