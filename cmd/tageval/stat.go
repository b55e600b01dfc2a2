package main

import (
	"fmt"

	"github.com/revelaction/tageval/conllu"
	"github.com/revelaction/tageval/render"
	"github.com/revelaction/tageval/stat"
)

func statCommand(opts StatOptions, ui UI) error {
	corpus, err := conllu.Load(opts.Corpus)
	if err != nil {
		return err
	}

	hdl := stat.NewHandler()
	hdl.Aggregate(corpus)
	stats := hdl.Get()

	switch opts.Format {
	case "json":
		return render.NewJSONRenderer(ui.Out).Render(stats)
	case "csv":
		fmt.Fprintln(ui.Out, "pos,count")
		for _, pc := range stats.PosRanking() {
			fmt.Fprintf(ui.Out, "%s,%d\n", pc.Pos, pc.Count)
		}
		return nil
	}

	fmt.Fprintf(ui.Out, "Num sentences %d, num tokens %d, num tokens per sentence %d\n", stats.NumSentences, stats.NumTokens, stats.TokensPerSentenceMean)
	for _, pc := range stats.PosRanking() {
		fmt.Fprintf(ui.Out, "%8s %d\n", pc.Pos, pc.Count)
	}
	return nil
}
