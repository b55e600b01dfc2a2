package main

import (
	"fmt"

	"github.com/revelaction/tageval/conllu"
	"github.com/revelaction/tageval/render"
)

func sentencesCommand(opts SentencesOptions, ui UI) error {
	corpus, err := conllu.Load(opts.Corpus)
	if err != nil {
		return err
	}

	r := render.NewRenderer(ui.Out)

	if opts.Index != nil {
		n := *opts.Index
		if n < 0 || n >= len(corpus) {
			return fmt.Errorf("sentence index %d out of bounds (0-%d)", n, len(corpus)-1)
		}
		r.Sentence(corpus[n], fmt.Sprintf("✍  %d ", n))
		fmt.Fprintln(ui.Out)
		r.Tokens(corpus[n])
		return nil
	}

	end := len(corpus)
	if opts.Count > 0 && opts.Start+opts.Count < end {
		end = opts.Start + opts.Count
	}
	for i := opts.Start; i < end; i++ {
		r.Sentence(corpus[i], fmt.Sprintf("%d ", i))
	}
	return nil
}
