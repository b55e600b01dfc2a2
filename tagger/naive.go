package tagger

import (
	"context"
	"strconv"
	"strings"

	sent "github.com/revelaction/tageval/sentence"
)

// Naive is an offline analyser: whitespace tokens, lower-cased lemma, every
// token a NOUN attached to the previous one. Useful as a floor when no real
// tagger is available.
type Naive struct{}

var _ Tagger = Naive{}

func (Naive) Tag(_ context.Context, text string) ([]sent.Token, error) {
	fields := strings.Fields(text)
	tokens := make([]sent.Token, len(fields))
	for i, f := range fields {
		deprel := "dep"
		if i == 0 {
			deprel = "root"
		}
		tokens[i] = sent.Token{
			Form:   f,
			Lemma:  strings.ToLower(f),
			Upos:   "NOUN",
			Head:   strconv.Itoa(i),
			Deprel: deprel,
		}
	}
	return tokens, nil
}
