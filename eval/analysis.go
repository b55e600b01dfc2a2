package eval

import (
	"context"

	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/tagger"
)

// AnalysisRow is one analysed token of the per-token export.
type AnalysisRow struct {
	Sentence   string `json:"sentence"`
	Token      string `json:"token"`
	Lemma      string `json:"lemma"`
	Pos        string `json:"pos"`
	Dependency string `json:"dependency"`
}

// Rows returns one AnalysisRow per token, all carrying text as sentence.
func Rows(text string, tokens []sent.Token) []AnalysisRow {
	rows := make([]AnalysisRow, len(tokens))
	for i, t := range tokens {
		rows[i] = AnalysisRow{
			Sentence:   text,
			Token:      t.Form,
			Lemma:      t.Lemma,
			Pos:        t.Upos,
			Dependency: t.Deprel,
		}
	}
	return rows
}

// GoldRows exports the gold annotations of corpus, in corpus order.
func GoldRows(corpus sent.Corpus) []AnalysisRow {
	rows := make([]AnalysisRow, 0, corpus.NumTokens())
	for _, s := range corpus {
		rows = append(rows, Rows(s.Text(), s)...)
	}
	return rows
}

// Analyze tags every text and returns the rows in input order, whatever the
// number of workers. Texts the tagger fails on produce no rows and a
// Diagnostic.
func Analyze(ctx context.Context, tg tagger.Tagger, texts []string, opts ...Option) ([]AnalysisRow, []Diagnostic) {
	outcomes := tagAll(ctx, tg, texts, newOptions(opts))

	var rows []AnalysisRow
	var diags []Diagnostic
	for i, oc := range outcomes {
		if oc.err != nil {
			diags = append(diags, Diagnostic{Index: i, Text: texts[i], Err: oc.err})
			continue
		}
		rows = append(rows, Rows(texts[i], oc.tokens)...)
	}
	return rows, diags
}
