package stat

import (
	"sort"

	sent "github.com/revelaction/tageval/sentence"
)

type Handler struct {
	stats Stats
}

type Stats struct {
	NumSentences          int            `json:"sentences"`
	NumTokens             int            `json:"tokens"`
	TokensPerSentenceMean int            `json:"tokens_per_sentence_mean"`
	TokensPerSentenceDis  map[int]int    `json:"tokens_per_sentence"`
	PosFrequency          map[string]int `json:"pos"`
}

// PosCount is a label and its number of gold tokens.
type PosCount struct {
	Pos   string
	Count int
}

func (h *Handler) Get() Stats {
	return h.stats
}

func NewHandler() *Handler {
	stats := Stats{TokensPerSentenceDis: map[int]int{}, PosFrequency: map[string]int{}}
	return &Handler{
		stats: stats,
	}
}

// Aggregate adds the sentences of corpus to the statistics. It can be called
// more than once.
func (h *Handler) Aggregate(corpus sent.Corpus) {
	h.stats.NumSentences += len(corpus)
	for _, sentence := range corpus {
		h.stats.NumTokens += len(sentence)
		h.stats.TokensPerSentenceDis[len(sentence)]++
		for _, t := range sentence {
			h.stats.PosFrequency[t.Upos]++
		}
	}

	if h.stats.NumSentences > 0 {
		h.stats.TokensPerSentenceMean = h.stats.NumTokens / h.stats.NumSentences
	}
}

// PosRanking returns the gold label frequencies, most frequent first, ties
// by label.
func (s Stats) PosRanking() []PosCount {
	ranking := make([]PosCount, 0, len(s.PosFrequency))
	for pos, n := range s.PosFrequency {
		ranking = append(ranking, PosCount{Pos: pos, Count: n})
	}

	sort.Slice(ranking, func(i, j int) bool {
		if ranking[i].Count != ranking[j].Count {
			return ranking[i].Count > ranking[j].Count
		}
		return ranking[i].Pos < ranking[j].Pos
	})
	return ranking
}
