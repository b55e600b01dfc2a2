package sentence

import "strings"

// Token represents a word of an annotated sentence, with POS and dependency
// metadata.
type Token struct {
	// The unmodified word
	Form string `json:"FORM"`

	// The lemma of the word
	Lemma string `json:"LEMMA"`

	// Universal part-of-speech label
	Upos string `json:"UPOS"`

	// 1-based index of the head token, "0" for the root. Kept as read from
	// the corpus.
	Head string `json:"HEAD"`

	Deprel string `json:"DEPREL"`
}

// Sentence is a sequence of tokens in surface order.
type Sentence []Token

// Corpus is a collection of Sentence in file order
type Corpus []Sentence

// Text reconstructs the surface text of the sentence by joining the token
// forms with a single space. The source spacing is not recovered.
func (s Sentence) Text() string {
	forms := make([]string, len(s))
	for i, t := range s {
		forms[i] = t.Form
	}
	return strings.Join(forms, " ")
}

// Labels returns the UPOS label of every token.
func (s Sentence) Labels() []string {
	labels := make([]string, len(s))
	for i, t := range s {
		labels[i] = t.Upos
	}
	return labels
}

// NumTokens returns the number of tokens over all sentences.
func (c Corpus) NumTokens() int {
	n := 0
	for _, s := range c {
		n += len(s)
	}
	return n
}
