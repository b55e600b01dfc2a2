package tagger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	sent "github.com/revelaction/tageval/sentence"
)

const maxResponseSize = 8 << 20

// TextInput is the request body of an analysis call.
type TextInput struct {
	Text string `json:"text"`
}

// TokenAnalysis is the wire form of a tagged token. HEAD travels as a JSON
// number.
type TokenAnalysis struct {
	Form   string      `json:"FORM"`
	Lemma  string      `json:"LEMMA"`
	Upos   string      `json:"UPOS"`
	Head   json.Number `json:"HEAD"`
	Deprel string      `json:"DEPREL"`
}

// SentenceAnalysis is the response body of an analysis call.
type SentenceAnalysis struct {
	Sentence string          `json:"sentence"`
	Tokens   []TokenAnalysis `json:"tokens"`
}

// NewSentenceAnalysis converts tagged tokens to their wire form.
func NewSentenceAnalysis(text string, tokens []sent.Token) SentenceAnalysis {
	sa := SentenceAnalysis{Sentence: text, Tokens: make([]TokenAnalysis, len(tokens))}
	for i, t := range tokens {
		head := t.Head
		if _, err := strconv.Atoi(head); err != nil {
			head = "0"
		}
		sa.Tokens[i] = TokenAnalysis{
			Form:   t.Form,
			Lemma:  t.Lemma,
			Upos:   t.Upos,
			Head:   json.Number(head),
			Deprel: t.Deprel,
		}
	}
	return sa
}

// SentenceTokens converts the wire tokens back to sentence tokens.
func (sa SentenceAnalysis) SentenceTokens() []sent.Token {
	tokens := make([]sent.Token, len(sa.Tokens))
	for i, t := range sa.Tokens {
		tokens[i] = sent.Token{
			Form:   t.Form,
			Lemma:  t.Lemma,
			Upos:   t.Upos,
			Head:   t.Head.String(),
			Deprel: t.Deprel,
		}
	}
	return tokens
}

// HTTP is a Tagger backed by a remote analysis service. The service answers
// POST requests carrying a TextInput with a SentenceAnalysis.
type HTTP struct {
	url    string
	client *http.Client
}

var _ Tagger = (*HTTP)(nil)

// NewHTTP creates an HTTP tagger posting to url. A zero timeout means no
// client side timeout.
func NewHTTP(url string, timeout time.Duration) *HTTP {
	return &HTTP{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

// Ping checks that the service answers at all. The status code is not
// inspected: many taggers do not serve GET on their analysis endpoint.
func (h *HTTP) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return err
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseSize))
	return resp.Body.Close()
}

func (h *HTTP) Tag(ctx context.Context, text string) ([]sent.Token, error) {
	body, err := json.Marshal(TextInput{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("tagger returned %s: %s", resp.Status, bytes.TrimSpace(msg))
	}

	var sa SentenceAnalysis
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&sa); err != nil {
		return nil, fmt.Errorf("JSON decoding error: %w", err)
	}

	return sa.SentenceTokens(), nil
}
