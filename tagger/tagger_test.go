package tagger

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	sent "github.com/revelaction/tageval/sentence"
)

func TestHTTPTag(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusOK)
			return
		}
		var in TextInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if in.Text != "Dogs bark" {
			http.Error(w, "unexpected text "+in.Text, http.StatusBadRequest)
			return
		}
		// HEAD as a JSON number, like spaCy based services send it
		_, _ = w.Write([]byte(`{"sentence":"Dogs bark","tokens":[
			{"FORM":"Dogs","LEMMA":"dog","UPOS":"NOUN","HEAD":2,"DEPREL":"nsubj"},
			{"FORM":"bark","LEMMA":"bark","UPOS":"VERB","HEAD":0,"DEPREL":"root"}]}`))
	}))
	defer srv.Close()

	tg, err := Open(context.Background(), Config{Kind: KindHTTP, URL: srv.URL})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tokens, err := tg.Tag(context.Background(), "Dogs bark")
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}

	want := []sent.Token{
		{Form: "Dogs", Lemma: "dog", Upos: "NOUN", Head: "2", Deprel: "nsubj"},
		{Form: "bark", Lemma: "bark", Upos: "VERB", Head: "0", Deprel: "root"},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestHTTPTagServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model crashed", http.StatusInternalServerError)
	}))
	defer srv.Close()

	tg := NewHTTP(srv.URL, 0)
	if _, err := tg.Tag(context.Background(), "x"); err == nil {
		t.Fatal("expected error on 500 response")
	}
}

func TestOpenHTTPUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := Open(context.Background(), Config{Kind: KindHTTP, URL: url}); err == nil {
		t.Fatal("expected error for closed server")
	}
}

func TestOpenUnknownKind(t *testing.T) {
	if _, err := Open(context.Background(), Config{Kind: "spacy"}); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestPredictions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pred.conllu")
	content := "1\tDogs\tdog\tNOUN\t_\t_\t2\tnsubj\t_\t_\n2\tbark\tbark\tVERB\t_\t_\t0\troot\t_\t_\n\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	tg, err := Open(context.Background(), Config{Kind: KindFile, File: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	tokens, err := tg.Tag(context.Background(), "Dogs bark")
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	if len(tokens) != 2 || tokens[1].Upos != "VERB" {
		t.Errorf("unexpected tokens %+v", tokens)
	}

	_, err = tg.Tag(context.Background(), "Cats meow")
	if !errors.Is(err, ErrNoPrediction) {
		t.Errorf("expected ErrNoPrediction, got %v", err)
	}
}

func TestNaive(t *testing.T) {
	tokens, err := Naive{}.Tag(context.Background(), "The Dog  runs")
	if err != nil {
		t.Fatal(err)
	}

	want := []sent.Token{
		{Form: "The", Lemma: "the", Upos: "NOUN", Head: "0", Deprel: "root"},
		{Form: "Dog", Lemma: "dog", Upos: "NOUN", Head: "1", Deprel: "dep"},
		{Form: "runs", Lemma: "runs", Upos: "NOUN", Head: "2", Deprel: "dep"},
	}
	if diff := cmp.Diff(want, tokens); diff != "" {
		t.Errorf("tokens mismatch (-want +got):\n%s", diff)
	}
}

func TestNewSentenceAnalysisHead(t *testing.T) {
	sa := NewSentenceAnalysis("a", []sent.Token{{Form: "a", Head: "_"}, {Form: "b", Head: "1"}})
	if sa.Tokens[0].Head != "0" {
		t.Errorf("expected non numeric head to become 0, got %q", sa.Tokens[0].Head)
	}
	if sa.Tokens[1].Head != "1" {
		t.Errorf("expected head 1, got %q", sa.Tokens[1].Head)
	}
}
