package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	sent "github.com/revelaction/tageval/sentence"
	"github.com/revelaction/tageval/tagger"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}

func TestReadSentences(t *testing.T) {
	texts, err := ReadSentences(strings.NewReader("  The cat sat.\n\n   \nDogs bark.\r\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"The cat sat.", "Dogs bark."}
	if diff := cmp.Diff(want, texts); diff != "" {
		t.Errorf("sentences mismatch (-want +got):\n%s", diff)
	}
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "news.txt")
	out := filepath.Join(dir, "out", "news_analysis.csv")
	writeFile(t, in, "The cat\n\nDogs bark\n")

	p := NewProcessor(tagger.Naive{}, nil)
	res, err := p.File(context.Background(), in, out)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Sentences != 2 || res.Rows != 4 || res.Skipped != 0 {
		t.Errorf("unexpected result %+v", res)
	}

	want := "sentence,token,lemma,pos,dependency\n" +
		"The cat,The,the,NOUN,root\n" +
		"The cat,cat,cat,NOUN,dep\n" +
		"Dogs bark,Dogs,dogs,NOUN,root\n" +
		"Dogs bark,bark,bark,NOUN,dep\n"
	if got := readFile(t, out); got != want {
		t.Errorf("unexpected csv:\n%s", got)
	}
}

func TestFileSkipsFailingSentences(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.txt")
	writeFile(t, in, "good one\nbad\n")

	tg := tagger.Func(func(ctx context.Context, text string) ([]sent.Token, error) {
		if text == "bad" {
			return nil, errors.New("boom")
		}
		return tagger.Naive{}.Tag(ctx, text)
	})

	res, err := NewProcessor(tg, nil).File(context.Background(), in, filepath.Join(dir, "in_analysis.csv"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Rows != 2 || res.Skipped != 1 {
		t.Errorf("unexpected result %+v", res)
	}
}

func TestFileMissingInput(t *testing.T) {
	dir := t.TempDir()
	_, err := NewProcessor(tagger.Naive{}, nil).File(context.Background(), filepath.Join(dir, "none.txt"), filepath.Join(dir, "x.csv"))
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not exist error, got %v", err)
	}
}

func TestDir(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "outputs")
	writeFile(t, filepath.Join(dir, "b.txt"), "second file\n")
	writeFile(t, filepath.Join(dir, "a.txt"), "first file\n")
	writeFile(t, filepath.Join(dir, "notes.md"), "ignored\n")
	if err := os.Mkdir(filepath.Join(dir, "sub.txt"), 0755); err != nil {
		t.Fatal(err)
	}

	results, err := NewProcessor(tagger.Naive{}, nil).Dir(context.Background(), dir, outDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var outputs []string
	for _, r := range results {
		outputs = append(outputs, filepath.Base(r.Output))
	}
	want := []string{"a_analysis.csv", "b_analysis.csv"}
	if diff := cmp.Diff(want, outputs); diff != "" {
		t.Errorf("outputs mismatch (-want +got):\n%s", diff)
	}

	for _, name := range want {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("missing output %s: %v", name, err)
		}
	}
}

func TestDirContinuesAfterFailure(t *testing.T) {
	dir := t.TempDir()
	outDir := filepath.Join(dir, "outputs")
	writeFile(t, filepath.Join(dir, "a.txt"), "first\n")
	writeFile(t, filepath.Join(dir, "b.txt"), "second\n")

	// a file where the output directory should be makes a.txt fail
	if err := os.MkdirAll(filepath.Join(outDir, "a_analysis.csv"), 0755); err != nil {
		t.Fatal(err)
	}

	results, err := NewProcessor(tagger.Naive{}, nil).Dir(context.Background(), dir, outDir)
	if err == nil {
		t.Fatal("expected error")
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Err == nil {
		t.Errorf("expected a.txt to fail")
	}
	if results[1].Err != nil {
		t.Errorf("b.txt failed: %v", results[1].Err)
	}
	if _, err := os.Stat(filepath.Join(outDir, "b_analysis.csv")); err != nil {
		t.Errorf("missing b output: %v", err)
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath(filepath.Join("in", "report.v2.txt"), "out")
	if want := filepath.Join("out", "report.v2_analysis.csv"); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
