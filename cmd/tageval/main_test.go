package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/revelaction/tageval/config"
	"github.com/revelaction/tageval/conllu"
	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/storage"
)

const corpusData = "# text = The cat\n" +
	"1\tThe\tthe\tDET\tDT\t_\t2\tdet\t_\t_\n" +
	"2\tcat\tcat\tNOUN\tNN\t_\t0\troot\t_\t_\n" +
	"\n" +
	"1\tDogs\tdog\tNOUN\tNNS\t_\t2\tnsubj\t_\t_\n" +
	"2\tbark\tbark\tVERB\tVBP\t_\t0\troot\t_\t_\n"

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.EnvConfig, config.EnvCorpus, config.EnvTaggerURL, config.EnvRuns, config.EnvWorkers} {
		t.Setenv(k, "")
	}
}

func writeCorpus(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gold.conllu")
	if err := os.WriteFile(path, []byte(corpusData), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	ui := UI{Out: &out, Err: &errOut}
	err := newApp(ui).Run(append([]string{"tageval"}, args...))
	return out.String(), errOut.String(), err
}

type resultOutput struct {
	eval.Result
	Skipped int `json:"skipped"`
}

func TestEvalCommand(t *testing.T) {
	clearEnv(t)
	corpus := writeCorpus(t)

	out, _, err := run(t, "eval", "--corpus", corpus, "--format", "json", "--progress=false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got resultOutput
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decoding %q: %v", out, err)
	}
	want := resultOutput{Result: eval.Result{Total: 4, Correct: 2, Accuracy: 0.5}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("result mismatch (-want +got):\n%s", diff)
	}
}

func TestEvalCommandCorpusFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvCorpus, writeCorpus(t))

	out, _, err := run(t, "eval", "--format", "csv", "--no-color")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := "total,correct,accuracy,skipped\n4,2,0.500000,0\n"; out != want {
		t.Errorf("unexpected output %q", out)
	}
}

func TestEvalCommandErrors(t *testing.T) {
	clearEnv(t)

	if _, _, err := run(t, "eval"); !errors.Is(err, errNoCorpus) {
		t.Errorf("expected errNoCorpus, got %v", err)
	}

	missing := filepath.Join(t.TempDir(), "none.conllu")
	if _, _, err := run(t, "eval", "--corpus", missing); !errors.Is(err, conllu.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	corpus := writeCorpus(t)
	if _, _, err := run(t, "eval", "--corpus", corpus, "--format", "xml"); err == nil {
		t.Error("expected error for unknown format")
	}
	if _, _, err := run(t, "eval", "--corpus", corpus, "--tagger", "spacy"); err == nil {
		t.Error("expected error for unknown tagger")
	}
	if _, _, err := run(t, "eval", "--corpus", corpus, "--save"); err == nil {
		t.Error("expected error for --save without runs")
	}
}

func TestEvalSaveAndRuns(t *testing.T) {
	tests := []struct {
		name string
		runs func(t *testing.T) string
	}{
		{"filesystem", func(t *testing.T) string { return t.TempDir() }},
		{"sqlite", func(t *testing.T) string { return filepath.Join(t.TempDir(), "runs.db") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			corpus := writeCorpus(t)
			runsPath := tt.runs(t)

			_, errOut, err := run(t, "eval", "--corpus", corpus, "--runs", runsPath, "--save", "--format", "json", "--progress=false", "--workers", "2")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.Contains(errOut, "Run saved with id ") {
				t.Fatalf("unexpected stderr %q", errOut)
			}

			out, _, err := run(t, "runs", "--runs", runsPath, "--format", "json")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var runs []storage.Run
			if err := json.Unmarshal([]byte(out), &runs); err != nil {
				t.Fatalf("decoding %q: %v", out, err)
			}
			if len(runs) != 1 || runs[0].Corpus != corpus || runs[0].Tagger != "naive" {
				t.Fatalf("unexpected runs %+v", runs)
			}

			out, _, err = run(t, "matrix", "--runs", runsPath, "--run", runs[0].Id, "--format", "csv", "--out", filepath.Join(t.TempDir(), "m.csv"))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(out, "Gold\\Pred,DET,NOUN,VERB\n") {
				t.Errorf("unexpected matrix %q", out)
			}

			if _, _, err := run(t, "runs", "--runs", runsPath, "nope"); !errors.Is(err, storage.ErrRunNotFound) {
				t.Errorf("expected ErrRunNotFound, got %v", err)
			}
		})
	}
}

func TestMatrixCommand(t *testing.T) {
	clearEnv(t)
	corpus := writeCorpus(t)
	outDir := filepath.Join(t.TempDir(), "outputs")

	_, errOut, err := run(t, "matrix", "--corpus", corpus, "--out-dir", outDir, "--format", "json", "--progress=false")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(errOut, "Confusion matrix saved to "+filepath.Join(outDir, "confusion_matrix_")) {
		t.Errorf("unexpected stderr %q", errOut)
	}

	files, err := filepath.Glob(filepath.Join(outDir, "confusion_matrix_*.csv"))
	if err != nil || len(files) != 1 {
		t.Fatalf("expected one matrix file, got %v (%v)", files, err)
	}
	b, err := os.ReadFile(files[0])
	if err != nil {
		t.Fatal(err)
	}
	want := "Gold\\Pred,DET,NOUN,VERB\nDET,0,1,0\nNOUN,0,2,0\nVERB,0,1,0\n"
	if string(b) != want {
		t.Errorf("unexpected csv:\n%s", b)
	}
}

func TestExportCommand(t *testing.T) {
	clearEnv(t)
	corpus := writeCorpus(t)
	dir := t.TempDir()

	gold := filepath.Join(dir, "gold.csv")
	if _, _, err := run(t, "export", "--corpus", corpus, "--out", gold); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := os.ReadFile(gold)
	if err != nil {
		t.Fatal(err)
	}
	want := "sentence,token,lemma,pos,dependency\n" +
		"The cat,The,the,DET,det\n" +
		"The cat,cat,cat,NOUN,root\n" +
		"Dogs bark,Dogs,dog,NOUN,nsubj\n" +
		"Dogs bark,bark,bark,VERB,root\n"
	if string(b) != want {
		t.Errorf("unexpected gold export:\n%s", b)
	}

	user := filepath.Join(dir, "user.csv")
	if _, _, err := run(t, "export", "--out", user, "Birds", "fly"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err = os.ReadFile(user)
	if err != nil {
		t.Fatal(err)
	}
	want = "sentence,token,lemma,pos,dependency\n" +
		"Birds fly,Birds,birds,NOUN,root\n" +
		"Birds fly,fly,fly,NOUN,dep\n"
	if string(b) != want {
		t.Errorf("unexpected user export:\n%s", b)
	}
}

func TestAnalyzeCommand(t *testing.T) {
	clearEnv(t)

	out, _, err := run(t, "analyze", "--format", "csv", "Birds", "fly")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Birds fly,Birds,birds,NOUN,root\n") {
		t.Errorf("unexpected output %q", out)
	}

	if _, _, err := run(t, "analyze"); err == nil {
		t.Error("expected error without text")
	}
}

func TestBatchCommand(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	outDir := filepath.Join(dir, "outputs")
	if err := os.WriteFile(filepath.Join(dir, "news.txt"), []byte("The cat\nDogs bark\n"), 0644); err != nil {
		t.Fatal(err)
	}

	out, _, err := run(t, "batch", "--out-dir", outDir, dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "(2 sentences, 0 skipped)") {
		t.Errorf("unexpected output %q", out)
	}
	if _, err := os.Stat(filepath.Join(outDir, "news_analysis.csv")); err != nil {
		t.Errorf("missing output: %v", err)
	}

	if _, _, err := run(t, "batch", filepath.Join(dir, "none.txt")); err == nil {
		t.Error("expected error for missing input")
	}
}

func TestSentencesAndStatCommands(t *testing.T) {
	clearEnv(t)
	corpus := writeCorpus(t)

	out, _, err := run(t, "sentences", "--corpus", corpus)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "0 The cat\n1 Dogs bark\n" {
		t.Errorf("unexpected sentences %q", out)
	}

	if _, _, err := run(t, "sentences", "--corpus", corpus, "5"); err == nil {
		t.Error("expected out of bounds error")
	}

	out, _, err = run(t, "stat", "--corpus", corpus, "--format", "csv")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "pos,count\nNOUN,2\nDET,1\nVERB,1\n" {
		t.Errorf("unexpected stat %q", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, _, err := run(t, "version")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "tageval version dev (commit: none)\n" {
		t.Errorf("unexpected output %q", out)
	}
}
