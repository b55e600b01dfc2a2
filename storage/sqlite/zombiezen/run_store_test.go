package zombiezen

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/storage"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()

	pool, err := NewPool(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	t.Cleanup(func() { pool.Close() })

	if err := CreateRunTables(pool); err != nil {
		t.Fatalf("failed to create tables: %v", err)
	}
	// idempotent
	if err := CreateRunTables(pool); err != nil {
		t.Fatalf("failed to re-create tables: %v", err)
	}

	return NewRunStore(pool)
}

func TestRunStoreWriteRead(t *testing.T) {
	store := newTestStore(t)

	run := storage.Run{
		Id:        "0b8a0f3e-run",
		CreatedAt: time.Date(2024, 5, 1, 10, 0, 0, 123, time.UTC),
		Corpus:    "gold.conllu",
		Tagger:    "http://localhost:8000/analyze",
		Result:    eval.Result{Total: 5, Correct: 3, Accuracy: 0.6},
		Matrix: eval.Matrix{
			"NOUN":       {"NOUN": 2, "VERB": 1},
			"VERB":       {"VERB": 1},
			eval.Missing: {"PUNCT": 1},
		},
		Skipped: 1,
	}
	if err := store.Write(run); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	got, err := store.Read(run.Id)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if diff := cmp.Diff(run, got); diff != "" {
		t.Errorf("run mismatch (-want +got):\n%s", diff)
	}
}

func TestRunStoreDuplicateIdRollsBack(t *testing.T) {
	store := newTestStore(t)

	run := storage.Run{Id: "dup", CreatedAt: time.Now().UTC(), Matrix: eval.Matrix{"X": {"X": 1}}}
	if err := store.Write(run); err != nil {
		t.Fatal(err)
	}
	run.Matrix = eval.Matrix{"Y": {"Y": 9}}
	if err := store.Write(run); err == nil {
		t.Fatal("expected error on duplicate id")
	}

	got, err := store.Read("dup")
	if err != nil {
		t.Fatal(err)
	}
	if got.Matrix.Get("Y", "Y") != 0 || got.Matrix.Get("X", "X") != 1 {
		t.Errorf("failed write leaked cells: %v", got.Matrix)
	}
}

func TestRunStoreReadNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.Read("missing")
	if !errors.Is(err, storage.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestRunStoreList(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"a", "b", "c"} {
		run := storage.Run{Id: id, CreatedAt: base.Add(time.Duration(i) * time.Minute)}
		if err := store.Write(run); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := store.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}

	var ids []string
	for _, r := range runs {
		ids = append(ids, r.Id)
	}
	if diff := cmp.Diff([]string{"c", "b", "a"}, ids); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}
