package filesystem

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/revelaction/tageval/storage"
)

const ext = ".json"

// RunStore keeps one JSON file per run in a directory.
type RunStore struct {
	runDir string
}

var _ storage.RunRepository = (*RunStore)(nil)

// NewRunStore creates a filesystem run store in runDir, which must exist.
func NewRunStore(runDir string) *RunStore {
	return &RunStore{runDir: runDir}
}

func (h *RunStore) List() ([]storage.Run, error) {
	files, err := os.ReadDir(h.runDir)
	if err != nil {
		return nil, err
	}

	var runs []storage.Run
	for _, file := range files {
		if file.IsDir() || filepath.Ext(file.Name()) != ext {
			continue
		}

		run, err := ReadRun(filepath.Join(h.runDir, file.Name()))
		if err != nil {
			return nil, err
		}
		run.Matrix = nil
		runs = append(runs, run)
	}

	sort.Slice(runs, func(i, j int) bool {
		if !runs[i].CreatedAt.Equal(runs[j].CreatedAt) {
			return runs[i].CreatedAt.After(runs[j].CreatedAt)
		}
		return runs[i].Id < runs[j].Id
	})

	return runs, nil
}

func (h *RunStore) Read(id string) (storage.Run, error) {
	run, err := ReadRun(h.path(id))
	if errors.Is(err, fs.ErrNotExist) {
		return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
	}
	return run, err
}

func (h *RunStore) Write(run storage.Run) error {
	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return err
	}

	if err := os.WriteFile(h.path(run.Id), data, 0644); err != nil {
		return fmt.Errorf("failed to write run %s: %w", run.Id, err)
	}
	return nil
}

func (h *RunStore) path(id string) string {
	return filepath.Join(h.runDir, filepath.Base(id)+ext)
}

// ReadRun reads a Run JSON from the given path and unmarshals it.
func ReadRun(path string) (storage.Run, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return storage.Run{}, fmt.Errorf("IO error: %w", err)
	}

	var run storage.Run
	err = json.Unmarshal(f, &run)
	if err != nil {
		return storage.Run{}, fmt.Errorf("JSON decoding error: %w", err)
	}

	return run, nil
}
