package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/revelaction/tageval/storage"
	"github.com/revelaction/tageval/storage/filesystem"
	"github.com/revelaction/tageval/storage/sqlite/zombiezen"
)

// NewRunRepository returns the run store at path: a directory holds one
// JSON file per run, anything else is a SQLite file, created when missing.
func NewRunRepository(p *Pool, path string) (storage.RunRepository, error) {
	info, err := os.Stat(path)
	switch {
	case err == nil && info.IsDir():
		return filesystem.NewRunStore(path), nil
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("repository not accessible: %s: %w", path, err)
	}

	pool, err := p.Open(path)
	if err != nil {
		return nil, err
	}
	return zombiezen.NewRunStore(pool), nil
}
