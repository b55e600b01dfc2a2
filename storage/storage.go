package storage

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/revelaction/tageval/eval"
)

// ErrRunNotFound is returned when no run has the requested id.
var ErrRunNotFound = errors.New("run not found")

// Run is a persisted evaluation.
type Run struct {
	Id        string      `json:"id"`
	CreatedAt time.Time   `json:"created_at"`
	Corpus    string      `json:"corpus"`
	Tagger    string      `json:"tagger"`
	Result    eval.Result `json:"result"`
	Matrix    eval.Matrix `json:"matrix,omitempty"`
	Skipped   int         `json:"skipped"`
}

// NewRun records report as a new run with a fresh id.
func NewRun(corpus, tagger string, report eval.Report) Run {
	return Run{
		Id:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Corpus:    corpus,
		Tagger:    tagger,
		Result:    report.Result,
		Matrix:    report.Matrix,
		Skipped:   len(report.Diagnostics),
	}
}

// RunReader defines read operations for run storage
type RunReader interface {
	// List returns the metadata of all runs, newest first. The Matrix is not
	// loaded.
	List() ([]Run, error)

	// Read returns a run by id, matrix included
	Read(id string) (Run, error)
}

// RunWriter defines write operations for run storage
type RunWriter interface {
	// Write persists a run and its matrix
	Write(run Run) error
}

// RunRepository combines read and write operations
type RunRepository interface {
	RunReader
	RunWriter
}
