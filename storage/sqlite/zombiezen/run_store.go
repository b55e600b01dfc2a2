package zombiezen

import (
	"context"
	"fmt"
	"time"

	"github.com/revelaction/tageval/eval"
	"github.com/revelaction/tageval/storage"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const runColumns = "id, created_at, corpus, tagger, total, correct, accuracy, skipped"

type RunStore struct {
	pool *sqlitex.Pool
}

var _ storage.RunRepository = (*RunStore)(nil)

func NewRunStore(pool *sqlitex.Pool) *RunStore {
	return &RunStore{pool: pool}
}

func (h *RunStore) List() ([]storage.Run, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return nil, err
	}
	defer h.pool.Put(conn)

	var runs []storage.Run
	err = sqlitex.Execute(conn, "SELECT "+runColumns+" FROM runs ORDER BY created_at DESC, id", &sqlitex.ExecOptions{
		ResultFunc: func(stmt *sqlite.Stmt) error {
			runs = append(runs, scanRun(stmt))
			return nil
		},
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}

func (h *RunStore) Read(id string) (storage.Run, error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return storage.Run{}, err
	}
	defer h.pool.Put(conn)

	var run storage.Run
	found := false

	err = sqlitex.Execute(conn, "SELECT "+runColumns+" FROM runs WHERE id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			found = true
			run = scanRun(stmt)
			return nil
		},
	})
	if err != nil {
		return storage.Run{}, err
	}
	if !found {
		return storage.Run{}, fmt.Errorf("%w: %s", storage.ErrRunNotFound, id)
	}

	run.Matrix = eval.NewMatrix()
	err = sqlitex.Execute(conn, "SELECT gold, pred, count FROM matrix_cells WHERE run_id = ?", &sqlitex.ExecOptions{
		Args: []interface{}{id},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			run.Matrix.AddN(stmt.ColumnText(0), stmt.ColumnText(1), stmt.ColumnInt(2))
			return nil
		},
	})
	if err != nil {
		return storage.Run{}, err
	}

	return run, nil
}

func (h *RunStore) Write(run storage.Run) (err error) {
	conn, err := h.pool.Take(context.TODO())
	if err != nil {
		return err
	}
	defer h.pool.Put(conn)

	// Start Transaction
	defer sqlitex.Save(conn)(&err)

	err = sqlitex.Execute(conn, "INSERT INTO runs ("+runColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)", &sqlitex.ExecOptions{
		Args: []interface{}{
			run.Id,
			run.CreatedAt.UnixNano(),
			run.Corpus,
			run.Tagger,
			run.Result.Total,
			run.Result.Correct,
			run.Result.Accuracy,
			run.Skipped,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	for gold, row := range run.Matrix {
		for pred, n := range row {
			err = sqlitex.Execute(conn, "INSERT INTO matrix_cells (run_id, gold, pred, count) VALUES (?, ?, ?, ?)", &sqlitex.ExecOptions{
				Args: []interface{}{run.Id, gold, pred, n},
			})
			if err != nil {
				return fmt.Errorf("failed to insert matrix cell: %w", err)
			}
		}
	}

	return nil
}

func scanRun(stmt *sqlite.Stmt) storage.Run {
	return storage.Run{
		Id:        stmt.ColumnText(0),
		CreatedAt: time.Unix(0, stmt.ColumnInt64(1)).UTC(),
		Corpus:    stmt.ColumnText(2),
		Tagger:    stmt.ColumnText(3),
		Result: eval.Result{
			Total:    stmt.ColumnInt(4),
			Correct:  stmt.ColumnInt(5),
			Accuracy: stmt.ColumnFloat(6),
		},
		Skipped: stmt.ColumnInt(7),
	}
}
