package render

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"github.com/revelaction/tageval/eval"
)

// MatrixCorner is the first header cell of a serialized confusion matrix.
const MatrixCorner = `Gold\Pred`

// AnalysisHeader is the header of the per-token analysis table.
func AnalysisHeader() []string {
	return []string{"sentence", "token", "lemma", "pos", "dependency"}
}

// WriteAnalysisRows writes rows as CSV in the given order.
func WriteAnalysisRows(w io.Writer, rows []eval.AnalysisRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(AnalysisHeader()); err != nil {
		return err
	}

	for _, r := range rows {
		if err := cw.Write([]string{r.Sentence, r.Token, r.Lemma, r.Pos, r.Dependency}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteConfusionMatrix writes m as a square CSV table over the sorted label
// universe of m. Absent cells are written as 0.
func WriteConfusionMatrix(w io.Writer, m eval.Matrix) error {
	labels := m.Labels()

	cw := csv.NewWriter(w)
	if err := cw.Write(append([]string{MatrixCorner}, labels...)); err != nil {
		return err
	}

	record := make([]string, len(labels)+1)
	for _, gold := range labels {
		record[0] = gold
		row := m[gold]
		for j, pred := range labels {
			record[j+1] = strconv.Itoa(row[pred])
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ReadConfusionMatrix parses a table written by WriteConfusionMatrix. Zero
// cells are not stored.
func ReadConfusionMatrix(r io.Reader) (eval.Matrix, error) {
	cr := csv.NewReader(r)

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty confusion matrix")
		}
		return nil, err
	}
	if header[0] != MatrixCorner {
		return nil, fmt.Errorf("unexpected header cell %q", header[0])
	}
	labels := header[1:]

	m := eval.NewMatrix()
	for line := 2; ; line++ {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		gold := record[0]
		for j, cell := range record[1:] {
			n, err := strconv.Atoi(cell)
			if err != nil {
				return nil, fmt.Errorf("line %d, column %s: %w", line, labels[j], err)
			}
			if n < 0 {
				return nil, fmt.Errorf("line %d, column %s: negative count", line, labels[j])
			}
			m.AddN(gold, labels[j], n)
		}
	}

	return m, nil
}

// SaveFile creates path (and its directory) and fills it with write.
func SaveFile(path string, write func(io.Writer) error) (err error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to write file %s: %w", path, cerr)
		}
	}()

	if err := write(f); err != nil {
		return fmt.Errorf("failed to write file %s: %w", path, err)
	}
	return nil
}
