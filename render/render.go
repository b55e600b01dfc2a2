package render

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/revelaction/tageval/eval"
	sent "github.com/revelaction/tageval/sentence"
)

const (
	Defaultformat = "table"

	// maxCell bounds the width of a matrix column.
	maxCell = 7
)

var (
	Black   = "\033[1;30m"
	Red     = "\033[1;31m"
	Green   = "\033[1;32m"
	Yellow  = "\033[0;33m"
	Purple  = "\033[1;34m"
	Magenta = "\033[1;35m"
	Teal    = "\033[1;36m"
	Gray    = "\033[0;37m"
	White   = "\033[1;37m"
	Off     = "\033[0m"
	//Yellow256  = "\033[1;38;5;202m"
	Yellow256 = "\033[1;38;5;130m"
	Grey256   = "\033[1;38;5;145m"
	Green256  = "\033[1;38;5;70m"
	ClearLine = "\033[K"
)

func SupportedFormats() []string {
	return []string{"table", "csv", "json"}
}

// Renderer writes evaluation results for a terminal.
type Renderer struct {
	W io.Writer

	HasColor bool

	// Format determines how results are printed
	//
	// table: aligned columns, diagonal highlighted
	// csv: the serialized tables
	// json: JSON documents
	Format string
}

func NewRenderer(w io.Writer) *Renderer {
	return &Renderer{W: w, Format: Defaultformat}
}

// Result prints the accuracy summary.
func (r *Renderer) Result(res eval.Result, skipped int) error {
	switch r.Format {
	case "json":
		return NewJSONRenderer(r.W).Render(struct {
			eval.Result
			Skipped int `json:"skipped"`
		}{res, skipped})
	case "csv":
		_, err := fmt.Fprintf(r.W, "total,correct,accuracy,skipped\n%d,%d,%.6f,%d\n", res.Total, res.Correct, res.Accuracy, skipped)
		return err
	}

	_, err := fmt.Fprintf(r.W, "Total tokens: %d\nCorrect predictions: %d\nAccuracy: %s\n",
		res.Total, res.Correct, r.color(fmt.Sprintf("%.4f", res.Accuracy), Green256))
	if err != nil {
		return err
	}
	if skipped > 0 {
		_, err = fmt.Fprintf(r.W, "Skipped sentences: %s\n", r.color(fmt.Sprintf("%d", skipped), Yellow256))
	}
	return err
}

// Matrix prints the confusion matrix.
func (r *Renderer) Matrix(m eval.Matrix) error {
	switch r.Format {
	case "json":
		return NewJSONRenderer(r.W).Render(m)
	case "csv":
		return WriteConfusionMatrix(r.W, m)
	}

	labels := m.Labels()
	width := maxCell
	for _, l := range labels {
		if n := utf8.RuneCountInString(l); n > width {
			width = n
		}
	}

	var b strings.Builder
	b.WriteString(pad(MatrixCorner, width+1))
	for _, pred := range labels {
		b.WriteString(r.color(pad(cut(pred, maxCell), maxCell+1), Grey256))
	}
	b.WriteString("\n")

	for _, gold := range labels {
		b.WriteString(r.color(pad(gold, width+1), Grey256))
		for _, pred := range labels {
			cell := pad(fmt.Sprintf("%d", m.Get(gold, pred)), maxCell+1)
			switch {
			case gold == pred && gold != eval.Missing:
				cell = r.color(cell, Green256)
			case m.Get(gold, pred) == 0:
				cell = r.color(cell, Gray)
			case gold == eval.Missing || pred == eval.Missing:
				cell = r.color(cell, Yellow256)
			default:
				cell = r.color(cell, Red)
			}
			b.WriteString(cell)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Total predictions: %d\nUnique POS tags: %d\n", m.Total(), len(m))

	_, err := io.WriteString(r.W, b.String())
	return err
}

// Scores prints the per label precision, recall and F1.
func (r *Renderer) Scores(scores []eval.LabelScore) error {
	if r.Format == "json" {
		return NewJSONRenderer(r.W).Render(scores)
	}

	if r.Format == "csv" {
		if _, err := fmt.Fprintln(r.W, "label,gold,predicted,correct,precision,recall,f1"); err != nil {
			return err
		}
		for _, s := range scores {
			if _, err := fmt.Fprintf(r.W, "%s,%d,%d,%d,%.4f,%.4f,%.4f\n", s.Label, s.Gold, s.Predicted, s.Correct, s.Precision, s.Recall, s.F1); err != nil {
				return err
			}
		}
		return nil
	}

	if _, err := fmt.Fprintf(r.W, "%-8s %7s %9s %7s %9s %7s %7s\n", "label", "gold", "predicted", "correct", "precision", "recall", "f1"); err != nil {
		return err
	}
	for _, s := range scores {
		if _, err := fmt.Fprintf(r.W, "%-8s %7d %9d %7d %9.4f %7.4f %7.4f\n", s.Label, s.Gold, s.Predicted, s.Correct, s.Precision, s.Recall, s.F1); err != nil {
			return err
		}
	}
	return nil
}

// Sentence prints the surface text of s after prefix.
func (r *Renderer) Sentence(s sent.Sentence, prefix string) {
	fmt.Fprintf(r.W, "%s%s\n", prefix, s.Text())
}

// Tokens prints one line per token with all annotation columns.
func (r *Renderer) Tokens(s sent.Sentence) {
	for i, token := range s {
		fmt.Fprintf(r.W, "%4d %20q %15q %8s %6s %8s\n", i+1, token.Form, token.Lemma, r.color(token.Upos, Yellow256), token.Head, token.Deprel)
	}
}

// Diagnostics prints the skipped sentences.
func (r *Renderer) Diagnostics(diags []eval.Diagnostic) {
	for _, d := range diags {
		fmt.Fprintf(r.W, "%s %d %s: %v\n", r.color("✗", Red), d.Index, d.Text, d.Err)
	}
}

// NextFormat sets the Renderer Format option to a different one, following
// the SupportedFormats() order.
func (r *Renderer) NextFormat() {

	supported := SupportedFormats()
	for i, format := range supported {
		if format == r.Format {
			switch i {
			case len(supported) - 1:
				r.Format = supported[0]
			default:
				r.Format = supported[i+1]
			}

			break
		}
	}
}

func (r *Renderer) color(s, color string) string {
	if !r.HasColor {
		return s
	}
	return color + s + Off
}

func pad(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}

func cut(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	return string([]rune(s)[:width])
}
