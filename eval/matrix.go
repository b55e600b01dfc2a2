package eval

import "sort"

// Missing marks a token that has no counterpart on the other side of the
// alignment.
const Missing = "MISSING"

// Matrix counts gold label x predicted label pairs. Rows are created on first
// write and absent cells read as 0.
type Matrix map[string]map[string]int

// NewMatrix returns an empty Matrix.
func NewMatrix() Matrix {
	return Matrix{}
}

// Add increments the (gold, pred) cell by one.
func (m Matrix) Add(gold, pred string) {
	m.AddN(gold, pred, 1)
}

// AddN increments the (gold, pred) cell by n. A zero n does not create the
// cell.
func (m Matrix) AddN(gold, pred string, n int) {
	if n == 0 {
		return
	}
	row, ok := m[gold]
	if !ok {
		row = map[string]int{}
		m[gold] = row
	}
	row[pred] += n
}

// Get returns the count of the (gold, pred) cell.
func (m Matrix) Get(gold, pred string) int {
	return m[gold][pred]
}

// Merge adds all counts of o into m.
func (m Matrix) Merge(o Matrix) {
	for gold, row := range o {
		for pred, n := range row {
			m.AddN(gold, pred, n)
		}
	}
}

// Labels returns every label used as a gold or a predicted key, sorted
// ascending.
func (m Matrix) Labels() []string {
	seen := map[string]struct{}{}
	for gold, row := range m {
		seen[gold] = struct{}{}
		for pred := range row {
			seen[pred] = struct{}{}
		}
	}

	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// Total returns the sum of all cells.
func (m Matrix) Total() int {
	n := 0
	for _, row := range m {
		for _, c := range row {
			n += c
		}
	}
	return n
}

// Correct returns the sum of the diagonal, leaving out the Missing cell.
func (m Matrix) Correct() int {
	n := 0
	for gold, row := range m {
		if gold == Missing {
			continue
		}
		n += row[gold]
	}
	return n
}

// LabelScore holds per label agreement figures.
type LabelScore struct {
	Label     string  `json:"label"`
	Gold      int     `json:"gold"`
	Predicted int     `json:"predicted"`
	Correct   int     `json:"correct"`
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1        float64 `json:"f1"`
}

// Scores returns precision, recall and F1 for every label except Missing,
// in label order.
func (m Matrix) Scores() []LabelScore {
	var scores []LabelScore
	for _, label := range m.Labels() {
		if label == Missing {
			continue
		}

		s := LabelScore{Label: label, Correct: m.Get(label, label)}
		for _, n := range m[label] {
			s.Gold += n
		}
		for _, row := range m {
			s.Predicted += row[label]
		}

		s.Precision = ratio(s.Correct, s.Predicted)
		s.Recall = ratio(s.Correct, s.Gold)
		if s.Precision+s.Recall > 0 {
			s.F1 = 2 * s.Precision * s.Recall / (s.Precision + s.Recall)
		}
		scores = append(scores, s)
	}
	return scores
}

func ratio(a, b int) float64 {
	if b == 0 {
		return 0.0
	}
	return float64(a) / float64(b)
}
