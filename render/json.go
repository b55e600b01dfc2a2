package render

import (
	"encoding/json"
	"io"
)

// JSONRenderer writes evaluation values as JSON to a writer.
type JSONRenderer struct {
	W io.Writer
}

// NewJSONRenderer creates a JSONRenderer writing to w.
func NewJSONRenderer(w io.Writer) *JSONRenderer {
	return &JSONRenderer{W: w}
}

// Render serializes v as indented JSON. Maps are written with sorted keys,
// so a confusion matrix always renders the same way.
func (r *JSONRenderer) Render(v any) error {
	enc := json.NewEncoder(r.W)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
