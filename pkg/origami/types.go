package origami

import (
	"io"
	"time"

	"github.com/usr-ein/origami/internal/frame"
	"github.com/usr-ein/origami/internal/tensor"
)

// Shape fixes the trailing dimensions of a tensor while leaving leading
// (batch or time) dimensions free.
type Shape = tensor.Shape

// Dense is a row-major dense tensor of float64 values.
type Dense = tensor.Dense

// Frame is a time-indexed table of numeric columns with an integrity
// self-check.
type Frame = frame.Frame

// NewTensor builds a tensor from a shape and its row-major backing data.
func NewTensor(shape Shape, data []float64) (*Dense, error) {
	return tensor.New(shape, data)
}

// TensorFromRows builds a 2D tensor from equally sized rows.
func TensorFromRows(rows [][]float64) (*Dense, error) {
	return tensor.FromRows(rows)
}

// NewFrame builds a frame, rejecting it with ErrIntegrity if the freshly
// built object fails its own consistency check.
func NewFrame(times []time.Time, columns []string, values [][]float64) (*Frame, error) {
	return frame.New(times, columns, values)
}

// ReadFrameCSV parses a frame from CSV using the named column as its
// timestamp index.
func ReadFrameCSV(r io.Reader, timeColumn string) (*Frame, error) {
	return frame.ReadCSV(r, timeColumn)
}
