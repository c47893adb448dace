// Package frame provides a time-indexed table of numeric columns. A Frame is
// the structured data object of the integrity contract: it can self-check
// consistency, and the constructing factory rejects frames that fail their
// own check.
package frame

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/usr-ein/origami/internal/tensor"
)

// ErrIntegrity is returned when a frame fails its own consistency check.
var ErrIntegrity = errors.New("frame failed integrity check")

// Frame is a table of float64 columns indexed by a strictly increasing
// timestamp per row.
type Frame struct {
	times   []time.Time
	columns []string
	values  [][]float64
}

// New builds a frame and enforces the integrity contract at construction:
// a frame that fails CheckIntegrity is never handed to the caller.
func New(times []time.Time, columns []string, values [][]float64) (*Frame, error) {
	f := &Frame{times: times, columns: columns, values: values}
	if !f.CheckIntegrity() {
		return nil, fmt.Errorf("%w: %d rows, %d timestamps, %d columns", ErrIntegrity, len(values), len(times), len(columns))
	}
	return f, nil
}

// Assemble builds a frame without running the integrity check. It exists
// for the rare case where output validation is deliberately disabled,
// such as inspecting a faulty forecast; prefer New everywhere else.
func Assemble(times []time.Time, columns []string, values [][]float64) *Frame {
	return &Frame{times: times, columns: columns, values: values}
}

// CheckIntegrity reports whether the frame is internally consistent:
// one timestamp per row, strictly increasing timestamps, rectangular
// values matching the column count, and no NaN or infinite value.
func (f *Frame) CheckIntegrity() bool {
	if len(f.times) != len(f.values) {
		return false
	}
	if len(f.columns) == 0 {
		return false
	}
	for i := 1; i < len(f.times); i++ {
		if !f.times[i].After(f.times[i-1]) {
			return false
		}
	}
	for _, row := range f.values {
		if len(row) != len(f.columns) {
			return false
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}

func (f *Frame) Rows() int { return len(f.values) }

func (f *Frame) Columns() []string { return f.columns }

// Times returns the timestamp index. Callers must not mutate it.
func (f *Frame) Times() []time.Time { return f.times }

// Row returns the values of row i.
func (f *Frame) Row(i int) []float64 { return f.values[i] }

// LastTime returns the final timestamp of the index.
func (f *Frame) LastTime() (time.Time, bool) {
	if len(f.times) == 0 {
		return time.Time{}, false
	}
	return f.times[len(f.times)-1], true
}

// Head returns a frame holding the first n rows.
func (f *Frame) Head(n int) (*Frame, error) {
	if n < 0 || n > len(f.values) {
		return nil, fmt.Errorf("head of %d rows out of range for frame with %d rows", n, len(f.values))
	}
	return New(f.times[:n], f.columns, f.values[:n])
}

// Tensor converts the frame values to a (rows, columns) tensor.
func (f *Frame) Tensor() (*tensor.Dense, error) {
	data := make([]float64, 0, len(f.values)*len(f.columns))
	for _, row := range f.values {
		data = append(data, row...)
	}
	return tensor.New(tensor.Shape{len(f.values), len(f.columns)}, data)
}

// FromTensor attaches a timestamp index and column names to a 2D tensor.
func FromTensor(d *tensor.Dense, times []time.Time, columns []string) (*Frame, error) {
	if d.Dims() != 2 {
		return nil, fmt.Errorf("frame requires a 2D tensor, got %s", d.Shape())
	}
	values := make([][]float64, d.Rows())
	for i := range values {
		row := make([]float64, d.RowWidth())
		copy(row, d.Row(i))
		values[i] = row
	}
	return New(times, columns, values)
}
