// Package tensor provides a dense float64 tensor and the trailing-dimension
// shape contract enforced at every model boundary.
package tensor

import (
	"fmt"
	"math"
	"strings"
)

// Shape is the size of each tensor dimension, outermost first.
type Shape []int

// Validate reports whether the shape is usable as a model contract:
// non-empty with strictly positive dimensions.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shape must have at least one dimension")
	}
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("shape dimension %d must be positive, got %d", i, dim)
		}
	}
	return nil
}

// Elems returns the number of elements a tensor of this shape holds.
func (s Shape) Elems() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}

func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprintf("%d", dim)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Dense is a row-major dense tensor of float64 values.
type Dense struct {
	shape Shape
	data  []float64
}

// New builds a tensor from a shape and its row-major backing data.
// The data length must match the shape exactly. A leading dimension of
// zero is valid and yields an empty tensor.
func New(shape Shape, data []float64) (*Dense, error) {
	for i, dim := range shape {
		if dim < 0 {
			return nil, fmt.Errorf("tensor dimension %d is negative: %d", i, dim)
		}
	}
	if want := shape.Elems(); len(data) != want {
		return nil, fmt.Errorf("tensor data length %d does not match shape %s (%d elements)", len(data), shape, want)
	}
	return &Dense{shape: shape.Clone(), data: data}, nil
}

// Zeros returns a zero-filled tensor of the given shape.
func Zeros(shape Shape) *Dense {
	return &Dense{shape: shape.Clone(), data: make([]float64, shape.Elems())}
}

// FromRows builds a 2D tensor from equally sized rows.
func FromRows(rows [][]float64) (*Dense, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("at least one row is required")
	}
	width := len(rows[0])
	data := make([]float64, 0, len(rows)*width)
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("row %d has %d values, want %d", i, len(row), width)
		}
		data = append(data, row...)
	}
	return New(Shape{len(rows), width}, data)
}

func (d *Dense) Shape() Shape { return d.shape.Clone() }

// Data exposes the row-major backing slice. Callers must not mutate it.
func (d *Dense) Data() []float64 { return d.data }

func (d *Dense) Dims() int { return len(d.shape) }

// Rows is the size of the leading (time/batch) dimension.
func (d *Dense) Rows() int {
	if len(d.shape) == 0 {
		return 0
	}
	return d.shape[0]
}

// RowWidth is the number of elements in one leading-dimension slice.
func (d *Dense) RowWidth() int {
	if len(d.shape) <= 1 {
		return 1
	}
	return Shape(d.shape[1:]).Elems()
}

// Row returns the i-th leading-dimension slice of the backing data.
func (d *Dense) Row(i int) []float64 {
	w := d.RowWidth()
	return d.data[i*w : (i+1)*w]
}

func (d *Dense) Clone() *Dense {
	data := make([]float64, len(d.data))
	copy(data, d.data)
	return &Dense{shape: d.shape.Clone(), data: data}
}

// Equal reports elementwise equality, including shape.
func (d *Dense) Equal(o *Dense) bool {
	if !d.shape.Equal(o.shape) {
		return false
	}
	for i := range d.data {
		if d.data[i] != o.data[i] {
			return false
		}
	}
	return true
}

// AllFinite reports whether every value is a real number.
func (d *Dense) AllFinite() bool {
	for _, v := range d.data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Diff takes first-order differences along the leading axis, reducing the
// row count by one: out[t] = in[t+1] - in[t].
func Diff(d *Dense) (*Dense, error) {
	if d.Dims() < 1 || d.Rows() < 2 {
		return nil, fmt.Errorf("differencing needs at least two rows, got %d", d.Rows())
	}
	w := d.RowWidth()
	rows := d.Rows() - 1
	data := make([]float64, rows*w)
	for t := 0; t < rows; t++ {
		curr, next := d.Row(t), d.Row(t+1)
		for j := 0; j < w; j++ {
			data[t*w+j] = next[j] - curr[j]
		}
	}
	shape := d.Shape()
	shape[0] = rows
	return New(shape, data)
}
