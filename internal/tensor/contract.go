package tensor

import "fmt"

// ShapeError reports a trailing-dimension contract violation.
type ShapeError struct {
	Got  Shape
	Want Shape
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("wrong shape: trailing dimensions of %s do not match contract %s", e.Got, e.Want)
}

// CheckShape enforces the trailing-dimension contract: the last len(want)
// dimensions of the tensor must equal want elementwise. Leading (batch or
// time) dimensions are unconstrained. Returns a *ShapeError on violation.
func CheckShape(d *Dense, want Shape) error {
	got := d.Shape()
	if len(got) < len(want) {
		return &ShapeError{Got: got, Want: want.Clone()}
	}
	trailing := got[len(got)-len(want):]
	for i := range want {
		if trailing[i] != want[i] {
			return &ShapeError{Got: got, Want: want.Clone()}
		}
	}
	return nil
}
