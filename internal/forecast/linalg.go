package forecast

import (
	"fmt"
	"math"
)

// solveSPD solves A X = B for X by Cholesky decomposition, where A is a
// symmetric positive-definite n×n matrix and B has m columns. A and B are
// row-major and are overwritten during the solve; the returned slice
// aliases B.
func solveSPD(a []float64, b []float64, n, m int) ([]float64, error) {
	// Decompose A = L Lᵀ in place (lower triangle).
	for j := 0; j < n; j++ {
		d := a[j*n+j]
		for k := 0; k < j; k++ {
			d -= a[j*n+k] * a[j*n+k]
		}
		if d <= 0 || math.IsNaN(d) {
			return nil, fmt.Errorf("matrix is not positive definite at pivot %d", j)
		}
		l := math.Sqrt(d)
		a[j*n+j] = l
		for i := j + 1; i < n; i++ {
			s := a[i*n+j]
			for k := 0; k < j; k++ {
				s -= a[i*n+k] * a[j*n+k]
			}
			a[i*n+j] = s / l
		}
	}

	// Forward substitution: L Y = B.
	for i := 0; i < n; i++ {
		for c := 0; c < m; c++ {
			s := b[i*m+c]
			for k := 0; k < i; k++ {
				s -= a[i*n+k] * b[k*m+c]
			}
			b[i*m+c] = s / a[i*n+i]
		}
	}

	// Back substitution: Lᵀ X = Y.
	for i := n - 1; i >= 0; i-- {
		for c := 0; c < m; c++ {
			s := b[i*m+c]
			for k := i + 1; k < n; k++ {
				s -= a[k*n+i] * b[k*m+c]
			}
			b[i*m+c] = s / a[i*n+i]
		}
	}
	return b, nil
}
