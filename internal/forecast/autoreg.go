// Package forecast implements the autoregressive engine: lag-window
// fitting on first differences and drift-corrected multi-step forecasting.
package forecast

import (
	"errors"
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/usr-ein/origami/internal/tensor"
)

// Drift is the multiplicative adjustment applied to every forecast step
// before reconstruction. It is a heuristic upward bias correction, not a
// fitted parameter.
const Drift = 1.005

// DefaultMaxLag is the lag window used when the caller does not pick one.
const DefaultMaxLag = 300

// DefaultSteps is the conventional forecast length when the caller does
// not pick one. Zero steps stays a valid, explicit request.
const DefaultSteps = 200

var (
	// ErrInsufficientData means the differenced series holds fewer rows
	// than the lag window requires.
	ErrInsufficientData = errors.New("insufficient rows for lag window")

	// ErrNegativeSteps rejects forecasts of negative length. Zero steps is
	// valid and yields an empty forecast.
	ErrNegativeSteps = errors.New("steps must be non-negative")

	// ErrNotFitted means Infer ran before Fit.
	ErrNotFitted = errors.New("engine is not fitted")
)

// ridgeEpsilon keeps the normal equations positive definite when the lag
// regression is under-determined (more regressors than observations).
const ridgeEpsilon = 1e-8

// AutoReg predicts time series from correlation with time-delayed versions
// of themselves. Fit estimates one coefficient matrix per lag on the
// first-differenced series; Infer iterates one-step forecasts and
// reconstructs absolute levels.
type AutoReg struct {
	maxLag int
	dims   int
	// coeffs is the (maxLag*dims)×dims regression matrix, row-major:
	// forecast[i] = sum over lag l and component j of
	// context[t-l][j] * coeffs[((l-1)*dims+j)*dims + i].
	coeffs []float64
	fitted bool
}

func NewAutoReg() *AutoReg {
	return &AutoReg{}
}

func (a *AutoReg) Kind() string { return "autoreg" }

// MaxLag returns the fitted lag window, or 0 before fitting.
func (a *AutoReg) MaxLag() int { return a.maxLag }

func (a *AutoReg) Fitted() bool { return a.fitted }

// Fit estimates the lag-maxLag autoregression, with no intercept or trend
// term, over the first differences of series. The differenced series must
// hold at least maxLag rows.
func (a *AutoReg) Fit(series *tensor.Dense, maxLag int) error {
	if maxLag < 1 {
		return fmt.Errorf("max lag must be positive, got %d", maxLag)
	}
	if series.Dims() != 2 {
		return fmt.Errorf("autoregression requires a 2D series, got %s", series.Shape())
	}
	if series.Rows() < 2 {
		return fmt.Errorf("%w: %d rows before differencing, need at least %d", ErrInsufficientData, series.Rows(), maxLag+1)
	}

	fd, err := tensor.Diff(series)
	if err != nil {
		return err
	}
	rows, dims := fd.Rows(), fd.RowWidth()
	if rows < maxLag {
		return fmt.Errorf("%w: %d differenced rows, need %d", ErrInsufficientData, rows, maxLag)
	}

	coeffs, err := fitLagRegression(fd, maxLag, dims)
	if err != nil {
		return fmt.Errorf("fit lag regression: %w", err)
	}

	a.maxLag = maxLag
	a.dims = dims
	a.coeffs = coeffs
	a.fitted = true
	return nil
}

// fitLagRegression solves the least-squares problem Y = Z B over the
// differenced series, where each regressor row stacks the maxLag previous
// observations. The normal equations carry a small ridge term so they stay
// solvable even when regressors outnumber observations.
func fitLagRegression(fd *tensor.Dense, maxLag, dims int) ([]float64, error) {
	p := maxLag * dims
	rows := fd.Rows()

	gram := make([]float64, p*p)      // ZᵀZ
	moment := make([]float64, p*dims) // ZᵀY

	z := make([]float64, p)
	for t := maxLag; t < rows; t++ {
		for l := 1; l <= maxLag; l++ {
			copy(z[(l-1)*dims:l*dims], fd.Row(t-l))
		}
		y := fd.Row(t)
		for i := 0; i < p; i++ {
			zi := z[i]
			if zi == 0 {
				continue
			}
			gi := gram[i*p:]
			for j := i; j < p; j++ {
				gi[j] += zi * z[j]
			}
			mi := moment[i*dims:]
			for c := 0; c < dims; c++ {
				mi[c] += zi * y[c]
			}
		}
	}
	// Mirror the upper triangle and apply the ridge term.
	var trace float64
	for i := 0; i < p; i++ {
		trace += gram[i*p+i]
	}
	ridge := ridgeEpsilon * (1 + trace/float64(p))
	for i := 0; i < p; i++ {
		gram[i*p+i] += ridge
		for j := i + 1; j < p; j++ {
			gram[j*p+i] = gram[i*p+j]
		}
	}

	return solveSPD(gram, moment, p, dims)
}

// Infer forecasts steps future values of series. The series is differenced
// the same way as during fitting, forecast step by step, scaled by Drift,
// and reconstructed into absolute levels by a running cumulative sum
// seeded with the last observed difference. Every value is rounded to the
// nearest integer.
func (a *AutoReg) Infer(series *tensor.Dense, steps int) (*tensor.Dense, error) {
	if !a.fitted {
		return nil, ErrNotFitted
	}
	if steps < 0 {
		return nil, fmt.Errorf("%w, got %d", ErrNegativeSteps, steps)
	}
	if series.Dims() != 2 {
		return nil, fmt.Errorf("autoregression requires a 2D series, got %s", series.Shape())
	}
	if series.Rows() < a.maxLag+1 {
		return nil, fmt.Errorf("%w: %d differenced rows of context, need %d", ErrInsufficientData, series.Rows()-1, a.maxLag)
	}

	fd, err := tensor.Diff(series)
	if err != nil {
		return nil, err
	}
	dims := fd.RowWidth()
	if dims != a.dims {
		return nil, fmt.Errorf("series has %d components, engine was fitted on %d", dims, a.dims)
	}

	// Rolling context of differenced rows, most recent last.
	context := make([][]float64, 0, a.maxLag+steps)
	for t := fd.Rows() - a.maxLag; t < fd.Rows(); t++ {
		context = append(context, fd.Row(t))
	}

	out := make([]float64, steps*dims)
	acc := make([]float64, dims)
	diffLast := fd.Row(fd.Rows() - 1)
	z := make([]float64, a.maxLag*dims)
	for s := 0; s < steps; s++ {
		for l := 1; l <= a.maxLag; l++ {
			copy(z[(l-1)*dims:l*dims], context[len(context)-l])
		}
		next := make([]float64, dims)
		for m, zm := range z {
			if zm == 0 {
				continue
			}
			row := a.coeffs[m*dims:]
			for i := 0; i < dims; i++ {
				next[i] += zm * row[i]
			}
		}
		context = append(context, next)

		for i := 0; i < dims; i++ {
			acc[i] += next[i] * Drift
			out[s*dims+i] = math.RoundToEven(acc[i] + diffLast[i])
		}
	}

	return tensor.New(tensor.Shape{steps, dims}, out)
}

type autoRegState struct {
	MaxLag int       `json:"max_lag"`
	Dims   int       `json:"dims"`
	Coeffs []float64 `json:"coeffs"`
	Fitted bool      `json:"fitted"`
}

// Snapshot serializes the fitted state for the persistence codec.
func (a *AutoReg) Snapshot() ([]byte, error) {
	return json.Marshal(autoRegState{
		MaxLag: a.maxLag,
		Dims:   a.dims,
		Coeffs: a.coeffs,
		Fitted: a.fitted,
	})
}

// Restore rebuilds the fitted state from a snapshot.
func (a *AutoReg) Restore(data []byte) error {
	var state autoRegState
	if err := json.Unmarshal(data, &state); err != nil {
		return fmt.Errorf("restore autoreg state: %w", err)
	}
	if state.Fitted {
		if state.MaxLag < 1 || state.Dims < 1 {
			return fmt.Errorf("restore autoreg state: invalid lag %d or dims %d", state.MaxLag, state.Dims)
		}
		if len(state.Coeffs) != state.MaxLag*state.Dims*state.Dims {
			return fmt.Errorf("restore autoreg state: %d coefficients, want %d", len(state.Coeffs), state.MaxLag*state.Dims*state.Dims)
		}
	}
	a.maxLag = state.MaxLag
	a.dims = state.Dims
	a.coeffs = state.Coeffs
	a.fitted = state.Fitted
	return nil
}
