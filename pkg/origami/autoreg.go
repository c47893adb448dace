package origami

import (
	"fmt"
	"time"

	"github.com/usr-ein/origami/internal/forecast"
	"github.com/usr-ein/origami/internal/frame"
)

// AutoRegModel predicts time series based on correlation with time-delayed
// versions of themselves. It runs the autoregressive engine through the
// full contract layer: shape checks, memoization, and persistence.
type AutoRegModel struct {
	*Model
	engine *forecast.AutoReg
}

// NewAutoReg builds an untrained autoregressive model. Input and output
// shapes are usually both (columns,) for a multivariate series.
func NewAutoReg(inputShape, outputShape Shape, cfg Config) (*AutoRegModel, error) {
	engine := forecast.NewAutoReg()
	model, err := New(engine, inputShape, outputShape, cfg)
	if err != nil {
		return nil, err
	}
	return &AutoRegModel{Model: model, engine: engine}, nil
}

// LoadAutoReg rebuilds an autoregressive model from a dump. Loading a file
// that holds a different model kind fails with ErrTypeMismatch.
func LoadAutoReg(path string, cfg Config) (*AutoRegModel, error) {
	engine := forecast.NewAutoReg()
	model, err := Load(path, engine, cfg)
	if err != nil {
		return nil, err
	}
	return &AutoRegModel{Model: model, engine: engine}, nil
}

// MaxLag returns the fitted lag window, or 0 before training.
func (m *AutoRegModel) MaxLag() int { return m.engine.MaxLag() }

// TrainFrame validates the frame's integrity and trains on its values.
func (m *AutoRegModel) TrainFrame(f *Frame, maxLag int) error {
	if !f.CheckIntegrity() {
		return fmt.Errorf("%w: training data", ErrIntegrity)
	}
	data, err := f.Tensor()
	if err != nil {
		return err
	}
	return m.Train(data, maxLag)
}

// PredictFrame validates the frame's integrity and predicts from its
// values through the caching lifecycle.
func (m *AutoRegModel) PredictFrame(f *Frame, steps int) (*Dense, error) {
	if !f.CheckIntegrity() {
		return nil, fmt.Errorf("%w: prediction input", ErrIntegrity)
	}
	data, err := f.Tensor()
	if err != nil {
		return nil, err
	}
	return m.Predict(data, steps)
}

// PredictDuration forecasts far enough into the future to cover duration,
// deriving the step count from the median gap of the frame's time index.
// The result carries a synthetic time index whose timestamps are strictly
// increasing and all later than the input's last timestamp. The horizon
// may be rounded up to a whole number of sampling intervals.
func (m *AutoRegModel) PredictDuration(f *Frame, duration time.Duration) (*Frame, error) {
	out, index, err := m.predictDuration(f, duration)
	if err != nil {
		return nil, err
	}
	if m.cfg.SkipOutputCheck {
		return frame.Assemble(index, f.Columns(), tensorRows(out)), nil
	}
	result, err := frame.FromTensor(out, index, f.Columns())
	if err != nil {
		return nil, fmt.Errorf("%w: prediction output: %v", ErrIntegrity, err)
	}
	return result, nil
}

// PredictDurationValues is PredictDuration without the table wrapper,
// returning the plain forecast values.
func (m *AutoRegModel) PredictDurationValues(f *Frame, duration time.Duration) (*Dense, error) {
	out, _, err := m.predictDuration(f, duration)
	return out, err
}

func (m *AutoRegModel) predictDuration(f *Frame, duration time.Duration) (*Dense, []time.Time, error) {
	if !f.CheckIntegrity() {
		return nil, nil, fmt.Errorf("%w: prediction input", ErrIntegrity)
	}
	steps, gap, err := forecast.StepsForDuration(f.Times(), duration)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}

	data, err := f.Tensor()
	if err != nil {
		return nil, nil, err
	}
	out, err := m.Predict(data, steps)
	if err != nil {
		return nil, nil, err
	}

	last, _ := f.LastTime()
	return out, forecast.FutureIndex(last, gap, steps), nil
}

func tensorRows(d *Dense) [][]float64 {
	rows := make([][]float64, d.Rows())
	for i := range rows {
		row := make([]float64, d.RowWidth())
		copy(row, d.Row(i))
		rows[i] = row
	}
	return rows
}
