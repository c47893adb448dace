package origami

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/usr-ein/origami/internal/frame"
)

// syntheticSeries builds a deterministic 7-column series with trend and
// seasonal structure, one row per minute.
func syntheticSeries(t *testing.T, rows int) (*Dense, *Frame) {
	t.Helper()
	const cols = 7
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	times := make([]time.Time, rows)
	values := make([][]float64, rows)
	data := make([]float64, 0, rows*cols)
	for i := 0; i < rows; i++ {
		times[i] = base.Add(time.Duration(i) * time.Minute)
		row := make([]float64, cols)
		for j := 0; j < cols; j++ {
			row[j] = 100*float64(j+1) + 0.5*float64(i) + 10*math.Sin(float64(i)/5+float64(j))
		}
		values[i] = row
		data = append(data, row...)
	}

	d, err := NewTensor(Shape{rows, cols}, data)
	if err != nil {
		t.Fatalf("series tensor: %v", err)
	}
	columns := []string{"threads_fo", "cpu_devops", "cpu_dmz", "threads_moe", "db_conns", "cpu_moe", "threads_devops"}
	f, err := NewFrame(times, columns, values)
	if err != nil {
		t.Fatalf("series frame: %v", err)
	}
	return d, f
}

func newTrainedAutoReg(t *testing.T, rows, maxLag int) (*AutoRegModel, *Dense, *Frame) {
	t.Helper()
	model, err := NewAutoReg(Shape{7}, Shape{7}, Config{CacheRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("new autoreg: %v", err)
	}
	data, f := syntheticSeries(t, rows)
	if err := model.Train(data, maxLag); err != nil {
		t.Fatalf("train: %v", err)
	}
	t.Cleanup(func() { _ = model.Close() })
	return model, data, f
}

func TestAutoRegLifecycle(t *testing.T) {
	model, data, _ := newTrainedAutoReg(t, 200, 5)
	if !model.Trained() || model.MaxLag() != 5 {
		t.Fatalf("model state: trained=%v maxLag=%d", model.Trained(), model.MaxLag())
	}

	empty, err := model.Predict(data, 0)
	if err != nil {
		t.Fatalf("predict steps=0: %v", err)
	}
	if !empty.Shape().Equal(Shape{0, 7}) {
		t.Fatalf("steps=0 shape = %s, want (0, 7)", empty.Shape())
	}

	out, err := model.Predict(data, 30)
	if err != nil {
		t.Fatalf("predict steps=30: %v", err)
	}
	if !out.Shape().Equal(Shape{30, 7}) {
		t.Fatalf("shape = %s, want (30, 7)", out.Shape())
	}
	for i, v := range out.Data() {
		if v != math.Trunc(v) {
			t.Fatalf("out[%d] = %v is not an integer", i, v)
		}
	}

	again, err := model.Predict(data, 30)
	if err != nil {
		t.Fatalf("predict again: %v", err)
	}
	if !out.Equal(again) {
		t.Fatal("identical predictions differ")
	}
}

func TestAutoRegTrainInsufficientData(t *testing.T) {
	model, err := NewAutoReg(Shape{7}, Shape{7}, Config{CacheRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("new autoreg: %v", err)
	}
	data, _ := syntheticSeries(t, 10)
	if err := model.Train(data, 20); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
	if model.Trained() {
		t.Fatal("failed train flipped trained")
	}
}

func TestAutoRegPredictNeedsContext(t *testing.T) {
	model, _, _ := newTrainedAutoReg(t, 200, 10)
	short, _ := syntheticSeries(t, 8)
	if _, err := model.Predict(short, 5); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestPredictDuration(t *testing.T) {
	model, _, f := newTrainedAutoReg(t, 200, 5)

	duration := 2 * time.Hour
	result, err := model.PredictDuration(f, duration)
	if err != nil {
		t.Fatalf("predict duration: %v", err)
	}

	// ceil(2h / 1m) + 1 forecast steps.
	if result.Rows() != 121 {
		t.Fatalf("rows = %d, want 121", result.Rows())
	}
	lastInput, _ := f.LastTime()
	times := result.Times()
	for i, ts := range times {
		if !ts.After(lastInput) {
			t.Fatalf("times[%d] = %v is not after the input's last timestamp %v", i, ts, lastInput)
		}
	}
	if horizon := times[len(times)-1].Sub(times[0]); horizon < duration {
		t.Fatalf("forecast horizon %v does not cover %v", horizon, duration)
	}

	values, err := model.PredictDurationValues(f, duration)
	if err != nil {
		t.Fatalf("predict duration values: %v", err)
	}
	if values.Rows() != result.Rows() {
		t.Fatalf("values rows = %d, frame rows = %d", values.Rows(), result.Rows())
	}
	for i := 0; i < result.Rows(); i++ {
		for j, v := range result.Row(i) {
			if values.Row(i)[j] != v {
				t.Fatalf("frame and raw forecasts disagree at (%d, %d)", i, j)
			}
		}
	}
}

func TestPredictDurationRejectsBadInput(t *testing.T) {
	model, _, f := newTrainedAutoReg(t, 200, 5)

	if _, err := model.PredictDuration(f, 0); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("zero duration: %v", err)
	}

	broken := frame.Assemble(f.Times()[:2], f.Columns(), [][]float64{{1}, {2}})
	if _, err := model.PredictDuration(broken, time.Hour); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestTrainFrameChecksIntegrity(t *testing.T) {
	model, err := NewAutoReg(Shape{1}, Shape{1}, Config{CacheRoot: t.TempDir()})
	if err != nil {
		t.Fatalf("new autoreg: %v", err)
	}

	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	broken := frame.Assemble([]time.Time{ts, ts}, []string{"v"}, [][]float64{{1}, {2}})
	if err := model.TrainFrame(broken, 1); !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestAutoRegDumpLoadRoundTrip(t *testing.T) {
	model, data, _ := newTrainedAutoReg(t, 200, 5)
	before, err := model.Predict(data, 30)
	if err != nil {
		t.Fatalf("predict: %v", err)
	}

	path := t.TempDir() + "/autoreg.json.gz"
	if err := model.Dump(path); err != nil {
		t.Fatalf("dump: %v", err)
	}
	loaded, err := LoadAutoReg(path, Config{})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	defer loaded.Close()
	if loaded.MaxLag() != 5 {
		t.Fatalf("loaded maxLag = %d, want 5", loaded.MaxLag())
	}

	after, err := loaded.Predict(data, 30)
	if err != nil {
		t.Fatalf("predict after load: %v", err)
	}
	if !before.Equal(after) {
		t.Fatal("prediction changed across dump/load")
	}
}

// TestAutoRegReferenceScenario runs the full-size workload: a lag window
// of 300 over 1000 rows of a 7-column series. The fit solves a 2100-wide
// regression, so it is skipped in short mode.
func TestAutoRegReferenceScenario(t *testing.T) {
	if testing.Short() {
		t.Skip("full-size lag window fit")
	}

	model, _, _ := newTrainedAutoReg(t, 1000, 300)
	context, _ := syntheticSeries(t, 301)

	empty, err := model.Predict(context, 0)
	if err != nil {
		t.Fatalf("predict steps=0: %v", err)
	}
	if !empty.Shape().Equal(Shape{0, 7}) {
		t.Fatalf("steps=0 shape = %s, want (0, 7)", empty.Shape())
	}

	out, err := model.Predict(context, 30)
	if err != nil {
		t.Fatalf("predict steps=30: %v", err)
	}
	if !out.Shape().Equal(Shape{30, 7}) {
		t.Fatalf("shape = %s, want (30, 7)", out.Shape())
	}
	for i, v := range out.Data() {
		if v != math.Trunc(v) {
			t.Fatalf("out[%d] = %v is not an integer", i, v)
		}
	}
}
