package frame

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func mustFrame(t *testing.T, rows int) *Frame {
	t.Helper()
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, rows)
	values := make([][]float64, rows)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Minute)
		values[i] = []float64{float64(i), float64(i * 2)}
	}
	f, err := New(times, []string{"a", "b"}, values)
	if err != nil {
		t.Fatalf("new frame: %v", err)
	}
	return f
}

func TestNewRejectsNonIncreasingIndex(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := New(
		[]time.Time{ts, ts},
		[]string{"a"},
		[][]float64{{1}, {2}},
	)
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestNewRejectsRaggedRows(t *testing.T) {
	ts := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := New(
		[]time.Time{ts, ts.Add(time.Minute)},
		[]string{"a", "b"},
		[][]float64{{1, 2}, {3}},
	)
	if !errors.Is(err, ErrIntegrity) {
		t.Fatalf("expected ErrIntegrity, got %v", err)
	}
}

func TestTensorRoundTrip(t *testing.T) {
	f := mustFrame(t, 4)
	d, err := f.Tensor()
	if err != nil {
		t.Fatalf("tensor: %v", err)
	}
	if d.Rows() != 4 || d.RowWidth() != 2 {
		t.Fatalf("unexpected tensor shape %s", d.Shape())
	}

	back, err := FromTensor(d, f.Times(), f.Columns())
	if err != nil {
		t.Fatalf("from tensor: %v", err)
	}
	if back.Rows() != f.Rows() || back.Row(3)[1] != 6 {
		t.Fatalf("round trip mismatch: %+v", back.Row(3))
	}
}

func TestReadCSV(t *testing.T) {
	in := strings.Join([]string{
		"ts,cpu,threads",
		"2024-03-01T00:00:00Z,1.5,10",
		"2024-03-01T00:01:00Z,2.5,11",
		"2024-03-01T00:02:00Z,3.5,12",
	}, "\n")

	f, err := ReadCSV(strings.NewReader(in), "ts")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if f.Rows() != 3 {
		t.Fatalf("rows = %d, want 3", f.Rows())
	}
	if got := f.Columns(); len(got) != 2 || got[0] != "cpu" {
		t.Fatalf("unexpected columns %v", got)
	}
	if f.Row(1)[0] != 2.5 {
		t.Fatalf("row value = %v, want 2.5", f.Row(1)[0])
	}
}

func TestReadCSVUnixMillis(t *testing.T) {
	in := "ts,v\n1709251200000,1\n1709251260000,2\n"
	f, err := ReadCSV(strings.NewReader(in), "ts")
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if got := f.Times()[1].Sub(f.Times()[0]); got != time.Minute {
		t.Fatalf("gap = %v, want 1m", got)
	}
}

func TestReadCSVMissingTimeColumn(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader("a,b\n1,2\n"), "ts"); err == nil {
		t.Fatal("missing time column accepted")
	}
}

func TestWriteCSVRoundTrip(t *testing.T) {
	f := mustFrame(t, 3)
	var sb strings.Builder
	if err := f.WriteCSV(&sb, "ts"); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	back, err := ReadCSV(strings.NewReader(sb.String()), "ts")
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if back.Rows() != 3 || back.Row(2)[1] != 4 {
		t.Fatalf("round trip mismatch: %+v", back.Row(2))
	}
}
