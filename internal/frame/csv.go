package frame

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// ReadCSV parses a frame from CSV. The named time column supplies the
// index; every other column must be numeric. Timestamps are accepted as
// RFC 3339, as "2006-01-02 15:04:05", or as integer Unix milliseconds.
func ReadCSV(r io.Reader, timeColumn string) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}

	timeIdx := -1
	columns := make([]string, 0, len(header)-1)
	for i, name := range header {
		name = strings.TrimSpace(name)
		if name == timeColumn {
			timeIdx = i
			continue
		}
		columns = append(columns, name)
	}
	if timeIdx < 0 {
		return nil, fmt.Errorf("time column %q not found in header", timeColumn)
	}

	var times []time.Time
	var values [][]float64
	rowNum := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row %d: %w", rowNum, err)
		}
		if len(record) != len(header) {
			return nil, fmt.Errorf("csv row %d has %d fields, want %d", rowNum, len(record), len(header))
		}

		ts, err := parseTime(strings.TrimSpace(record[timeIdx]))
		if err != nil {
			return nil, fmt.Errorf("csv row %d: %w", rowNum, err)
		}
		row := make([]float64, 0, len(columns))
		for i, field := range record {
			if i == timeIdx {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("csv row %d column %q: %w", rowNum, header[i], err)
			}
			row = append(row, v)
		}
		times = append(times, ts)
		values = append(values, row)
		rowNum++
	}

	return New(times, columns, values)
}

// WriteCSV writes the frame with the timestamp index in the first column,
// formatted as RFC 3339.
func (f *Frame) WriteCSV(w io.Writer, timeColumn string) error {
	writer := csv.NewWriter(w)

	header := append([]string{timeColumn}, f.columns...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(header))
	for i, row := range f.values {
		record[0] = f.times[i].UTC().Format(time.RFC3339Nano)
		for j, v := range row {
			record[j+1] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("write csv row %d: %w", i, err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return ts, nil
	}
	if ts, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return ts.UTC(), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", s)
}
