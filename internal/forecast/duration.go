package forecast

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// MedianGap estimates the sampling granularity of a time index as the
// median interval between consecutive samples.
func MedianGap(times []time.Time) (time.Duration, error) {
	if len(times) < 2 {
		return 0, fmt.Errorf("need at least two timestamps to estimate a gap, got %d", len(times))
	}
	gaps := make([]time.Duration, len(times)-1)
	for i := 1; i < len(times); i++ {
		gaps[i-1] = times[i].Sub(times[i-1])
	}
	sort.Slice(gaps, func(i, j int) bool { return gaps[i] < gaps[j] })

	mid := len(gaps) / 2
	if len(gaps)%2 == 1 {
		return gaps[mid], nil
	}
	return (gaps[mid-1] + gaps[mid]) / 2, nil
}

// StepsForDuration translates a calendar duration into a forecast step
// count: the duration divided by the median sampling gap, rounded up, plus
// one so the horizon always covers the full duration.
func StepsForDuration(times []time.Time, duration time.Duration) (steps int, gap time.Duration, err error) {
	if duration <= 0 {
		return 0, 0, fmt.Errorf("duration must be positive, got %v", duration)
	}
	gap, err = MedianGap(times)
	if err != nil {
		return 0, 0, err
	}
	if gap <= 0 {
		return 0, 0, fmt.Errorf("time index gap is not positive: %v", gap)
	}
	steps = int(math.Ceil(float64(duration)/float64(gap))) + 1
	return steps, gap, nil
}

// FutureIndex builds the synthetic time index for a forecast: steps
// strictly increasing timestamps spaced by gap, all later than last.
func FutureIndex(last time.Time, gap time.Duration, steps int) []time.Time {
	index := make([]time.Time, steps)
	for i := range index {
		index[i] = last.Add(time.Duration(i+1) * gap)
	}
	return index
}
