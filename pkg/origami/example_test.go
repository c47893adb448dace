package origami_test

import (
	"fmt"
	"math"
	"time"

	"github.com/usr-ein/origami/pkg/origami"
)

func Example() {
	// A two-column series sampled every minute.
	base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	times := make([]time.Time, 120)
	values := make([][]float64, 120)
	for i := range times {
		times[i] = base.Add(time.Duration(i) * time.Minute)
		values[i] = []float64{
			50 + 5*math.Sin(float64(i)/4),
			200 + 0.5*float64(i),
		}
	}
	history, err := origami.NewFrame(times, []string{"cpu", "threads"}, values)
	if err != nil {
		panic(err)
	}

	model, err := origami.NewAutoReg(origami.Shape{2}, origami.Shape{2}, origami.Config{CacheBackend: "memory"})
	if err != nil {
		panic(err)
	}
	defer model.Close()

	if err := model.TrainFrame(history, 5); err != nil {
		panic(err)
	}
	forecast, err := model.PredictDuration(history, 10*time.Minute)
	if err != nil {
		panic(err)
	}

	fmt.Println(forecast.Columns())
	fmt.Println(forecast.Rows())
	last, _ := history.LastTime()
	fmt.Println(forecast.Times()[0].After(last))
	// Output:
	// [cpu threads]
	// 11
	// true
}
