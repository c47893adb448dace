package cli

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/usr-ein/origami/internal/forecast"
	"github.com/usr-ein/origami/pkg/origami"
)

var (
	flagPredictModel  string
	flagPredictSteps  int
	flagPredictOutput string
)

var predictCmd = &cobra.Command{
	Use:   "predict CONTEXT_CSV",
	Short: "Predict a fixed number of future samples",
	Long: `Predict loads a dumped model and forecasts the requested number of
steps past the end of the context series. Repeated predictions with the
same context are answered from the cache.`,
	Args: cobra.ExactArgs(1),
	RunE: runPredict,
}

func init() {
	rootCmd.AddCommand(predictCmd)
	predictCmd.Flags().StringVarP(&flagPredictModel, "model", "m", "", "model dump path (required)")
	predictCmd.Flags().IntVarP(&flagPredictSteps, "steps", "n", forecast.DefaultSteps, "forecast steps")
	predictCmd.Flags().StringVarP(&flagPredictOutput, "output", "o", "", "output CSV path (default stdout)")
	_ = predictCmd.MarkFlagRequired("model")
}

func runPredict(cmd *cobra.Command, args []string) error {
	model, err := origami.LoadAutoReg(flagPredictModel, modelConfig())
	if err != nil {
		return err
	}
	defer model.Close()

	context, err := readFrame(args[0])
	if err != nil {
		return err
	}
	out, err := model.PredictFrame(context, flagPredictSteps)
	if err != nil {
		return err
	}
	return withOutput(cmd, flagPredictOutput, func(w io.Writer) error {
		return writeValuesCSV(w, context.Columns(), out)
	})
}

var (
	flagForecastModel    string
	flagForecastDuration time.Duration
	flagForecastOutput   string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast DATA_CSV",
	Short: "Forecast far enough ahead to cover a wall-clock duration",
	Long: `Forecast derives the step count from the series' median sampling gap
and emits a time-indexed CSV covering at least the requested duration.`,
	Args: cobra.ExactArgs(1),
	RunE: runForecast,
}

func init() {
	rootCmd.AddCommand(forecastCmd)
	forecastCmd.Flags().StringVarP(&flagForecastModel, "model", "m", "", "model dump path (required)")
	forecastCmd.Flags().DurationVarP(&flagForecastDuration, "duration", "d", time.Hour, "forecast horizon")
	forecastCmd.Flags().StringVarP(&flagForecastOutput, "output", "o", "", "output CSV path (default stdout)")
	_ = forecastCmd.MarkFlagRequired("model")
}

func runForecast(cmd *cobra.Command, args []string) error {
	model, err := origami.LoadAutoReg(flagForecastModel, modelConfig())
	if err != nil {
		return err
	}
	defer model.Close()

	history, err := readFrame(args[0])
	if err != nil {
		return err
	}
	result, err := model.PredictDuration(history, flagForecastDuration)
	if err != nil {
		return err
	}
	return withOutput(cmd, flagForecastOutput, func(w io.Writer) error {
		return result.WriteCSV(w, cfg.Model.TimeColumn)
	})
}

func withOutput(cmd *cobra.Command, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(cmd.OutOrStdout())
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeValuesCSV(w io.Writer, columns []string, d *origami.Dense) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(columns); err != nil {
		return err
	}
	record := make([]string, d.RowWidth())
	for i := 0; i < d.Rows(); i++ {
		for j, v := range d.Row(i) {
			record[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
