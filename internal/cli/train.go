package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usr-ein/origami/pkg/origami"
)

var (
	flagTrainOutput string
	flagTrainMaxLag int
)

var trainCmd = &cobra.Command{
	Use:   "train DATA_CSV",
	Short: "Train an autoregressive model on a CSV time series",
	Long: `Train fits an autoregressive engine on the given series and dumps the
model to the output path. The output extension picks the compression
scheme (.gz, .zst, .bz2, .xz, .lzma or none).`,
	Args: cobra.ExactArgs(1),
	RunE: runTrain,
}

func init() {
	rootCmd.AddCommand(trainCmd)
	trainCmd.Flags().StringVarP(&flagTrainOutput, "output", "o", "", "model dump path (required)")
	trainCmd.Flags().IntVar(&flagTrainMaxLag, "max-lag", 0, "autoregression window (0 uses the configured default)")
	_ = trainCmd.MarkFlagRequired("output")
}

func runTrain(cmd *cobra.Command, args []string) error {
	history, err := readFrame(args[0])
	if err != nil {
		return err
	}
	if history.Rows() == 0 {
		return errors.New("training data is empty")
	}

	maxLag := flagTrainMaxLag
	if maxLag == 0 {
		maxLag = cfg.Model.MaxLag
	}
	cols := len(history.Columns())
	model, err := origami.NewAutoReg(origami.Shape{cols}, origami.Shape{cols}, modelConfig())
	if err != nil {
		return err
	}
	defer model.Close()

	if err := model.TrainFrame(history, maxLag); err != nil {
		return err
	}
	if err := model.Dump(flagTrainOutput); err != nil {
		return err
	}

	log.Info().
		Str("model", flagTrainOutput).
		Int("rows", history.Rows()).
		Int("columns", cols).
		Int("max_lag", model.MaxLag()).
		Msg("model trained")
	fmt.Fprintf(cmd.OutOrStdout(), "trained model=%s rows=%d columns=%d max_lag=%d\n",
		flagTrainOutput, history.Rows(), cols, model.MaxLag())
	return nil
}
