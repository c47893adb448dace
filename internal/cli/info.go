package cli

import (
	"fmt"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/usr-ein/origami/internal/snapshot"
)

var flagInfoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info MODEL",
	Short: "Describe a dumped model without loading its engine",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)
	infoCmd.Flags().BoolVar(&flagInfoJSON, "json", false, "emit the snapshot record as JSON")
}

func runInfo(cmd *cobra.Command, args []string) error {
	record, err := snapshot.Load(args[0])
	if err != nil {
		return err
	}
	if flagInfoJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(record)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "kind=%s trained=%t schema=%d codec=%d\n",
		record.Kind, record.Trained, record.SchemaVersion, record.CodecVersion)
	fmt.Fprintf(out, "input_shape=%v output_shape=%v check_output=%t\n",
		record.InputShape, record.OutputShape, record.CheckOutput)
	fmt.Fprintf(out, "cache_backend=%s cache_root=%s cache_generation=%s\n",
		record.CacheBackend, record.CacheRoot, record.CacheGeneration)
	return nil
}
