package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/usr-ein/origami/internal/memo"
	"github.com/usr-ein/origami/internal/snapshot"
	"github.com/usr-ein/origami/pkg/origami"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage memoized prediction caches",
}

var (
	flagCacheClearModel string
	flagCacheClearHard  bool
)

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear a model's cache generation",
	Long: `Clear empties the cache generation of a dumped model. A soft clear
keeps the store directory; --hard removes it from disk entirely.`,
	RunE: runCacheClear,
}

var flagPruneKeepModels []string

var cachePruneCmd = &cobra.Command{
	Use:   "prune CACHE_ROOT",
	Short: "Remove cache generations no dumped model references",
	Long: `Prune deletes every generation directory under the cache root except
those referenced by the model dumps passed via --keep.`,
	Args: cobra.ExactArgs(1),
	RunE: runCachePrune,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cachePruneCmd)

	cacheClearCmd.Flags().StringVarP(&flagCacheClearModel, "model", "m", "", "model dump path (required)")
	cacheClearCmd.Flags().BoolVar(&flagCacheClearHard, "hard", false, "remove the cache directory instead of emptying it")
	_ = cacheClearCmd.MarkFlagRequired("model")

	cachePruneCmd.Flags().StringSliceVar(&flagPruneKeepModels, "keep", nil, "model dumps whose generations survive the prune")
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	model, err := origami.LoadAutoReg(flagCacheClearModel, modelConfig())
	if err != nil {
		return err
	}
	defer model.Close()

	if err := model.ClearCache(!flagCacheClearHard); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "cleared cache=%s hard=%t\n", model.CacheLocation(), flagCacheClearHard)
	return nil
}

func runCachePrune(cmd *cobra.Command, args []string) error {
	root := args[0]
	keep := make([]string, 0, len(flagPruneKeepModels))
	for _, path := range flagPruneKeepModels {
		record, err := snapshot.Load(path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}
		if record.CacheGeneration != "" {
			keep = append(keep, record.CacheGeneration)
		}
	}

	if err := memo.RemoveOrphans(root, keep...); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "pruned root=%s kept=%d\n", root, len(keep))
	return nil
}
