// Package cli implements the origamictl command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/usr-ein/origami/internal/config"
	"github.com/usr-ein/origami/pkg/origami"
)

var (
	cfg *config.Config
	log zerolog.Logger

	flagConfig       string
	flagCacheRoot    string
	flagCacheBackend string
	flagLogLevel     string
)

var rootCmd = &cobra.Command{
	Use:   "origamictl",
	Short: "Train, persist and query cached forecasting models",
	Long: `origamictl drives the origami contract layer from the command line.
Models are trained on CSV time series, dumped to compressed snapshot
files, and answer predictions through a content-addressed cache.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if flagConfig != "" {
			cfg, err = config.LoadFile(flagConfig)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return err
		}
		if flagCacheRoot != "" {
			cfg.Cache.Root = flagCacheRoot
		}
		if flagCacheBackend != "" {
			cfg.Cache.Backend = flagCacheBackend
		}
		if flagLogLevel != "" {
			cfg.Logging.Level = flagLogLevel
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		log = cfg.NewLogger(os.Stderr)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "config file path (overrides the default search)")
	rootCmd.PersistentFlags().StringVar(&flagCacheRoot, "cache-root", "", "cache directory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagCacheBackend, "cache-backend", "", "cache backend: badger|sqlite|memory (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level (overrides config)")
}

// Execute runs the command tree and reports the exit code.
func Execute() int {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func modelConfig() origami.Config {
	return origami.Config{
		CacheRoot:       cfg.Cache.Root,
		CacheBackend:    cfg.Cache.Backend,
		SkipOutputCheck: cfg.Model.SkipOutputCheck,
		Logger:          &log,
	}
}

func readFrame(path string) (*origami.Frame, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()
	return origami.ReadFrameCSV(f, cfg.Model.TimeColumn)
}
