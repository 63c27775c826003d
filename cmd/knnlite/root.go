package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hupe1980/knnlite"
)

// app carries state shared by every command.
type app struct {
	envFile string
	index   string
	cfg     Config
	logger  *knnlite.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "knnlite",
		Short: "Exact nearest-neighbor search over snapshot files",
		Long: `knnlite - tooling for knnlite snapshot files.

Configuration is read from KNNLITE_* environment variables, optionally
loaded from a .env file:
  KNNLITE_INDEX         default snapshot path (index.bin)
  KNNLITE_WORKERS       search goroutines, 0 for one per CPU
  KNNLITE_FORMAT        snapshot format written: v0 or v1
  KNNLITE_COMPRESSION   v1 compression: none, zstd or lz4
  KNNLITE_MEMORY_LIMIT  record memory budget in bytes, 0 for unlimited
  KNNLITE_LOG_FORMAT    text or json
  KNNLITE_LOG_LEVEL     debug, info, warn or error

Examples:
  # Build a snapshot from JSON lines
  knnlite import --input vectors.jsonl --index index.bin

  # Query it
  knnlite query --index index.bin --vector 0.1,0.2,0.3 -k 5

  # Convert to a compressed v1 snapshot
  knnlite convert index.bin index.v1 --format v1 --compression zstd`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := LoadConfig(a.envFile)
			if err != nil {
				return err
			}
			if a.index != "" {
				cfg.Index = a.index
			}
			a.cfg = cfg
			a.logger = cfg.NewLogger(cmd.ErrOrStderr())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.envFile, "env-file", "", "load configuration from this .env file")
	root.PersistentFlags().StringVar(&a.index, "index", "", "snapshot path (overrides KNNLITE_INDEX)")

	root.AddCommand(
		newInspectCmd(a),
		newQueryCmd(a),
		newImportCmd(a),
		newConvertCmd(a),
		newBenchCmd(a),
		newVersionCmd(),
	)
	return root
}

// newEngine creates an engine configured from a.cfg. extra options are
// applied last.
func (a *app) newEngine(extra ...knnlite.Option) (*knnlite.Engine, error) {
	opts, err := a.cfg.EngineOptions(a.logger)
	if err != nil {
		return nil, err
	}
	eng, err := knnlite.New(append(opts, extra...)...)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}
	return eng, nil
}
