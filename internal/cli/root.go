// Package cli implements the student-model CLI commands.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rcliao/student-model/internal/config"
	"github.com/rcliao/student-model/internal/store"
)

var (
	dataPath   string
	formatFlag string
	verbose    bool

	cfg    *config.Config
	logger = zap.NewNop()
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "student-model",
	Short: "Track conceptual mastery across study sessions",
	Long: `Tracks per-concept mastery, confidence, struggles, breakthroughs, prerequisite
links and misconceptions in a single local JSON file.

Every write keeps the previous version as <file>.backup and replaces the file
atomically; a corrupt file is recovered from the backup on the next read.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if formatFlag != "text" && formatFlag != "json" {
			return fmt.Errorf("invalid --format %q (must be text or json)", formatFlag)
		}
		loader := config.NewLoader()
		if err := loader.BindFlag("path", cmd.Root().PersistentFlags().Lookup("data")); err != nil {
			return err
		}
		c, err := loader.Load()
		if err != nil {
			return err
		}
		cfg = c

		l, err := newLogger(c.Log, verbose)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Sync()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dataPath, "data", "d", "", "Model file (default: $STUDENT_MODEL_PATH or ~/student_model.json)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format for read commands: text or json")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging to stderr")
}

func newLogger(lc config.LogConfig, verbose bool) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Encoding = lc.Format
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zc.DisableStacktrace = true

	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, err
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

func openStore() *store.Store {
	return store.New(cfg.Path, store.WithLogger(logger))
}
