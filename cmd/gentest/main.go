package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	gentest "github.com/webgfx/gentest"
	"github.com/webgfx/gentest/config"
	"github.com/webgfx/gentest/expand"
)

var (
	// Global flags
	verbose     bool
	runSelfTest bool

	definitionDir string
	nameMapFile   string
	elementOut    string
	offscreenOut  string

	// Logger
	logger *zap.Logger
)

// rootCmd runs a full generation pass, or the embedded self tests with --test.
var rootCmd = &cobra.Command{
	Use:   "gentest",
	Short: "Generate canvas conformance test files from declarative definitions",
	Long: `gentest expands a declarative corpus of canvas test definitions into
concrete runnable test files for three execution contexts (canvas element,
OffscreenCanvas, worker), plus expected-output files for pixel comparison.

Run without arguments to generate the full suite. Run with --test to execute
the embedded self tests and exit.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		if runSelfTest {
			if err := expand.SelfTest(); err != nil {
				return err
			}
			logger.Info("self test passed")
			return nil
		}

		cfg := config.Default()
		cfg.DefinitionDir = definitionDir
		cfg.NameMapFile = nameMapFile
		cfg.Element = config.TargetConfig{OutDir: elementOut, ImageOutDir: elementOut}
		cfg.Offscreen = config.TargetConfig{OutDir: offscreenOut, ImageOutDir: offscreenOut}
		return gentest.GenerateAll(cfg, logger)
	},
}

func init() {
	defaults := config.Default()
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&runSelfTest, "test", false, "run embedded self tests and exit")
	rootCmd.Flags().StringVar(&definitionDir, "definitions", defaults.DefinitionDir,
		"directory holding the YAML test definitions")
	rootCmd.Flags().StringVar(&nameMapFile, "name-map", defaults.NameMapFile,
		"YAML file mapping test-name prefixes to output subdirectories")
	rootCmd.Flags().StringVar(&elementOut, "element-out", defaults.Element.OutDir,
		"output root for canvas element tests")
	rootCmd.Flags().StringVar(&offscreenOut, "offscreen-out", defaults.Offscreen.OutDir,
		"output root for offscreen and worker tests")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
