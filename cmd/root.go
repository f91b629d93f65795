// =============================================================================
// Payhawk Bundle Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. Every other command
// is attached to it.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── processCmd  (converter process)
//   ├── validateCmd (converter validate)
//   ├── serveCmd    (converter serve)
//   ├── watchCmd    (converter watch)
//   └── versionCmd  (converter version)
//
// CONFIGURATION:
//   The root command owns the global flags (--config, --verbose). Commands
//   call loadEnv to get the configuration, the logger and a converter
//   built from them.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/config"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/converter"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/logging"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the main configuration file.
var cfgFile string

// verbose enables debug logging.
var verbose bool

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "Payhawk Bundle Converter - Reshape Payhawk expense bundles for accounting import",
	Long: `Payhawk Bundle Converter takes a zip bundle exported from Payhawk (one CSV
expense export plus the PDF invoices) and produces a new zip holding a
spreadsheet in the column layout the accounting import expects, with the
original invoices under a documents folder.

Key Features:
  - Destination columns defined by an XLSX schema template
  - Structural validation that reports every problem at once
  - Tolerant field mapping: missing source columns become warnings
  - Batch, watch and HTTP modes

Example Usage:
  converter process                          # Convert every bundle in the input directory
  converter validate --archive march.zip     # Check a bundle without writing anything
  converter serve                            # Start the HTTP API
  converter watch                            # Convert bundles as they are dropped in`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute runs the root command. It is called by main.main().
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"config.yaml",
		"Path to the main configuration file",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable verbose output for debugging",
	)
}

// =============================================================================
// COMMAND ENVIRONMENT
// =============================================================================

// cliEnv is what every command works with.
type cliEnv struct {
	cfg       *config.MainConfig
	logger    *logging.StructuredLogger
	converter *converter.Converter
}

// loadEnv loads the configuration, opens the logger and builds the
// converter with the configured rule table.
func loadEnv(cmd *cobra.Command) (*cliEnv, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	logger, err := logging.New(logging.Options{
		Level:  level,
		File:   cfg.LogFile,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, err
	}

	rules, err := converter.RulesFromConfig(cfg)
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("failed to load mapping rules: %w", err)
	}

	return &cliEnv{
		cfg:       cfg,
		logger:    logger,
		converter: converter.New(cfg, rules, logger),
	}, nil
}

// loadConfig reads --config. A missing config.yaml is not an error unless
// the path was given explicitly; defaults are used instead.
func loadConfig(cmd *cobra.Command) (*config.MainConfig, error) {
	cfg, err := config.LoadMainConfig(cfgFile)
	if err == nil {
		return cfg, nil
	}

	if errors.Is(err, os.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.DefaultMainConfig(), nil
	}
	return nil, fmt.Errorf("failed to load main config: %w", err)
}

func (rt *cliEnv) close() {
	rt.logger.Close()
}
