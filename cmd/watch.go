// =============================================================================
// Payhawk Bundle Converter - Watch Command
// =============================================================================
//
// This file defines the 'watch' command. Bundles already in the input
// directory are processed first; after that every zip dropped into it is
// converted once its writes settle.
//
// COMMAND USAGE:
//   converter watch [--debounce 500ms]
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/watch"
	"github.com/ginjaninja78/payhawk-bundle-converter/pkg/utils"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Convert bundles as they are dropped into the input directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runWatch(cmd)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a new bundle is processed")
}

func runWatch(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	rt, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	fm := newFileManager(rt)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	template, err := rt.converter.LoadTemplate("")
	if err != nil {
		return err
	}

	existing, err := fm.DiscoverInputFiles("*.zip")
	if err != nil {
		return fmt.Errorf("failed to discover input files: %w", err)
	}
	if len(existing) > 0 {
		fmt.Fprintf(out, "Processing %d bundle(s) already in %s\n", len(existing), fm.InputDir)
		processBundles(rt, existing, template, fm, false, out)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watch.Run(ctx, watch.Options{
		Dir:      fm.InputDir,
		Debounce: watchDebounce,
		Match:    utils.IsBundle,
		Logger:   rt.logger,
	}, func(path string) {
		// The bundle may already have been archived by an earlier event.
		if !utils.FileExists(path) {
			return
		}
		processBundles(rt, []string{path}, template, fm, false, out)
	})
}
