// =============================================================================
// Payhawk Bundle Converter - Process Command
// =============================================================================
//
// This file defines the 'process' command, the main batch command. It
// converts every zip bundle in the input directory.
//
// COMMAND USAGE:
//   converter process [--dry-run] [--single --file <path>]
//
// PROCESSING FLOW:
//   1. Load configuration and the mapping rules
//   2. Read the destination schema template
//   3. Discover *.zip bundles in the input directory
//   4. Convert bundles concurrently (at most max_concurrency at a time)
//   5. Write outputs, archive inputs, write the error log and summary
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/converter"
	"github.com/ginjaninja78/payhawk-bundle-converter/pkg/utils"
)

// =============================================================================
// COMMAND FLAGS
// =============================================================================

// dryRun converts without writing or archiving anything.
var dryRun bool

// singleFile processes only the bundle named by --file.
var singleFile bool

// filePath is the bundle processed with --single.
var filePath string

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Convert the Payhawk bundles in the input directory",
	Long: `The process command scans the input directory for zip bundles and converts
each one against the destination schema template.

Bundles are processed concurrently, bounded by max_concurrency. A failing
bundle does not stop the others unless continue_on_error is false.

On success:
  - The converted bundle is written to the output directory
  - The input bundle is moved to the input archive
  - A copy of the output goes to the output archive

On error:
  - An error log is created in the output directory
  - The input bundle stays in the input directory`,

	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd)
	},
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().BoolVar(
		&dryRun,
		"dry-run",
		false,
		"Convert without writing outputs or archiving inputs",
	)

	processCmd.Flags().BoolVar(
		&singleFile,
		"single",
		false,
		"Process only a single bundle (use with --file)",
	)

	processCmd.Flags().StringVar(
		&filePath,
		"file",
		"",
		"Path to a specific bundle to process (used with --single)",
	)
}

// =============================================================================
// PROCESS FUNCTION
// =============================================================================

func runProcess(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	rt, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	fmt.Fprintln(out, "=== Payhawk Bundle Converter ===")

	fm := newFileManager(rt)
	if err := fm.EnsureDirectories(); err != nil {
		return err
	}

	template, err := rt.converter.LoadTemplate("")
	if err != nil {
		return err
	}

	var inputFiles []string
	if singleFile {
		if filePath == "" {
			return fmt.Errorf("--single requires --file")
		}
		inputFiles = []string{filePath}
	} else {
		inputFiles, err = fm.DiscoverInputFiles("*.zip")
		if err != nil {
			return fmt.Errorf("failed to discover input files: %w", err)
		}
	}

	if len(inputFiles) == 0 {
		fmt.Fprintln(out, "No zip bundles found in the input directory.")
		return nil
	}

	fmt.Fprintf(out, "Found %d bundle(s) to process\n", len(inputFiles))
	if dryRun {
		fmt.Fprintln(out, "Dry run: nothing will be written or archived.")
	}

	summary := processBundles(rt, inputFiles, template, fm, dryRun, out)

	fmt.Fprintln(out, "\n=== Processing Complete ===")
	fmt.Fprintf(out, "Total bundles:   %d\n", summary.TotalFiles)
	fmt.Fprintf(out, "Successful:      %d\n", summary.SuccessfulFiles)
	fmt.Fprintf(out, "Errors:          %d\n", summary.FailedFiles)
	fmt.Fprintf(out, "Time elapsed:    %s\n", summary.EndTime.Sub(summary.StartTime))

	if summary.FailedFiles > 0 {
		fmt.Fprintln(out, "\nErrors have been logged to the output directory.")
		return fmt.Errorf("%d of %d bundle(s) failed", summary.FailedFiles, summary.TotalFiles)
	}

	return nil
}

// newFileManager builds a FileManager from the configured directories.
func newFileManager(rt *cliEnv) *utils.FileManager {
	return utils.NewFileManager(
		rt.cfg.InputDir,
		rt.cfg.OutputDir,
		rt.cfg.InputArchiveDir,
		rt.cfg.OutputArchiveDir,
	)
}

// processBundles converts files with at most max_concurrency conversions in
// flight, prints one line per bundle and writes the error log and summary.
// When continue_on_error is false, bundles not yet started after the first
// failure are skipped.
func processBundles(rt *cliEnv, files []string, template *converter.Template, fm *utils.FileManager, dryRun bool, out io.Writer) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{StartTime: time.Now(), TotalFiles: len(files)}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		stopped bool
	)
	sem := make(chan struct{}, rt.cfg.MaxConcurrency)
	results := make(chan converter.FileResult, len(files))

	for _, file := range files {
		sem <- struct{}{}

		mu.Lock()
		skip := stopped
		mu.Unlock()
		if skip {
			<-sem
			results <- converter.FileResult{
				FilePath: file,
				Error:    fmt.Errorf("skipped after an earlier failure (continue_on_error is false)"),
			}
			continue
		}

		wg.Add(1)
		go func(path string) {
			defer wg.Done()
			defer func() { <-sem }()

			fr := rt.converter.ProcessFile(path, template, fm, dryRun)
			if !fr.Success && !rt.cfg.ShouldContinueOnError() {
				mu.Lock()
				stopped = true
				mu.Unlock()
			}
			results <- fr
		}(file)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	var errorEntries []utils.ErrorLogEntry

	for fr := range results {
		name := filepath.Base(fr.FilePath)
		errorEntries = append(errorEntries, converter.CellErrorLogEntries(fr)...)

		if !fr.Success {
			summary.FailedFiles++
			errorEntries = append(errorEntries, converter.ErrorLogEntries(fr)...)
			summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
				InputFile:    name,
				ErrorMessage: fr.Error.Error(),
				ErrorType:    converter.ErrorType(fr.Error),
			})
			fmt.Fprintf(out, "  ✗ %s: %v\n", name, fr.Error)
			continue
		}

		summary.SuccessfulFiles++
		stats := fr.Result.Stats
		summary.TotalRows += stats.Rows
		summary.TotalDocuments += stats.Documents
		summary.TotalWarnings += stats.Warnings
		summary.CellErrors += stats.CellErrors
		summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
			InputFile:   name,
			OutputFile:  filepath.Base(fr.OutputFile),
			ArchivePath: fr.ArchivePath,
			Rows:        stats.Rows,
			Documents:   stats.Documents,
			Warnings:    stats.Warnings,
			ProcessTime: fr.ProcessingTime,
		})

		target := filepath.Base(fr.OutputFile)
		if dryRun {
			target = "(dry run)"
		}
		fmt.Fprintf(out, "  ✓ %s -> %s (%d rows, %d documents, %d warnings)\n",
			name, target, stats.Rows, stats.Documents, stats.Warnings)
		for _, w := range fr.Result.Warnings {
			fmt.Fprintf(out, "      warning: %s\n", w.Message)
		}
	}

	summary.EndTime = time.Now()

	if dryRun {
		return summary
	}

	if path, err := utils.WriteErrorLog(errorEntries, fm.OutputDir); err != nil {
		rt.logger.Error("Failed to write error log: %v", err)
	} else if path != "" {
		rt.logger.Info("Error log written to %s", path)
	}

	if path, err := utils.WriteSummaryLog(summary, fm.OutputDir); err != nil {
		rt.logger.Error("Failed to write summary: %v", err)
	} else {
		rt.logger.Debug("Summary written to %s", path)
	}

	return summary
}
