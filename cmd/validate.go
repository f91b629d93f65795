// =============================================================================
// Payhawk Bundle Converter - Validate Command
// =============================================================================
//
// This file defines the 'validate' command. It runs a bundle through
// unpacking, validation and mapping and reports what a conversion would
// produce, without writing anything.
//
// COMMAND USAGE:
//   converter validate --archive <bundle.zip> [--schema <template.xlsx>]
//
// EXIT STATUS:
//   0 when the bundle would convert (warnings may still be printed),
//   1 when the archive is unreadable or validation fails.
//
// =============================================================================

package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/converter"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/validation"
)

var (
	validateArchive string
	validateSchema  string
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check a bundle against the destination schema without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate(cmd)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateArchive, "archive", "", "Path to the zip bundle to check")
	validateCmd.Flags().StringVar(&validateSchema, "schema", "", "Path to the schema template (default: templates_dir/schema_template)")
	validateCmd.MarkFlagRequired("archive")
}

func runValidate(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()

	rt, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer rt.close()

	template, err := rt.converter.LoadTemplate(validateSchema)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(validateArchive)
	if err != nil {
		return fmt.Errorf("failed to read bundle: %w", err)
	}

	result, err := rt.converter.Run(converter.Request{
		Name:       filepath.Base(validateArchive),
		Archive:    data,
		Schema:     template.Data,
		SchemaName: template.Name,
		SkipOutput: true,
	})
	if err != nil {
		var failure *validation.Failure
		if errors.As(err, &failure) {
			fmt.Fprint(out, validation.FormatProblems(failure.Problems))
		}
		return err
	}

	fmt.Fprintf(out, "Bundle %s is valid.\n", result.Name)
	fmt.Fprintf(out, "  Source file: %s\n", result.SourceFile)
	fmt.Fprintf(out, "  Rows:        %d\n", result.Stats.Rows)
	fmt.Fprintf(out, "  Documents:   %d\n", result.Stats.Documents)

	for _, info := range result.DocumentInfo {
		if info.Readable {
			fmt.Fprintf(out, "    %s (%d page(s))\n", info.Name, info.Pages)
		} else {
			fmt.Fprintf(out, "    %s (unreadable: %s)\n", info.Name, info.Problem)
		}
	}

	if len(result.Warnings) > 0 {
		fmt.Fprintf(out, "Mapping warnings (%d):\n", len(result.Warnings))
		for _, w := range result.Warnings {
			fmt.Fprintf(out, "  - %s\n", w.Message)
		}
	}
	for _, ce := range result.CellErrors {
		fmt.Fprintf(out, "  ! %v\n", ce)
	}

	return nil
}
