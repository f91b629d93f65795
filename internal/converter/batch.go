package converter

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/archive"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/validation"
	"github.com/ginjaninja78/payhawk-bundle-converter/pkg/utils"
)

// Template is a destination schema template read from disk.
type Template struct {
	Name string
	Data []byte
}

// LoadTemplate reads the configured schema template
// (templates_dir/schema_template), or path when it is not empty.
func (c *Converter) LoadTemplate(path string) (*Template, error) {
	if path == "" {
		path = filepath.Join(c.mainConfig.TemplatesDir, c.mainConfig.SchemaTemplate)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schema template: %w", err)
	}
	return &Template{Name: filepath.Base(path), Data: data}, nil
}

// FileResult is the outcome of processing one bundle file.
type FileResult struct {
	// FilePath is the input bundle.
	FilePath string

	// OutputFile is the written output bundle; empty on failure or dry run.
	OutputFile string

	// ArchivePath is where the input bundle was moved after success.
	ArchivePath string

	Success bool
	Error   error

	// Result is the conversion result, nil on failure.
	Result *Result

	ProcessingTime time.Duration
}

// ProcessFile converts the bundle at filePath and, unless dryRun is set,
// writes the output bundle and archives both files with fm.
func (c *Converter) ProcessFile(filePath string, template *Template, fm *utils.FileManager, dryRun bool) FileResult {
	startTime := time.Now()
	fileResult := FileResult{FilePath: filePath}

	data, err := os.ReadFile(filePath)
	if err != nil {
		fileResult.Error = fmt.Errorf("failed to read bundle: %w", err)
		fileResult.ProcessingTime = time.Since(startTime)
		return fileResult
	}

	result, err := c.Run(Request{
		Name:       filepath.Base(filePath),
		Archive:    data,
		Schema:     template.Data,
		SchemaName: template.Name,
		SkipOutput: dryRun,
	})
	if err != nil {
		fileResult.Error = err
		fileResult.ProcessingTime = time.Since(startTime)
		return fileResult
	}

	fileResult.Result = result

	if dryRun {
		fileResult.Success = true
		fileResult.ProcessingTime = time.Since(startTime)
		return fileResult
	}

	outputName := utils.GenerateOutputFileName(c.mainConfig.UUIDFormat, map[string]string{
		"original": utils.BaseName(filePath),
	})
	outputPath := filepath.Join(fm.OutputDir, outputName)

	if err := os.WriteFile(outputPath, result.Output, 0644); err != nil {
		fileResult.Error = fmt.Errorf("failed to write output: %w", err)
		fileResult.ProcessingTime = time.Since(startTime)
		return fileResult
	}

	fileResult.OutputFile = outputPath
	c.logger.Info("Wrote output to: %s", outputPath)

	// Archival problems are logged but do not fail the bundle.
	if archived, err := fm.ArchiveInputFile(filePath); err != nil {
		c.logger.Warn("Failed to archive input %s: %v", filePath, err)
	} else {
		fileResult.ArchivePath = archived
	}
	if _, err := fm.ArchiveOutputFile(outputPath); err != nil {
		c.logger.Warn("Failed to archive output %s: %v", outputPath, err)
	}

	fileResult.Success = true
	fileResult.ProcessingTime = time.Since(startTime)
	return fileResult
}

// ErrorType names the failure class of err for error logs and API replies.
func ErrorType(err error) string {
	var formatErr *archive.FormatError
	var failure *validation.Failure

	switch {
	case err == nil:
		return ""
	case errors.As(err, &formatErr):
		return "ArchiveFormatError"
	case errors.As(err, &failure):
		return "ValidationFailure"
	default:
		return "ProcessingError"
	}
}

// ErrorLogEntries turns a failed bundle into error log entries, one per
// validation problem when there are several.
func ErrorLogEntries(fr FileResult) []utils.ErrorLogEntry {
	if fr.Error == nil {
		return nil
	}

	now := time.Now()
	fileName := filepath.Base(fr.FilePath)

	var failure *validation.Failure
	if errors.As(fr.Error, &failure) {
		entries := make([]utils.ErrorLogEntry, len(failure.Problems))
		for i, p := range failure.Problems {
			entries[i] = utils.ErrorLogEntry{
				Timestamp:    now,
				FileName:     fileName,
				ErrorType:    "ValidationFailure",
				ErrorMessage: p,
			}
		}
		return entries
	}

	return []utils.ErrorLogEntry{{
		Timestamp:    now,
		FileName:     fileName,
		ErrorType:    ErrorType(fr.Error),
		ErrorMessage: fr.Error.Error(),
	}}
}

// CellErrorLogEntries reports per-cell transform errors of a successful
// bundle so they reach the error log too.
func CellErrorLogEntries(fr FileResult) []utils.ErrorLogEntry {
	if fr.Result == nil || len(fr.Result.CellErrors) == 0 {
		return nil
	}

	now := time.Now()
	entries := make([]utils.ErrorLogEntry, len(fr.Result.CellErrors))
	for i, ce := range fr.Result.CellErrors {
		entries[i] = utils.ErrorLogEntry{
			Timestamp:    now,
			FileName:     filepath.Base(fr.FilePath),
			ErrorType:    "TransformError",
			ErrorMessage: ce.Error(),
			RowNumber:    ce.Row + 1,
			FieldName:    ce.Rule,
			FieldValue:   fmt.Sprintf("%q", ce.Value),
		}
	}
	return entries
}
