// =============================================================================
// Payhawk Bundle Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It orchestrates the whole
// pipeline for a single bundle, from raw archive bytes to the output archive.
//
// CONVERSION PIPELINE:
//   1. Unpack the bundle (CSV export + PDF documents)
//   2. Parse the destination schema template
//   3. Validate structure (all problems collected; abort on any)
//   4. Parse the CSV export
//   5. Map source fields onto the destination schema
//   6. Inventory the PDF documents
//   7. Write the destination spreadsheet
//   8. Pack the spreadsheet and documents into the output archive
//
// CONCURRENCY:
//   A Converter holds only immutable settings and the rule table. Run owns
//   every table and map it builds, so one Converter can serve concurrent
//   requests.
//
// =============================================================================

package converter

import (
	"fmt"
	"path"
	"time"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/archive"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/config"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/csvparser"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/docs"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/logging"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/mapping"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/types"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/validation"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/xlsxparser"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/xlsxwriter"
)

// =============================================================================
// REQUEST AND RESULT
// =============================================================================

// Request is one conversion.
type Request struct {
	// Name identifies the bundle in logs (usually its file name).
	Name string

	// Archive is the raw zip bundle.
	Archive []byte

	// Schema is the raw destination schema template (.xlsx).
	Schema []byte

	// SchemaName is the template's file name. The schema is named after it.
	SchemaName string

	// SkipOutput stops the pipeline after mapping: no spreadsheet and no
	// output archive are produced.
	SkipOutput bool
}

// Result is the outcome of a successful conversion.
type Result struct {
	Name       string
	SourceFile string
	Schema     types.DestinationSchema

	// Table is the populated destination table.
	Table *types.DestinationTable

	// Documents are passed through unchanged.
	Documents    types.DocumentMap
	DocumentInfo []docs.Info

	Warnings   []mapping.Warning
	CellErrors []*mapping.TransformError

	// Unpacking notes: CSVs replaced by a later one, duplicate document
	// names, and entries that were neither CSV nor PDF.
	ShadowedTabular      []string
	OverwrittenDocuments []string
	Skipped              []string

	// SheetFile is the spreadsheet's name inside Output.
	SheetFile string

	// Output is the packed output archive.
	Output []byte

	Stats Stats
}

// Stats contains processing statistics.
type Stats struct {
	Rows           int
	Columns        int
	Documents      int
	Warnings       int
	CellErrors     int
	ProcessingTime time.Duration
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter runs the pipeline with fixed settings and rules.
type Converter struct {
	mainConfig *config.MainConfig
	rules      []mapping.Rule
	logger     logging.Logger
}

// New creates a Converter.
//
// PARAMETERS:
//   - mainConfig: The application configuration. Nil means defaults.
//   - rules: The mapping table. Nil means mapping.DefaultRules().
//   - logger: Where progress is logged. Nil discards logs.
func New(mainConfig *config.MainConfig, rules []mapping.Rule, logger logging.Logger) *Converter {
	if mainConfig == nil {
		mainConfig = config.DefaultMainConfig()
	}
	if rules == nil {
		rules = mapping.DefaultRules()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Converter{
		mainConfig: mainConfig,
		rules:      rules,
		logger:     logger,
	}
}

// RulesFromConfig returns the rule table named by mapping_file, or the
// built-in table when none is configured.
func RulesFromConfig(mainConfig *config.MainConfig) ([]mapping.Rule, error) {
	if mainConfig == nil || mainConfig.MappingFile == "" {
		return mapping.DefaultRules(), nil
	}

	mappingConfig, err := config.LoadMappingConfig(mainConfig.MappingFile)
	if err != nil {
		return nil, err
	}
	return mapping.FromConfig(mappingConfig)
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes the conversion pipeline for one bundle.
//
// RETURNS:
//   - The result, on success.
//   - A *archive.FormatError when the bundle is not a readable zip.
//   - A *validation.Failure carrying every structural problem.
//   - A wrapped error when the schema or the CSV cannot be parsed, or the
//     output cannot be built.
//
// Mapping warnings and per-cell errors never fail a run; they are returned
// on the result.
func (c *Converter) Run(req Request) (*Result, error) {
	startTime := time.Now()
	name := req.Name
	if name == "" {
		name = "bundle"
	}

	c.logger.Info("Converting bundle: %s", name)

	// =========================================================================
	// STEP 1: UNPACK
	// =========================================================================

	unpacked, err := archive.Unpack(req.Archive)
	if err != nil {
		return nil, err
	}

	for _, shadowed := range unpacked.ShadowedTabular {
		c.logger.Warn("%s: CSV %s replaced by a later CSV in the archive", name, shadowed)
	}
	for _, doc := range unpacked.OverwrittenDocuments {
		c.logger.Warn("%s: document %s appears more than once; last copy kept", name, doc)
	}
	if len(unpacked.Skipped) > 0 {
		c.logger.Debug("%s: skipped %d entries that are neither CSV nor PDF", name, len(unpacked.Skipped))
	}

	// =========================================================================
	// STEP 2: PARSE DESTINATION SCHEMA
	// =========================================================================

	schema, err := xlsxparser.ParseBytes(req.Schema, req.SchemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to parse destination schema: %w", err)
	}

	c.logger.Debug("Destination schema %q has %d columns", schema.Name, len(schema.Columns))

	// =========================================================================
	// STEP 3: VALIDATE STRUCTURE
	// =========================================================================

	problems := validation.Validate(unpacked.HasTabular(), unpacked.HasDocuments(), schema.Columns)
	if len(problems) > 0 {
		for _, p := range problems {
			c.logger.Warn("%s: %s", name, p)
		}
		return nil, &validation.Failure{Problems: problems}
	}

	// =========================================================================
	// STEP 4: PARSE CSV EXPORT
	// =========================================================================

	source, err := csvparser.Parse(unpacked.Tabular.Data, unpacked.Tabular.Name, c.mainConfig.CSVSettings)
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV %s: %w", unpacked.Tabular.Name, err)
	}

	c.logger.Debug("Parsed %d rows from %s", source.RowCount, source.SourceFile)

	// =========================================================================
	// STEP 5: MAP FIELDS
	// =========================================================================

	mapped := mapping.Map(source, schema, c.rules)

	for _, w := range mapped.Warnings {
		c.logger.Warn("%s: %s", name, w.Message)
	}
	for _, ce := range mapped.CellErrors {
		c.logger.Warn("%s: %v", name, ce)
	}

	// =========================================================================
	// STEP 6: INVENTORY DOCUMENTS
	// =========================================================================

	inventory := docs.Inventory(unpacked.Documents)
	for _, unreadable := range docs.Unreadable(inventory) {
		c.logger.Warn("%s: document %s could not be read as a PDF; passing it through", name, unreadable)
	}

	result := &Result{
		Name:                 name,
		SourceFile:           source.SourceFile,
		Schema:               schema,
		Table:                mapped.Table,
		Documents:            unpacked.Documents,
		DocumentInfo:         inventory,
		Warnings:             mapped.Warnings,
		CellErrors:           mapped.CellErrors,
		ShadowedTabular:      unpacked.ShadowedTabular,
		OverwrittenDocuments: unpacked.OverwrittenDocuments,
		Skipped:              unpacked.Skipped,
		Stats: Stats{
			Rows:       mapped.Table.RowCount(),
			Columns:    len(mapped.Table.Columns),
			Documents:  len(unpacked.Documents),
			Warnings:   len(mapped.Warnings),
			CellErrors: len(mapped.CellErrors),
		},
	}

	if req.SkipOutput {
		result.Stats.ProcessingTime = time.Since(startTime)
		return result, nil
	}

	// =========================================================================
	// STEP 7: WRITE SPREADSHEET
	// =========================================================================

	sheetName := c.sheetName(schema)
	sheet, err := xlsxwriter.Write(mapped.Table, sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to write spreadsheet: %w", err)
	}

	// =========================================================================
	// STEP 8: PACK OUTPUT ARCHIVE
	// =========================================================================

	result.SheetFile = xlsxwriter.SheetName(sheetName) + ".xlsx"
	files := OutputFiles(result.SheetFile, sheet, c.mainConfig.DocumentsDir, unpacked.Documents)

	output, err := archive.Pack(files)
	if err != nil {
		return nil, fmt.Errorf("failed to pack output archive: %w", err)
	}

	result.Output = output
	result.Stats.ProcessingTime = time.Since(startTime)

	c.logger.Info("Converted %s: %d rows, %d documents, %d warnings",
		name, result.Stats.Rows, result.Stats.Documents, result.Stats.Warnings)

	return result, nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// sheetName is the configured sheet name, or the schema's name.
func (c *Converter) sheetName(schema types.DestinationSchema) string {
	if c.mainConfig.SheetName != "" {
		return c.mainConfig.SheetName
	}
	return schema.Name
}

// OutputFiles lays out the output archive: the spreadsheet at the root and
// every document under documentsDir, in name order.
func OutputFiles(sheetFile string, sheet []byte, documentsDir string, documents types.DocumentMap) []archive.File {
	if documentsDir == "" {
		documentsDir = "documents"
	}

	files := make([]archive.File, 0, len(documents)+1)
	files = append(files, archive.File{Name: sheetFile, Data: sheet})
	for _, name := range documents.Names() {
		files = append(files, archive.File{Name: path.Join(documentsDir, name), Data: documents[name]})
	}
	return files
}
