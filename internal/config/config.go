// =============================================================================
// Payhawk Bundle Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading and managing all configuration files.
//
// CONFIGURATION FILES:
//   1. Main Config (config.yaml): directories, logging, output and server settings
//   2. Mapping File (optional, mapping_file): a YAML rule table replacing the
//      built-in Payhawk mapping
//
// Both files are read once at startup and are immutable afterwards, so the
// values can be shared by concurrent conversions.
//
// =============================================================================

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
// This is loaded from the main config.yaml file.
type MainConfig struct {
	// =========================================================================
	// DIRECTORY SETTINGS
	// =========================================================================

	// InputDir is scanned for *.zip bundles by the process and watch commands.
	// Default: "./input"
	InputDir string `yaml:"input_dir"`

	// OutputDir receives the converted bundles.
	// Default: "./output"
	OutputDir string `yaml:"output_dir"`

	// InputArchiveDir receives input bundles after a successful conversion.
	// Default: "./input_archive"
	InputArchiveDir string `yaml:"input_archive_dir"`

	// OutputArchiveDir keeps a copy of every converted bundle.
	// Default: "./output_archive"
	OutputArchiveDir string `yaml:"output_archive_dir"`

	// TemplatesDir holds the destination schema spreadsheet.
	// Default: "./templates"
	TemplatesDir string `yaml:"templates_dir"`

	// SchemaTemplate is the destination schema file name inside TemplatesDir.
	// Its first sheet's header row is the column contract of the output.
	// Default: "destination.xlsx"
	SchemaTemplate string `yaml:"schema_template"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogFile is an optional file receiving a copy of the log.
	LogFile string `yaml:"log_file"`

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level"`

	// =========================================================================
	// OUTPUT SETTINGS
	// =========================================================================

	// UUIDFormat defines the output bundle name.
	// Placeholders: {uuid}, {timestamp}, {date}, {time}, {original}
	// Default: "{original}_{timestamp}.zip"
	UUIDFormat string `yaml:"uuid_format"`

	// DocumentsDir is the folder inside the output bundle holding the PDFs.
	// Default: "documents"
	DocumentsDir string `yaml:"documents_dir"`

	// SheetName overrides the output sheet name. When empty the sheet is
	// named after the schema template.
	SheetName string `yaml:"sheet_name"`

	// MappingFile is an optional YAML rule table. Empty means the built-in
	// Payhawk mapping.
	MappingFile string `yaml:"mapping_file"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// MaxConcurrency is the maximum number of bundles converted at once.
	// Default: 4
	MaxConcurrency int `yaml:"max_concurrency"`

	// ContinueOnError keeps the batch going when one bundle fails.
	// Default: true
	ContinueOnError *bool `yaml:"continue_on_error"`

	// CSVSettings controls how the tabular export is decoded.
	CSVSettings CSVSettings `yaml:"csv_settings"`

	// Server holds the settings of the serve command.
	Server ServerSettings `yaml:"server"`
}

// ShouldContinueOnError resolves the ContinueOnError default.
func (c *MainConfig) ShouldContinueOnError() bool {
	return c.ContinueOnError == nil || *c.ContinueOnError
}

// =============================================================================
// CSV SETTINGS STRUCTURE
// =============================================================================

// CSVSettings contains settings for parsing the tabular export.
type CSVSettings struct {
	// Delimiter separates fields. Accepts a single character or one of
	// "tab", "pipe", "semicolon".
	// Default: ","
	Delimiter string `yaml:"delimiter"`

	// Encoding of the export.
	// Valid values: "UTF-8", "ISO-8859-1", "Windows-1252"
	// Default: "UTF-8"
	Encoding string `yaml:"encoding"`
}

// =============================================================================
// SERVER SETTINGS STRUCTURE
// =============================================================================

// ServerSettings configures the HTTP service.
type ServerSettings struct {
	// ListenAddr is the address the service binds to.
	// Default: ":8080"
	ListenAddr string `yaml:"listen_addr"`

	// MaxUploadMB caps the request body.
	// Default: 64
	MaxUploadMB int `yaml:"max_upload_mb"`

	// ResultTTL is how long a converted bundle stays downloadable.
	// Default: 15m
	ResultTTL time.Duration `yaml:"result_ttl"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// DefaultMainConfig returns a configuration with every default applied.
func DefaultMainConfig() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the main configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the main configuration file.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if the file cannot be read, parsed or validated.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseMainConfig(data)
}

// ParseMainConfig parses, defaults and validates configuration bytes.
func ParseMainConfig(data []byte) (*MainConfig, error) {
	var config MainConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	applyMainConfigDefaults(&config)

	if err := validateMainConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputDir == "" {
		config.InputDir = "./input"
	}
	if config.OutputDir == "" {
		config.OutputDir = "./output"
	}
	if config.InputArchiveDir == "" {
		config.InputArchiveDir = "./input_archive"
	}
	if config.OutputArchiveDir == "" {
		config.OutputArchiveDir = "./output_archive"
	}
	if config.TemplatesDir == "" {
		config.TemplatesDir = "./templates"
	}
	if config.SchemaTemplate == "" {
		config.SchemaTemplate = "destination.xlsx"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.UUIDFormat == "" {
		config.UUIDFormat = "{original}_{timestamp}.zip"
	}
	if config.DocumentsDir == "" {
		config.DocumentsDir = "documents"
	}
	if config.MaxConcurrency == 0 {
		config.MaxConcurrency = 4
	}

	// CSV settings defaults.
	if config.CSVSettings.Delimiter == "" {
		config.CSVSettings.Delimiter = ","
	}
	if config.CSVSettings.Encoding == "" {
		config.CSVSettings.Encoding = "UTF-8"
	}

	// Server defaults.
	if config.Server.ListenAddr == "" {
		config.Server.ListenAddr = ":8080"
	}
	if config.Server.MaxUploadMB == 0 {
		config.Server.MaxUploadMB = 64
	}
	if config.Server.ResultTTL == 0 {
		config.Server.ResultTTL = 15 * time.Minute
	}
}

// validateMainConfig rejects values the pipeline cannot work with.
func validateMainConfig(config *MainConfig) error {
	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown log_level %q", config.LogLevel)
	}

	if config.MaxConcurrency < 1 {
		return fmt.Errorf("max_concurrency must be at least 1, got %d", config.MaxConcurrency)
	}

	if !IsSupportedEncoding(config.CSVSettings.Encoding) {
		return fmt.Errorf("unsupported csv_settings.encoding %q", config.CSVSettings.Encoding)
	}

	// Excel limits sheet names to 31 characters.
	if len([]rune(config.SheetName)) > 31 {
		return fmt.Errorf("sheet_name %q is longer than 31 characters", config.SheetName)
	}

	if strings.ContainsAny(config.DocumentsDir, `\:*?"<>|`) {
		return fmt.Errorf("documents_dir %q contains characters not allowed in archive paths", config.DocumentsDir)
	}

	if config.Server.MaxUploadMB < 0 {
		return fmt.Errorf("server.max_upload_mb must be positive")
	}

	return nil
}

// IsSupportedEncoding reports whether the CSV parser can decode name.
func IsSupportedEncoding(name string) bool {
	switch NormalizeEncoding(name) {
	case "utf-8", "iso-8859-1", "windows-1252":
		return true
	}
	return false
}

// NormalizeEncoding maps encoding aliases onto a canonical lowercase name.
func NormalizeEncoding(name string) string {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "utf-8", "utf8":
		return "utf-8"
	case "iso-8859-1", "iso8859-1", "latin1", "latin-1":
		return "iso-8859-1"
	case "windows-1252", "cp1252", "win1252":
		return "windows-1252"
	default:
		return strings.ToLower(strings.TrimSpace(name))
	}
}
