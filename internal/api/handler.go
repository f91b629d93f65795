// =============================================================================
// Payhawk Bundle Converter - HTTP API
// =============================================================================
//
// ROUTES:
//   GET  /api/health        liveness and version
//   POST /api/convert       multipart: "archive" (zip, required),
//                           "schema" (xlsx, optional if a default template
//                           is configured)
//   GET  /api/results/:id   download the converted archive
//
// Every conversion runs independently. Its output archive is kept in a
// ResultCache under a fresh ID until it expires; the converter itself keeps
// nothing between requests.
//
// =============================================================================

package api

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/ginjaninja78/payhawk-bundle-converter/internal/converter"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/docs"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/logging"
	"github.com/ginjaninja78/payhawk-bundle-converter/internal/validation"
	"github.com/ginjaninja78/payhawk-bundle-converter/pkg/utils"
)

// previewRows is how many destination rows a convert reply carries.
const previewRows = 10

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// ConvertResponse is the JSON reply of POST /api/convert.
type ConvertResponse struct {
	Success    bool        `json:"success"`
	Error      string      `json:"error,omitempty"`
	ErrorType  string      `json:"errorType,omitempty"`
	Problems   []string    `json:"problems,omitempty"`
	ID         string      `json:"id,omitempty"`
	Download   string      `json:"download,omitempty"`
	ExpiresAt  string      `json:"expiresAt,omitempty"`
	SourceFile string      `json:"sourceFile,omitempty"`
	Rows       int         `json:"rows"`
	Warnings   []string    `json:"warnings"`
	CellErrors []string    `json:"cellErrors"`
	Documents  []docs.Info `json:"documents"`
	Preview    *Preview    `json:"preview,omitempty"`
}

// Preview is the head of the destination table.
type Preview struct {
	Columns []string   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// =============================================================================
// SERVER
// =============================================================================

// Server holds the HTTP handlers.
type Server struct {
	converter *converter.Converter
	template  *converter.Template
	cache     *ResultCache
	logger    logging.Logger
	version   string
}

// NewServer creates a Server. template may be nil, in which case every
// convert request must upload a schema.
func NewServer(conv *converter.Converter, template *converter.Template, cache *ResultCache, logger logging.Logger, version string) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Server{
		converter: conv,
		template:  template,
		cache:     cache,
		logger:    logger,
		version:   version,
	}
}

// App builds a fiber app with every route registered.
func (s *Server) App(maxUploadMB int) *fiber.App {
	cfg := fiber.Config{AppName: "payhawk-bundle-converter"}
	if maxUploadMB > 0 {
		cfg.BodyLimit = maxUploadMB << 20
	}

	app := fiber.New(cfg)
	s.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (s *Server) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", s.handleHealth)
	app.Post("/api/convert", s.handleConvert)
	app.Get("/api/results/:id", s.handleResult)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": s.version,
	})
}

func (s *Server) handleConvert(c *fiber.Ctx) error {
	archiveHeader, err := c.FormFile("archive")
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, "No archive uploaded. Use form field 'archive'.")
	}

	archiveData, err := readUpload(archiveHeader)
	if err != nil {
		return writeError(c, fiber.StatusBadRequest, err.Error())
	}

	template := s.template
	if schemaHeader, err := c.FormFile("schema"); err == nil {
		data, err := readUpload(schemaHeader)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, err.Error())
		}
		template = &converter.Template{Name: schemaHeader.Filename, Data: data}
	}
	if template == nil {
		return writeError(c, fiber.StatusBadRequest, "No schema uploaded and no default schema configured. Use form field 'schema'.")
	}

	result, err := s.converter.Run(converter.Request{
		Name:       archiveHeader.Filename,
		Archive:    archiveData,
		Schema:     template.Data,
		SchemaName: template.Name,
	})
	if err != nil {
		return writeRunError(c, err)
	}

	id := uuid.NewString()
	fileName := utils.BaseName(archiveHeader.Filename) + "_converted.zip"
	expires := s.cache.Put(id, fileName, result.Output)

	s.logger.Info("Stored result %s for %s (%d rows)", id, archiveHeader.Filename, result.Stats.Rows)

	resp := ConvertResponse{
		Success:    true,
		ID:         id,
		Download:   "/api/results/" + id,
		ExpiresAt:  expires.UTC().Format("2006-01-02T15:04:05Z"),
		SourceFile: result.SourceFile,
		Rows:       result.Stats.Rows,
		Warnings:   make([]string, 0, len(result.Warnings)),
		CellErrors: make([]string, 0, len(result.CellErrors)),
		Documents:  result.DocumentInfo,
		Preview:    &Preview{Columns: result.Table.Columns, Rows: [][]string{}},
	}
	for _, w := range result.Warnings {
		resp.Warnings = append(resp.Warnings, w.Message)
	}
	for _, ce := range result.CellErrors {
		resp.CellErrors = append(resp.CellErrors, ce.Error())
	}
	for r := 0; r < result.Table.RowCount() && r < previewRows; r++ {
		resp.Preview.Rows = append(resp.Preview.Rows, result.Table.Row(r))
	}

	return c.JSON(resp)
}

func (s *Server) handleResult(c *fiber.Ctx) error {
	entry, ok := s.cache.Get(c.Params("id"))
	if !ok {
		return writeError(c, fiber.StatusNotFound, "Result not found or expired.")
	}

	c.Set(fiber.HeaderContentType, "application/zip")
	c.Attachment(entry.FileName)
	return c.Send(entry.Data)
}

// =============================================================================
// HELPERS
// =============================================================================

func readUpload(header *multipart.FileHeader) ([]byte, error) {
	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload %s: %w", header.Filename, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read upload %s: %w", header.Filename, err)
	}
	return data, nil
}

func writeRunError(c *fiber.Ctx, err error) error {
	resp := ConvertResponse{
		Error:      err.Error(),
		ErrorType:  converter.ErrorType(err),
		Warnings:   []string{},
		CellErrors: []string{},
		Documents:  []docs.Info{},
	}

	var failure *validation.Failure
	if errors.As(err, &failure) {
		resp.Problems = failure.Problems
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.Status(fiber.StatusBadRequest).JSON(resp)
}

func writeError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(ConvertResponse{
		Error:      message,
		Warnings:   []string{},
		CellErrors: []string{},
		Documents:  []docs.Info{},
	})
}
