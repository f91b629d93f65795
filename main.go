// =============================================================================
// Payhawk Bundle Converter - Main Entry Point
// =============================================================================
//
// USAGE:
//   converter process       - Convert every bundle in the input directory
//   converter validate      - Check one bundle without writing anything
//   converter serve         - Start the HTTP API
//   converter watch         - Convert bundles as they are dropped in
//   converter version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Unpacking, validation, mapping, spreadsheet I/O, API
//   - pkg/           : Shared file utilities
//   - templates/     : Destination schema templates (.xlsx)
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/payhawk-bundle-converter/cmd"
)

func main() {
	cmd.Execute()
}
