// Package config loads the toolkit configuration for the biopsy report CLIs
// and the local browse server.
//
// # Configuration Sources
//
// Values are layered in the following order, later sources winning:
//
//	1. Built-in defaults (Default)
//	2. A YAML file (config.yaml or configs/config.yaml, or an explicit path)
//	3. Environment variables prefixed BIOPSY_
//
// # Environment Variables
//
// Variable names follow the struct nesting, for example:
//
//	BIOPSY_DATA_FILE=/srv/biopsy/biopsy_data.json
//	BIOPSY_OUTPUT_PDF_DIR=/srv/biopsy/pdf
//	BIOPSY_OUTPUT_GROUP_BY_YEAR=true
//	BIOPSY_SERVER_PORT=8090
//	BIOPSY_LOGGING_LEVEL=debug
//
// # Paths
//
// Relative paths are resolved against the base directory returned by
// GetPaths, which is the executable's directory unless BIOPSY_BASE_DIR is
// set. Command-line flags override whatever Load returns.
package config
