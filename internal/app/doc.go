// Package app assembles the runtime shared by the command line tools and the
// record browser HTTP server.
//
// Bootstrap loads configuration (defaults, then YAML, then BIOPSY_*
// environment variables), initializes the JSON logger and OpenTelemetry, and
// creates the report instruments. Commands build their renderer and record
// service from the returned Runtime.
//
// NewApplication mounts the HTTP surface:
//
//	GET  /api/health
//	GET  /api/health/live
//	GET  /api/version
//	GET  /api/records?q=
//	POST /api/records/reload
//	GET  /api/records/{biopsyNo}
//	GET  /api/records/{biopsyNo}/pdf
//	POST /api/exports
//	GET  /api/exports?status=&limit=
//	GET  /api/exports/{jobID}
//	DELETE /api/exports/{jobID}
//	GET  /reports/statistics
//	GET  /metrics
//
// Exports run on the background job queue and write into the configured
// output folders. Run serves until its context is canceled, drains in-flight
// requests and then stops the export workers. The package never calls os.Exit.
package app
