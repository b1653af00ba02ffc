// Package http implements the HTTP handlers of the record browser. Handlers
// are thin: they read URL parameters, call a service and map service errors
// onto RFC 7807 problem responses through errors.ErrorHandler.
//
// Routes:
//
//	GET  /api/health                  liveness and record count
//	GET  /api/records?q=              list or search record summaries
//	GET  /api/records/{biopsyNo}      normalized record and text preview
//	GET  /api/records/{biopsyNo}/pdf  validated single-record PDF
//	POST /api/records/reload          rebuild the store from the data file
//	GET  /reports/statistics          statistics dashboard
//	GET  /metrics                     Prometheus exposition
package http
