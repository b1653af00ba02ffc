// Package services implements the business logic behind the HTTP surface.
// Handlers stay thin: they decode the request, call a service and map the
// returned error onto a problem response.
//
// RecordService owns the loaded record store. The store itself is read-only;
// a reload builds a new store and swaps the pointer under a write lock, so
// readers always see one complete data set.
package services
