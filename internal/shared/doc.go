// Package shared holds helpers used across packages that belong to no single
// layer. Its testutil subpackage provides the sample tables, data-file
// writer, frozen clock and captured slog handler used by the tests.
package shared
