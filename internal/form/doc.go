// Package form holds the editable state of a single case document before it
// is rendered. Required fields are checked with struct tags.
package form
