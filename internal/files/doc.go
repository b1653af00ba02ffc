// Package files names and writes generated documents.
//
// SafeFilename derives the document file name from a case identifier and
// patient name. Manager writes and copies files, creating parent
// directories as needed and overwriting existing files:
//
//	m := files.NewManager(logger)
//	name := files.SafeFilename("2001", "Test Patient") // 2001_Test_Patient.pdf
//	err := m.WriteFile(filepath.Join(dir, name), pdf)
package files
