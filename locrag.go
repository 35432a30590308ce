// Package locrag provides a local front end for retrieval-augmented
// generation over a hosted file-search store. Documents are uploaded to a
// remote store, questions are answered from the snippets the store retrieves,
// and the identifier of the current store is remembered locally between runs.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., gemini/, sqlite/, fs/).
package locrag
