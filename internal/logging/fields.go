// Package logging provides a structured logging wrapper around charmbracelet/log.
package logging

// Field name constants for structured logging.
// Using constants prevents typos and enables IDE autocomplete.
const (
	// Common fields.
	FieldError  = "error"
	FieldPath   = "path"
	FieldInput  = "input"
	FieldOutput = "output"

	// Configuration fields.
	FieldConfig    = "config"
	FieldSchema    = "schema"
	FieldCacheSize = "cache_size"
	FieldDocPath   = "doc_path"

	// Document fields.
	FieldPos      = "pos"
	FieldFrom     = "from"
	FieldTo       = "to"
	FieldDepth    = "depth"
	FieldNodeType = "node_type"
	FieldSize     = "size"
	FieldReason   = "reason"
	FieldWarning  = "warning"
	FieldLanguage = "language"

	// Version fields.
	FieldVersion = "version"
	FieldCommit  = "commit"
	FieldBuilt   = "built"
)
