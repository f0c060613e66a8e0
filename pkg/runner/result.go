package runner

import "github.com/yaklabco/docmodel/pkg/model"

// FileOutcome is the check result for one file.
type FileOutcome struct {
	// Path is the absolute file path.
	Path string

	// Node is the checked document. Nil when Err is set.
	Node *model.Node

	// Err is set if the file could not be read, parsed or checked.
	Err error
}

// Valid reports whether the file holds a valid document.
func (o FileOutcome) Valid() bool {
	return o.Err == nil && o.Node != nil
}

// Stats captures aggregate information about a run.
type Stats struct {
	FilesDiscovered int
	FilesValid      int
	FilesFailed     int
}

// Result is the overall runner result.
type Result struct {
	// Files are ordered like the input paths.
	Files []FileOutcome

	Stats Stats
}

// HasFailures reports whether any file failed.
func (r *Result) HasFailures() bool {
	if r == nil {
		return false
	}
	return r.Stats.FilesFailed > 0
}

// FirstError returns the error of the first failed file in order, or nil.
func (r *Result) FirstError() error {
	if r == nil {
		return nil
	}
	for _, outcome := range r.Files {
		if outcome.Err != nil {
			return outcome.Err
		}
	}
	return nil
}

// Add records an outcome checked outside Run, such as standard input.
func (r *Result) Add(outcome FileOutcome) {
	r.Stats.FilesDiscovered++
	r.accumulate(outcome)
}

func (r *Result) accumulate(outcome FileOutcome) {
	r.Files = append(r.Files, outcome)
	if outcome.Valid() {
		r.Stats.FilesValid++
		return
	}
	r.Stats.FilesFailed++
}
