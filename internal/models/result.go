package models

// FlaggedMatch records that a freshly extracted resource contains one or more keywords
type FlaggedMatch struct {
	Container string   // Container base name (no extension)
	Resource  string   // Original resource name, before renaming
	Keywords  []string // Matched keywords in configured order
}

// SkippedFile records a container that could not be loaded
type SkippedFile struct {
	FileName string // Container file name (base name with extension)
	Error    string // Stringified load error
}

// RunResult represents the aggregate result of a batch run
type RunResult struct {
	TotalCount     int            // Number of resources appended across all files
	ProcessedFiles int            // Number of containers loaded successfully
	FirstNew       *TextResource  // First resource appended during the run (nil if none)
	Flagged        []FlaggedMatch // Flagged matches in the order they were found
	Skipped        []SkippedFile  // Containers that failed to load
}

// HasIssues returns true if the run flagged any resource or skipped any file
func (r *RunResult) HasIssues() bool {
	return len(r.Flagged) > 0 || len(r.Skipped) > 0
}
