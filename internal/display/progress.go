package display

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/harrison/textguard/internal/models"
)

// ProgressIndicator frames a batch run with a header and a completion line.
// Per-file lines come from the logger.
type ProgressIndicator struct {
	writer     io.Writer
	totalFiles int
}

// NewProgressIndicator creates a new progress indicator
func NewProgressIndicator(w io.Writer, total int) *ProgressIndicator {
	return &ProgressIndicator{writer: w, totalFiles: total}
}

// Start displays the header message
func (p *ProgressIndicator) Start(folder string) {
	fmt.Fprintf(p.writer, "Scanning %d %s in %s:\n", p.totalFiles, fileWord(p.totalFiles), folder)
}

// Complete displays a green checkmark, or a yellow cross when files were skipped.
func (p *ProgressIndicator) Complete(result models.RunResult) {
	mark := paint(p.writer, color.FgGreen).Sprint("✓")
	if len(result.Skipped) > 0 {
		mark = paint(p.writer, color.FgYellow).Sprint("✗")
	}
	fmt.Fprintf(p.writer, "%s Scanned %d of %d %s\n", mark, result.ProcessedFiles, p.totalFiles, fileWord(p.totalFiles))
}

func fileWord(n int) string {
	if n == 1 {
		return ".blend file"
	}
	return ".blend files"
}
