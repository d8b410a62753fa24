package display

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Warning represents a user-facing warning message
type Warning struct {
	Title      string   // Main warning title
	Lines      []string // Body lines, printed in order (optional)
	Files      []string // Related files (optional)
	Suggestion string   // Action to take (optional)
}

// Display shows a formatted warning in yellow
func (w Warning) Display(out io.Writer) {
	var b strings.Builder

	b.WriteString("⚠️  ")
	b.WriteString(w.Title)
	b.WriteString("\n")

	for _, line := range w.Lines {
		b.WriteString("    ")
		b.WriteString(line)
		b.WriteString("\n")
	}

	if len(w.Files) > 0 {
		b.WriteString("    ")
		if len(w.Files) == 1 {
			b.WriteString("Affected file:\n")
		} else {
			b.WriteString("Affected files:\n")
		}
		for i, file := range w.Files {
			b.WriteString(fmt.Sprintf("      %d. %s\n", i+1, file))
		}
	}

	if w.Suggestion != "" {
		b.WriteString("    Suggestion:\n")
		b.WriteString("    ")
		b.WriteString(w.Suggestion)
		b.WriteString("\n")
	}

	paint(out, color.FgYellow).Fprint(out, b.String())
}

// Advisory builds the notice shown after a run that skipped files or flagged
// text blocks. Returns nil for a clean run.
func Advisory(skipped, flagged bool, reportName string) *Warning {
	if !skipped && !flagged {
		return nil
	}

	w := &Warning{Title: "BlendTextGuard Scan Report"}
	if skipped {
		w.Lines = append(w.Lines, "⚠ Skipped one or more .blend files.")
	}
	if flagged {
		w.Lines = append(w.Lines, "⚠ Flagged text blocks detected.")
	}
	w.Lines = append(w.Lines, fmt.Sprintf("See '%s' for details.", reportName))
	return w
}
