// Package report renders the scan report and the post-run status line.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/harrison/textguard/internal/display"
	"github.com/harrison/textguard/internal/models"
	"github.com/harrison/textguard/internal/workspace"
)

// ReportName is the reserved workspace name of the scan report.
const ReportName = "BlendTextGuard_FlagReport"

const (
	title      = "BlendTextGuard Security Scan Report"
	footerText = "Check out other add-ons from OffTheClockStudios:"
	footerURL  = "https://superhivemarket.com/creators/offtheclockstudiosstore"
	ruleWidth  = 35
)

// Render produces the report text. Output depends only on the arguments.
func Render(flagged []models.FlaggedMatch, keywords []string, skipped []models.SkippedFile) string {
	var b strings.Builder

	b.WriteString(title + "\n")
	b.WriteString(strings.Repeat("=", ruleWidth) + "\n\n")

	if len(skipped) > 0 {
		b.WriteString("Skipped .blend files (could not load):\n")
		for _, s := range skipped {
			fmt.Fprintf(&b, "  • %s  ⇒  %s\n", s.FileName, s.Error)
		}
		b.WriteString("\n" + strings.Repeat("-", ruleWidth) + "\n\n")
	}

	fmt.Fprintf(&b, "Keywords scanned (case-insensitive match): %s\n\n", strings.Join(keywords, ", "))
	if len(flagged) > 0 {
		for _, f := range flagged {
			fmt.Fprintf(&b, ">> Blend File: %s\n", f.Container)
			fmt.Fprintf(&b, "   Block: %s\n", f.Resource)
			fmt.Fprintf(&b, "   Matched: %s\n\n", strings.Join(f.Keywords, ", "))
		}
	} else {
		b.WriteString("No flagged text blocks found.\n\n")
	}

	b.WriteString(strings.Repeat("-", ruleWidth) + "\n")
	b.WriteString(footerText + "\n")
	b.WriteString(footerURL + "\n")

	return b.String()
}

// Publisher stores the report in the workspace and shows it.
type Publisher struct {
	ws     workspace.Workspace
	viewer io.Writer // receives the report text
	notice io.Writer // receives the advisory notice
}

// NewPublisher creates a Publisher. Nil writers discard output.
func NewPublisher(ws workspace.Workspace, viewer, notice io.Writer) *Publisher {
	if viewer == nil {
		viewer = io.Discard
	}
	if notice == nil {
		notice = io.Discard
	}
	return &Publisher{ws: ws, viewer: viewer, notice: notice}
}

// Publish writes the report for runs that flagged or skipped anything and
// reports whether it did. The reserved report resource is replaced, never
// suffixed.
func (p *Publisher) Publish(result models.RunResult, keywords []string) (bool, error) {
	if !result.HasIssues() {
		return false, nil
	}

	text := Render(result.Flagged, keywords, result.Skipped)
	if err := workspace.Replace(p.ws, models.TextResource{Name: ReportName, Content: text}); err != nil {
		return false, fmt.Errorf("store report: %w", err)
	}

	fmt.Fprint(p.viewer, text)
	if w := display.Advisory(len(result.Skipped) > 0, len(result.Flagged) > 0, ReportName); w != nil {
		w.Display(p.notice)
	}
	return true, nil
}

// Summary is the one-line status reported after a run over fileCount files.
func Summary(result models.RunResult, fileCount int) string {
	if result.TotalCount == 0 && len(result.Skipped) == 0 {
		return fmt.Sprintf("No text blocks found in %d file(s).", fileCount)
	}

	var parts []string
	if result.TotalCount > 0 {
		label := "files"
		if result.ProcessedFiles == 1 {
			label = "file"
		}
		parts = append(parts, fmt.Sprintf("Appended %d text block(s) from %d %s.", result.TotalCount, result.ProcessedFiles, label))
	}
	if len(result.Skipped) > 0 {
		parts = append(parts, fmt.Sprintf("Skipped %d .blend file(s).", len(result.Skipped)))
	}
	return strings.Join(parts, "  ")
}
