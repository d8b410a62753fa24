// Package display provides terminal output for scan runs: the advisory notice
// raised when a run finds problems, progress framing around a batch, and a
// warning for Blender backup files that are left out of a scan.
//
// # Advisory
//
//	if w := display.Advisory(len(result.Skipped) > 0, len(result.Flagged) > 0, report.ReportName); w != nil {
//	    w.Display(os.Stderr)
//	}
//
// # Progress
//
//	progress := display.NewProgressIndicator(os.Stdout, len(paths))
//	progress.Start(folder)
//	// ... run the batch ...
//	progress.Complete(result)
//
// Colour is applied through github.com/fatih/color and only when the writer
// is a terminal. All functions take an io.Writer so output can be captured in
// tests.
package display
