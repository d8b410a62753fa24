package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/harrison/textguard/internal/models"
)

// ConsoleLogger logs run progress to a writer with timestamps and thread safety.
// All output is prefixed with [HH:MM:SS] timestamps.
// Color output is automatically enabled for terminal output (os.Stdout/os.Stderr).
type ConsoleLogger struct {
	writer      io.Writer
	logLevel    string
	mutex       sync.Mutex
	colorOutput bool
}

// NewConsoleLogger creates a ConsoleLogger that writes to the provided io.Writer.
// If writer is nil, messages are silently discarded.
// Valid levels: trace, debug, info, warn, error (case-insensitive); anything else means info.
func NewConsoleLogger(writer io.Writer, logLevel string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      writer,
		logLevel:    normalizeLogLevel(logLevel),
		colorOutput: isTerminal(writer),
	}
}

// isTerminal checks if the writer is a terminal that supports colors.
func isTerminal(w io.Writer) bool {
	if w == nil {
		return false
	}
	if w == os.Stdout || w == os.Stderr {
		// fatih/color already honours NO_COLOR and non-TTY output
		return !color.NoColor
	}
	return false
}

// LogTrace logs a trace-level message (most verbose).
func (cl *ConsoleLogger) LogTrace(message string) {
	cl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (cl *ConsoleLogger) LogDebug(message string) {
	cl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (cl *ConsoleLogger) LogInfo(message string) {
	cl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (cl *ConsoleLogger) LogWarn(message string) {
	cl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (cl *ConsoleLogger) LogError(message string) {
	cl.logWithLevel("ERROR", message)
}

// LogContainerStart logs "[i/n] Loading <file>" at INFO level.
func (cl *ConsoleLogger) LogContainerStart(path string, index, total int) {
	name := filepath.Base(path)
	if cl.colorOutput {
		name = color.New(color.Bold).Sprint(name)
	}
	cl.logWithLevel("INFO", fmt.Sprintf("[%d/%d] Loading %s", index, total, name))
}

// LogContainerDone logs the number of text blocks appended from a container at DEBUG level.
func (cl *ConsoleLogger) LogContainerDone(path string, appended int) {
	cl.logWithLevel("DEBUG", fmt.Sprintf("%s: appended %d text %s", filepath.Base(path), appended, plural(appended, "block", "blocks")))
}

// LogContainerSkipped logs a load failure at ERROR level.
func (cl *ConsoleLogger) LogContainerSkipped(path string, err error) {
	cl.logWithLevel("ERROR", fmt.Sprintf("Error loading '%s': %v", path, err))
}

// LogRunSummary logs flagged and skipped counts at INFO level.
func (cl *ConsoleLogger) LogRunSummary(result models.RunResult) {
	flagged := fmt.Sprintf("%d flagged", len(result.Flagged))
	skipped := fmt.Sprintf("%d skipped", len(result.Skipped))
	if cl.colorOutput {
		if len(result.Flagged) > 0 {
			flagged = color.New(color.FgYellow).Sprint(flagged)
		}
		if len(result.Skipped) > 0 {
			skipped = color.New(color.FgRed).Sprint(skipped)
		}
	}
	cl.logWithLevel("INFO", fmt.Sprintf("Run complete: %d appended, %d processed, %s, %s",
		result.TotalCount, result.ProcessedFiles, flagged, skipped))
}

// logWithLevel logs a message at the specified level if filtering allows it.
func (cl *ConsoleLogger) logWithLevel(level string, message string) {
	if cl.writer == nil || !enabled(cl.logLevel, level) {
		return
	}

	cl.mutex.Lock()
	defer cl.mutex.Unlock()

	ts := timestamp()
	var formatted string
	if cl.colorOutput {
		formatted = cl.formatWithColor(ts, level, message)
	} else {
		formatted = fmt.Sprintf("[%s] [%s] %s\n", ts, level, message)
	}

	cl.writer.Write([]byte(formatted))
}

// formatWithColor formats a log message with ANSI color codes.
func (cl *ConsoleLogger) formatWithColor(ts, level, message string) string {
	var coloredLevel string

	switch strings.ToUpper(level) {
	case "TRACE":
		coloredLevel = color.New(color.FgHiBlack).Sprint(level)
	case "DEBUG":
		coloredLevel = color.New(color.FgCyan).Sprint(level)
	case "INFO":
		coloredLevel = color.New(color.FgBlue).Sprint(level)
	case "WARN":
		coloredLevel = color.New(color.FgYellow).Sprint(level)
	case "ERROR":
		coloredLevel = color.New(color.FgRed).Sprint(level)
	default:
		coloredLevel = level
	}

	return fmt.Sprintf("[%s] [%s] %s\n", ts, coloredLevel, message)
}
