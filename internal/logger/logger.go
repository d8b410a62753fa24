// Package logger provides logging implementations for textguard runs.
//
// Loggers report per-container progress (start, appended count, load
// failure) and a final run summary, and filter free-form messages by level.
// Implementations are safe for concurrent use and write to a console writer
// or a per-run log file.
package logger

import (
	"strings"
	"time"

	"github.com/harrison/textguard/internal/models"
)

// Logger receives progress events from a batch run.
type Logger interface {
	LogTrace(message string)
	LogDebug(message string)
	LogInfo(message string)
	LogWarn(message string)
	LogError(message string)

	// LogContainerStart is called before a container is loaded (index is 1-based).
	LogContainerStart(path string, index, total int)
	// LogContainerDone is called after a container was processed.
	LogContainerDone(path string, appended int)
	// LogContainerSkipped is called when a container failed to load.
	LogContainerSkipped(path string, err error)
	// LogRunSummary is called once after the last container.
	LogRunSummary(result models.RunResult)
}

// Log level constants for filtering
const (
	levelTrace int = 0
	levelDebug int = 1
	levelInfo  int = 2
	levelWarn  int = 3
	levelError int = 4
)

// normalizeLogLevel converts a log level string to lowercase and validates it.
// Returns "info" as default for empty or invalid levels.
func normalizeLogLevel(level string) string {
	normalized := strings.ToLower(strings.TrimSpace(level))
	switch normalized {
	case "trace", "debug", "info", "warn", "error":
		return normalized
	}
	return "info"
}

// logLevelToInt converts a log level string to its numeric value.
func logLevelToInt(level string) int {
	switch level {
	case "trace":
		return levelTrace
	case "debug":
		return levelDebug
	case "info":
		return levelInfo
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// enabled reports whether messageLevel passes the configured level.
func enabled(configured, messageLevel string) bool {
	return logLevelToInt(strings.ToLower(messageLevel)) >= logLevelToInt(configured)
}

func timestamp() string {
	return time.Now().Format("15:04:05")
}

func plural(n int, singular, many string) string {
	if n == 1 {
		return singular
	}
	return many
}

// Multi fans every event out to several loggers.
type Multi []Logger

func (m Multi) LogTrace(message string) {
	for _, l := range m {
		l.LogTrace(message)
	}
}

func (m Multi) LogDebug(message string) {
	for _, l := range m {
		l.LogDebug(message)
	}
}

func (m Multi) LogInfo(message string) {
	for _, l := range m {
		l.LogInfo(message)
	}
}

func (m Multi) LogWarn(message string) {
	for _, l := range m {
		l.LogWarn(message)
	}
}

func (m Multi) LogError(message string) {
	for _, l := range m {
		l.LogError(message)
	}
}

func (m Multi) LogContainerStart(path string, index, total int) {
	for _, l := range m {
		l.LogContainerStart(path, index, total)
	}
}

func (m Multi) LogContainerDone(path string, appended int) {
	for _, l := range m {
		l.LogContainerDone(path, appended)
	}
}

func (m Multi) LogContainerSkipped(path string, err error) {
	for _, l := range m {
		l.LogContainerSkipped(path, err)
	}
}

func (m Multi) LogRunSummary(result models.RunResult) {
	for _, l := range m {
		l.LogRunSummary(result)
	}
}

// Nop discards everything.
type Nop struct{}

func (Nop) LogTrace(string) {}
func (Nop) LogDebug(string) {}
func (Nop) LogInfo(string) {}
func (Nop) LogWarn(string) {}
func (Nop) LogError(string) {}
func (Nop) LogContainerStart(string, int, int) {}
func (Nop) LogContainerDone(string, int) {}
func (Nop) LogContainerSkipped(string, error) {}
func (Nop) LogRunSummary(models.RunResult) {}
