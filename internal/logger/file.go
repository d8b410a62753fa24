package logger

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/harrison/textguard/internal/models"
)

// FileLogger writes a timestamped log file per run and keeps a latest.log
// symlink pointing at the most recent one.
type FileLogger struct {
	logDir   string
	runLog   *os.File
	runFile  string
	logLevel string
	mu       sync.Mutex
}

// NewFileLogger creates the log directory if needed, opens
// run-YYYYMMDD-HHMMSS.log in it and repoints latest.log.
func NewFileLogger(logDir string, logLevel string) (*FileLogger, error) {
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	timestamp := time.Now().Format("20060102-150405")
	runFile := filepath.Join(logDir, fmt.Sprintf("run-%s.log", timestamp))

	file, err := os.OpenFile(runFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create run log file: %w", err)
	}

	symlinkPath := filepath.Join(logDir, "latest.log")
	if _, err := os.Lstat(symlinkPath); err == nil {
		if err := os.Remove(symlinkPath); err != nil {
			file.Close()
			return nil, fmt.Errorf("failed to remove old symlink: %w", err)
		}
	}
	if err := os.Symlink(filepath.Base(runFile), symlinkPath); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to create symlink: %w", err)
	}

	fl := &FileLogger{
		logDir:   logDir,
		runLog:   file,
		runFile:  runFile,
		logLevel: normalizeLogLevel(logLevel),
	}

	fl.writeRunLog("=== textguard Run Log ===\n")
	fl.writeRunLog(fmt.Sprintf("Started at: %s\n\n", time.Now().Format(time.RFC3339)))

	return fl, nil
}

// Path returns the path of the current run log.
func (fl *FileLogger) Path() string {
	return fl.runFile
}

// LogTrace logs a trace-level message (most verbose).
func (fl *FileLogger) LogTrace(message string) {
	fl.logWithLevel("TRACE", message)
}

// LogDebug logs a debug-level message.
func (fl *FileLogger) LogDebug(message string) {
	fl.logWithLevel("DEBUG", message)
}

// LogInfo logs an info-level message.
func (fl *FileLogger) LogInfo(message string) {
	fl.logWithLevel("INFO", message)
}

// LogWarn logs a warning-level message.
func (fl *FileLogger) LogWarn(message string) {
	fl.logWithLevel("WARN", message)
}

// LogError logs an error-level message.
func (fl *FileLogger) LogError(message string) {
	fl.logWithLevel("ERROR", message)
}

// LogContainerStart records the container path at INFO level.
func (fl *FileLogger) LogContainerStart(path string, index, total int) {
	fl.logWithLevel("INFO", fmt.Sprintf("[%d/%d] Loading %s", index, total, path))
}

// LogContainerDone records how many text blocks a container contributed.
func (fl *FileLogger) LogContainerDone(path string, appended int) {
	fl.logWithLevel("INFO", fmt.Sprintf("%s: appended %d text %s", filepath.Base(path), appended, plural(appended, "block", "blocks")))
}

// LogContainerSkipped records a load failure with the full path.
func (fl *FileLogger) LogContainerSkipped(path string, err error) {
	fl.logWithLevel("ERROR", fmt.Sprintf("Error loading '%s': %v", path, err))
}

// LogRunSummary writes the run totals followed by every flagged match and skipped file.
func (fl *FileLogger) LogRunSummary(result models.RunResult) {
	if !enabled(fl.logLevel, "info") {
		return
	}

	var b strings.Builder
	b.WriteString("\n=== Run Summary ===\n")
	fmt.Fprintf(&b, "Appended: %d\n", result.TotalCount)
	fmt.Fprintf(&b, "Processed files: %d\n", result.ProcessedFiles)
	fmt.Fprintf(&b, "Flagged: %d\n", len(result.Flagged))
	for _, f := range result.Flagged {
		fmt.Fprintf(&b, "  - %s / %s: %s\n", f.Container, f.Resource, strings.Join(f.Keywords, ", "))
	}
	fmt.Fprintf(&b, "Skipped: %d\n", len(result.Skipped))
	for _, s := range result.Skipped {
		fmt.Fprintf(&b, "  - %s: %s\n", s.FileName, s.Error)
	}
	fl.writeRunLog(b.String())
}

// Close flushes and closes the run log.
func (fl *FileLogger) Close() error {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return nil
	}
	fmt.Fprintf(fl.runLog, "\nFinished at: %s\n", time.Now().Format(time.RFC3339))
	err := fl.runLog.Close()
	fl.runLog = nil
	return err
}

func (fl *FileLogger) logWithLevel(level string, message string) {
	if !enabled(fl.logLevel, level) {
		return
	}
	fl.writeRunLog(fmt.Sprintf("[%s] [%s] %s\n", timestamp(), level, message))
}

func (fl *FileLogger) writeRunLog(message string) {
	fl.mu.Lock()
	defer fl.mu.Unlock()

	if fl.runLog == nil {
		return
	}
	fl.runLog.WriteString(message)
}
