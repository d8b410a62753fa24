package display

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/harrison/textguard/internal/fileutil"
)

// IsBackupFile reports whether filename is a Blender backup such as
// "scene.blend1" or "scene.blend12". Matching is case-insensitive.
func IsBackupFile(filename string) bool {
	lower := strings.ToLower(filename)
	i := strings.LastIndex(lower, ".blend")
	if i < 0 {
		return false
	}

	suffix := lower[i+len(".blend"):]
	if suffix == "" {
		return false
	}
	for _, r := range suffix {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// FindBackupFiles returns the basenames of backup files directly inside dirPath.
// Returns an error if the path doesn't exist or is not a directory.
func FindBackupFiles(dirPath string) ([]string, error) {
	result, err := fileutil.ScanDirectory(dirPath, fileutil.ScanOptions{})
	if err != nil {
		return nil, err
	}

	backups := make([]string, 0)
	for _, absPath := range result.Files {
		if name := filepath.Base(absPath); IsBackupFile(name) {
			backups = append(backups, name)
		}
	}
	return backups, nil
}

// WarnBackupFiles creates a warning for backup files a scan leaves out
func WarnBackupFiles(files []string) Warning {
	return Warning{
		Title:      "Backup files are not scanned",
		Files:      files,
		Suggestion: "Rename a backup to .blend to include it in the scan",
	}
}
