package models

import (
	"errors"
	"path/filepath"
	"strings"
)

// TextResource is a named text buffer living in the destination workspace
type TextResource struct {
	Name    string // Unique name within the workspace
	Content string // Full text content
	Source  string // Container file the resource was loaded from (empty for generated resources)
}

// Validate checks if the resource has all required fields
func (r *TextResource) Validate() error {
	if r.Name == "" {
		return errors.New("text resource name is required")
	}
	return nil
}

// ContainerBaseName returns the base name of a container path without its extension.
// "/tmp/assets/demo.blend" -> "demo"
//
// Leading dots are part of the name, so ".blend" and "..blend" are returned
// unchanged.
func ContainerBaseName(path string) string {
	base := filepath.Base(path)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if strings.Trim(stem, ".") == "" {
		return base
	}
	return stem
}

// PrefixedName returns the collision-safe workspace name for a resource
// loaded from the given container: "<containerBaseName>_<originalName>".
func PrefixedName(containerBaseName, originalName string) string {
	return containerBaseName + "_" + originalName
}
