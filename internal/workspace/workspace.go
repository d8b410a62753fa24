// Package workspace holds the destination set of named text resources.
//
// Two implementations are provided: Memory, used by tests and one-off runs,
// and Store, a SQLite database that persists resources and scan history
// between invocations.
package workspace

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/harrison/textguard/internal/models"
)

var (
	// ErrNotFound is returned when no resource has the requested name
	ErrNotFound = errors.New("text resource not found")

	// ErrExists is returned when a rename target is already taken
	ErrExists = errors.New("text resource already exists")
)

// Workspace is the name-to-resource mapping that extraction writes into.
// Names are unique. Implementations are not required to be safe for
// concurrent mutation; a batch run owns the workspace for its duration.
type Workspace interface {
	// Names lists resource names in creation order.
	Names() ([]string, error)

	// Get returns the resource with the given name or ErrNotFound.
	Get(name string) (*models.TextResource, error)

	// Add stores res and returns the name it was stored under. When
	// res.Name is taken, a numeric suffix is appended ("Text.001").
	Add(res models.TextResource) (string, error)

	// Rename changes a resource's name. Returns ErrNotFound when oldName
	// is absent and ErrExists when newName is taken.
	Rename(oldName, newName string) error

	// Remove deletes the named resource. Returns ErrNotFound when absent.
	Remove(name string) error
}

// NameSet returns the workspace names as a set.
func NameSet(ws Workspace) (map[string]bool, error) {
	names, err := ws.Names()
	if err != nil {
		return nil, err
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set, nil
}

// Replace stores res under exactly res.Name, removing any resource that
// already has that name.
func Replace(ws Workspace, res models.TextResource) error {
	if err := res.Validate(); err != nil {
		return err
	}
	if err := ws.Remove(res.Name); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("remove %q: %w", res.Name, err)
	}
	name, err := ws.Add(res)
	if err != nil {
		return err
	}
	if name != res.Name {
		return fmt.Errorf("stored %q as %q", res.Name, name)
	}
	return nil
}

// UniqueName returns name if it is free, otherwise the first free
// "<base>.NNN" variant. An existing numeric suffix on name is replaced
// rather than extended ("Text.001" -> "Text.002").
func UniqueName(name string, taken func(string) bool) string {
	if !taken(name) {
		return name
	}

	base := name
	if i := strings.LastIndexByte(name, '.'); i > 0 {
		if suffix := name[i+1:]; len(suffix) == 3 {
			if _, err := strconv.Atoi(suffix); err == nil {
				base = name[:i]
			}
		}
	}

	for n := 1; ; n++ {
		candidate := fmt.Sprintf("%s.%03d", base, n)
		if !taken(candidate) {
			return candidate
		}
	}
}
