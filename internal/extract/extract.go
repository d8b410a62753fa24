// Package extract copies the text datablocks of one container file into the
// workspace, renames them after their container and scans them for keywords.
package extract

import (
	"errors"
	"fmt"

	"github.com/harrison/textguard/internal/blend"
	"github.com/harrison/textguard/internal/logger"
	"github.com/harrison/textguard/internal/models"
	"github.com/harrison/textguard/internal/scan"
	"github.com/harrison/textguard/internal/workspace"
)

// Loader reads only the text datablocks of a container file. Implementations
// must not decode, instantiate or evaluate any other datablock kind.
type Loader interface {
	LoadTexts(path string) ([]blend.Text, error)
}

// LoadError reports a container that could not be opened or decoded.
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return e.Err.Error()
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// IsLoadError reports whether err came from loading a container.
func IsLoadError(err error) bool {
	var le *LoadError
	return errors.As(err, &le)
}

// Extractor appends container texts to a workspace.
type Extractor struct {
	loader Loader
	ws     workspace.Workspace
	logger logger.Logger
}

// New creates an Extractor. A nil logger discards messages.
func New(loader Loader, ws workspace.Workspace, log logger.Logger) *Extractor {
	if log == nil {
		log = logger.Nop{}
	}
	return &Extractor{loader: loader, ws: ws, logger: log}
}

// Extract loads the texts of the container at path into the workspace and
// renames each new one to "<containerBaseName>_<originalName>", replacing a
// stale resource of that name left by an earlier run.
//
// Names listed in existing are never touched: they were present before the
// batch reached this container. Each renamed resource is matched against
// keywords and matches are appended to flagged.
//
// Returns the number of renamed resources and the first of them. Load
// failures are returned as *LoadError.
func (e *Extractor) Extract(path string, existing map[string]bool, keywords []string, flagged *[]models.FlaggedMatch) (int, *models.TextResource, error) {
	base := models.ContainerBaseName(path)

	before, err := workspace.NameSet(e.ws)
	if err != nil {
		return 0, nil, fmt.Errorf("snapshot workspace: %w", err)
	}

	texts, err := e.loader.LoadTexts(path)
	if err != nil {
		return 0, nil, &LoadError{Path: path, Err: err}
	}
	if len(texts) == 0 {
		return 0, nil, nil
	}

	added := make([]string, 0, len(texts))
	for _, t := range texts {
		name, err := e.ws.Add(models.TextResource{Name: t.Name, Content: t.Content, Source: path})
		if err != nil {
			e.discard(base, added)
			return 0, nil, fmt.Errorf("append text %q: %w", t.Name, err)
		}
		added = append(added, name)
	}

	after, err := workspace.NameSet(e.ws)
	if err != nil {
		e.discard(base, added)
		return 0, nil, fmt.Errorf("snapshot workspace: %w", err)
	}

	// after - before, in container order
	var newNames []string
	for _, name := range added {
		if after[name] && !before[name] {
			newNames = append(newNames, name)
		}
	}

	// Raw names still waiting for their rename. On failure they are removed so
	// a rerun never sees them as collisions.
	var pending []string
	for _, name := range newNames {
		if !existing[name] {
			pending = append(pending, name)
		}
	}

	count := 0
	var first *models.TextResource
	for _, original := range newNames {
		if existing[original] {
			e.logger.LogDebug(fmt.Sprintf("%s: %q already present before this run, leaving it alone", base, original))
			continue
		}

		res, err := e.ws.Get(original)
		if errors.Is(err, workspace.ErrNotFound) {
			pending = pending[1:]
			continue
		}
		if err != nil {
			e.discard(base, pending)
			return count, first, err
		}

		newName := models.PrefixedName(base, original)
		if err := e.ws.Remove(newName); err == nil {
			e.logger.LogDebug(fmt.Sprintf("Replaced stale %q", newName))
		} else if !errors.Is(err, workspace.ErrNotFound) {
			e.discard(base, pending)
			return count, first, fmt.Errorf("remove stale %q: %w", newName, err)
		}

		if err := e.ws.Rename(original, newName); err != nil {
			e.discard(base, pending)
			return count, first, fmt.Errorf("rename %q to %q: %w", original, newName, err)
		}
		pending = pending[1:]
		res.Name = newName
		count++
		e.logger.LogTrace(fmt.Sprintf("Renamed %q to %q", original, newName))

		if matched := scan.Match(res.Content, keywords); len(matched) > 0 {
			*flagged = append(*flagged, models.FlaggedMatch{Container: base, Resource: original, Keywords: matched})
		}

		if first == nil {
			first = res
		}
	}

	return count, first, nil
}

// discard removes resources appended from a container whose extraction failed
// before they could be renamed.
func (e *Extractor) discard(base string, names []string) {
	for _, name := range names {
		if err := e.ws.Remove(name); err != nil && !errors.Is(err, workspace.ErrNotFound) {
			e.logger.LogWarn(fmt.Sprintf("%s: could not remove %q after failed extraction: %v", base, name, err))
		}
	}
}
