// Package batch runs extraction over a list of container files.
//
// Containers are processed one at a time in input order. A container that
// fails to load is recorded in RunResult.Skipped and the run moves on; one bad
// file never aborts the batch.
package batch

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/harrison/textguard/internal/logger"
	"github.com/harrison/textguard/internal/models"
	"github.com/harrison/textguard/internal/workspace"
)

// Extractor appends one container's texts to the workspace.
type Extractor interface {
	Extract(path string, existing map[string]bool, keywords []string, flagged *[]models.FlaggedMatch) (int, *models.TextResource, error)
}

// Orchestrator drives a batch run and aggregates its result.
type Orchestrator struct {
	extractor Extractor
	ws        workspace.Workspace
	logger    logger.Logger
}

// NewOrchestrator creates a new Orchestrator.
// The logger parameter is optional and can be nil.
func NewOrchestrator(extractor Extractor, ws workspace.Workspace, log logger.Logger) *Orchestrator {
	if extractor == nil {
		panic("extractor cannot be nil")
	}
	if ws == nil {
		panic("workspace cannot be nil")
	}
	if log == nil {
		log = logger.Nop{}
	}

	return &Orchestrator{extractor: extractor, ws: ws, logger: log}
}

// Run extracts every container in paths and returns the aggregate result.
//
// The existing-name snapshot is retaken before each container, so names
// appended by earlier containers in the same run count as pre-existing for
// later ones. Cancellation is honoured between containers; the partial
// result is returned together with ctx.Err(). Callers own signal handling
// and cancel ctx to stop the run.
func (o *Orchestrator) Run(ctx context.Context, paths []string, keywords []string) (models.RunResult, error) {
	result := models.RunResult{
		Flagged: []models.FlaggedMatch{},
		Skipped: []models.SkippedFile{},
	}

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			o.logger.LogWarn(fmt.Sprintf("Run interrupted, %d of %d file(s) not scanned", len(paths)-i, len(paths)))
			o.logger.LogRunSummary(result)
			return result, err
		}

		o.logger.LogContainerStart(path, i+1, len(paths))

		existing, err := workspace.NameSet(o.ws)
		if err != nil {
			o.skip(&result, path, fmt.Errorf("snapshot workspace: %w", err))
			continue
		}

		count, first, err := o.extractor.Extract(path, existing, keywords, &result.Flagged)
		if err != nil {
			o.skip(&result, path, err)
			continue
		}

		result.TotalCount += count
		result.ProcessedFiles++
		if result.FirstNew == nil && first != nil {
			result.FirstNew = first
		}
		o.logger.LogContainerDone(path, count)
	}

	o.logger.LogRunSummary(result)
	return result, nil
}

func (o *Orchestrator) skip(result *models.RunResult, path string, err error) {
	result.Skipped = append(result.Skipped, models.SkippedFile{
		FileName: filepath.Base(path),
		Error:    err.Error(),
	})
	o.logger.LogContainerSkipped(path, err)
}
