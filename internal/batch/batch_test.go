package batch

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/textguard/internal/blend"
	"github.com/harrison/textguard/internal/blend/blendtest"
	"github.com/harrison/textguard/internal/extract"
	"github.com/harrison/textguard/internal/logger"
	"github.com/harrison/textguard/internal/models"
	"github.com/harrison/textguard/internal/workspace"
)

var keywords = []string{"import os", "exec("}

func writeContainer(t *testing.T, dir, name string, texts ...blendtest.Text) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, blendtest.WriteFile(path, texts, blendtest.Options{}))
	return path
}

func TestRunIsolatesBrokenContainers(t *testing.T) {
	dir := t.TempDir()
	a := writeContainer(t, dir, "A.blend", blendtest.Text{Name: "Text", Content: "print(1)"})
	broken := filepath.Join(dir, "B_broken.blend")
	require.NoError(t, os.WriteFile(broken, []byte("definitely not a blend file"), 0644))
	c := writeContainer(t, dir, "C.blend",
		blendtest.Text{Name: "Text", Content: "exec(code)"},
		blendtest.Text{Name: "readme", Content: "hi"},
	)

	ws := workspace.NewMemory()
	orch := NewOrchestrator(extract.New(blend.Loader{}, ws, nil), ws, nil)

	result, err := orch.Run(context.Background(), []string{a, broken, c}, keywords)
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalCount)
	assert.Equal(t, 2, result.ProcessedFiles)
	require.NotNil(t, result.FirstNew)
	assert.Equal(t, "A_Text", result.FirstNew.Name)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "B_broken.blend", result.Skipped[0].FileName)
	assert.NotEmpty(t, result.Skipped[0].Error)

	require.Len(t, result.Flagged, 1)
	assert.Equal(t, models.FlaggedMatch{Container: "C", Resource: "Text", Keywords: []string{"exec("}}, result.Flagged[0])

	names, err := ws.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"A_Text", "C_Text", "C_readme"}, names)
	assert.True(t, result.HasIssues())
}

func TestRunTwiceIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	a := writeContainer(t, dir, "A.blend", blendtest.Text{Name: "Text", Content: "print(1)"})

	ws := workspace.NewMemory()
	orch := NewOrchestrator(extract.New(blend.Loader{}, ws, nil), ws, nil)

	for i := 0; i < 2; i++ {
		result, err := orch.Run(context.Background(), []string{a}, keywords)
		require.NoError(t, err)
		assert.Equal(t, 1, result.TotalCount)
		assert.False(t, result.HasIssues())
	}

	names, err := ws.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"A_Text"}, names)
}

func TestRunEmptyInput(t *testing.T) {
	ws := workspace.NewMemory()
	orch := NewOrchestrator(extract.New(blend.Loader{}, ws, nil), ws, nil)

	result, err := orch.Run(context.Background(), nil, keywords)
	require.NoError(t, err)
	assert.Zero(t, result.TotalCount)
	assert.Zero(t, result.ProcessedFiles)
	assert.Nil(t, result.FirstNew)
	assert.Empty(t, result.Flagged)
	assert.Empty(t, result.Skipped)
}

// recordingExtractor adds one resource per call and records the snapshot it was given.
type recordingExtractor struct {
	ws        workspace.Workspace
	snapshots []map[string]bool
	fail      map[string]bool
}

func (r *recordingExtractor) Extract(path string, existing map[string]bool, _ []string, _ *[]models.FlaggedMatch) (int, *models.TextResource, error) {
	r.snapshots = append(r.snapshots, existing)
	if r.fail[path] {
		return 0, nil, errors.New("boom")
	}
	name, err := r.ws.Add(models.TextResource{Name: models.ContainerBaseName(path), Source: path})
	if err != nil {
		return 0, nil, err
	}
	res, err := r.ws.Get(name)
	return 1, res, err
}

func TestRunRecomputesExistingNamesPerContainer(t *testing.T) {
	ws := workspace.NewMemory()
	ext := &recordingExtractor{ws: ws, fail: map[string]bool{"/x/two.blend": true}}
	orch := NewOrchestrator(ext, ws, nil)

	result, err := orch.Run(context.Background(), []string{"/x/one.blend", "/x/two.blend", "/x/three.blend"}, nil)
	require.NoError(t, err)

	require.Len(t, ext.snapshots, 3)
	assert.Empty(t, ext.snapshots[0])
	assert.Equal(t, map[string]bool{"one": true}, ext.snapshots[1])
	assert.Equal(t, map[string]bool{"one": true}, ext.snapshots[2])

	assert.Equal(t, 2, result.TotalCount)
	assert.Equal(t, 2, result.ProcessedFiles)
	assert.Equal(t, "one", result.FirstNew.Name)
	assert.Equal(t, []models.SkippedFile{{FileName: "two.blend", Error: "boom"}}, result.Skipped)
}

func TestRunStopsBetweenContainersWhenCancelled(t *testing.T) {
	ws := workspace.NewMemory()
	ext := &recordingExtractor{ws: ws}
	orch := NewOrchestrator(ext, ws, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := orch.Run(ctx, []string{"/x/one.blend", "/x/two.blend"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, ext.snapshots)
	assert.Zero(t, result.ProcessedFiles)
}

// cancellingExtractor cancels the run once it has extracted one container.
type cancellingExtractor struct {
	cancel context.CancelFunc
	calls  []string
}

func (c *cancellingExtractor) Extract(path string, existing map[string]bool, keywords []string, flagged *[]models.FlaggedMatch) (int, *models.TextResource, error) {
	c.calls = append(c.calls, path)
	c.cancel()
	return 1, nil, nil
}

func TestRunStopsAfterCurrentContainerOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ext := &cancellingExtractor{cancel: cancel}

	var buf bytes.Buffer
	orch := NewOrchestrator(ext, workspace.NewMemory(), logger.NewConsoleLogger(&buf, "info"))

	result, err := orch.Run(ctx, []string{"/x/one.blend", "/x/two.blend", "/x/three.blend"}, nil)
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"/x/one.blend"}, ext.calls)
	assert.Equal(t, 1, result.ProcessedFiles)
	assert.Contains(t, buf.String(), "Run interrupted, 2 of 3 file(s) not scanned")
}

func TestNewOrchestratorPanicsWithoutCollaborators(t *testing.T) {
	assert.Panics(t, func() { NewOrchestrator(nil, workspace.NewMemory(), nil) })
	assert.Panics(t, func() { NewOrchestrator(&recordingExtractor{}, nil, nil) })
}
