package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/textguard/internal/models"
	"github.com/harrison/textguard/internal/workspace"
)

const footer = "-----------------------------------\n" +
	"Check out other add-ons from OffTheClockStudios:\n" +
	"https://superhivemarket.com/creators/offtheclockstudiosstore\n"

const header = "BlendTextGuard Security Scan Report\n" +
	"===================================\n\n"

func TestRenderClean(t *testing.T) {
	got := Render(nil, []string{"exec", "eval"}, nil)

	want := header +
		"Keywords scanned (case-insensitive match): exec, eval\n\n" +
		"No flagged text blocks found.\n\n" +
		footer
	assert.Equal(t, want, got)
}

func TestRenderFlaggedAndSkipped(t *testing.T) {
	flagged := []models.FlaggedMatch{
		{Container: "demo", Resource: "Text", Keywords: []string{"import os", "os.system"}},
		{Container: "other", Resource: "run.py", Keywords: []string{"exec("}},
	}
	skipped := []models.SkippedFile{
		{FileName: "broken.blend", Error: "blend: not a blend file"},
	}

	got := Render(flagged, []string{"import os", "os.system", "exec("}, skipped)

	want := header +
		"Skipped .blend files (could not load):\n" +
		"  • broken.blend  ⇒  blend: not a blend file\n" +
		"\n-----------------------------------\n\n" +
		"Keywords scanned (case-insensitive match): import os, os.system, exec(\n\n" +
		">> Blend File: demo\n" +
		"   Block: Text\n" +
		"   Matched: import os, os.system\n\n" +
		">> Blend File: other\n" +
		"   Block: run.py\n" +
		"   Matched: exec(\n\n" +
		footer
	assert.Equal(t, want, got)
}

func TestRenderIsDeterministic(t *testing.T) {
	flagged := []models.FlaggedMatch{{Container: "a", Resource: "b", Keywords: []string{"c"}}}
	assert.Equal(t, Render(flagged, []string{"c"}, nil), Render(flagged, []string{"c"}, nil))
}

func TestRenderEmptyKeywordList(t *testing.T) {
	got := Render(nil, nil, nil)
	assert.Contains(t, got, "Keywords scanned (case-insensitive match): \n\n")
}

func TestPublishCleanRunIsNoop(t *testing.T) {
	ws := workspace.NewMemory()
	var viewer, notice bytes.Buffer
	p := NewPublisher(ws, &viewer, &notice)

	published, err := p.Publish(models.RunResult{TotalCount: 2, ProcessedFiles: 1}, []string{"exec"})
	require.NoError(t, err)

	assert.False(t, published)
	assert.Empty(t, viewer.String())
	assert.Empty(t, notice.String())
	_, err = ws.Get(ReportName)
	assert.ErrorIs(t, err, workspace.ErrNotFound)
}

func TestPublishReplacesPreviousReport(t *testing.T) {
	ws := workspace.NewMemory()
	_, err := ws.Add(models.TextResource{Name: ReportName, Content: "old"})
	require.NoError(t, err)

	var viewer, notice bytes.Buffer
	p := NewPublisher(ws, &viewer, &notice)

	result := models.RunResult{
		Flagged: []models.FlaggedMatch{{Container: "demo", Resource: "Text", Keywords: []string{"exec"}}},
	}
	published, err := p.Publish(result, []string{"exec"})
	require.NoError(t, err)
	assert.True(t, published)

	names, err := ws.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{ReportName}, names)

	res, err := ws.Get(ReportName)
	require.NoError(t, err)
	assert.Equal(t, Render(result.Flagged, []string{"exec"}, nil), res.Content)
	assert.Equal(t, res.Content, viewer.String())

	assert.Contains(t, notice.String(), "⚠ Flagged text blocks detected.")
	assert.NotContains(t, notice.String(), "Skipped one or more")
	assert.Contains(t, notice.String(), "See 'BlendTextGuard_FlagReport' for details.")
}

func TestPublishSkippedOnly(t *testing.T) {
	ws := workspace.NewMemory()
	var notice bytes.Buffer
	p := NewPublisher(ws, nil, &notice)

	result := models.RunResult{Skipped: []models.SkippedFile{{FileName: "x.blend", Error: "boom"}}}
	published, err := p.Publish(result, nil)
	require.NoError(t, err)
	assert.True(t, published)

	assert.Contains(t, notice.String(), "⚠ Skipped one or more .blend files.")
	assert.False(t, strings.Contains(notice.String(), "Flagged text blocks"))
}

func TestSummary(t *testing.T) {
	tests := []struct {
		name      string
		result    models.RunResult
		fileCount int
		want      string
	}{
		{
			name:      "nothing found",
			result:    models.RunResult{ProcessedFiles: 3},
			fileCount: 3,
			want:      "No text blocks found in 3 file(s).",
		},
		{
			name:      "appended from one file",
			result:    models.RunResult{TotalCount: 2, ProcessedFiles: 1},
			fileCount: 1,
			want:      "Appended 2 text block(s) from 1 file.",
		},
		{
			name:      "appended from several files",
			result:    models.RunResult{TotalCount: 5, ProcessedFiles: 2},
			fileCount: 2,
			want:      "Appended 5 text block(s) from 2 files.",
		},
		{
			name: "appended and skipped",
			result: models.RunResult{
				TotalCount:     1,
				ProcessedFiles: 2,
				Skipped:        []models.SkippedFile{{FileName: "b.blend"}},
			},
			fileCount: 3,
			want:      "Appended 1 text block(s) from 2 files.  Skipped 1 .blend file(s).",
		},
		{
			name: "only skipped",
			result: models.RunResult{
				ProcessedFiles: 1,
				Skipped:        []models.SkippedFile{{FileName: "a.blend"}, {FileName: "b.blend"}},
			},
			fileCount: 3,
			want:      "Skipped 2 .blend file(s).",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Summary(tt.result, tt.fileCount))
		})
	}
}
