package display

import (
	"bytes"
	"strings"
	"testing"
)

func TestDisplayWarning_TitleOnly(t *testing.T) {
	var buf bytes.Buffer
	Warning{Title: "Configuration Missing"}.Display(&buf)

	output := buf.String()
	if !strings.Contains(output, "⚠️") {
		t.Error("Expected warning emoji ⚠️ in output")
	}
	if !strings.Contains(output, "Configuration Missing") {
		t.Error("Expected title in output")
	}
	// a bytes.Buffer is never a terminal
	if strings.Contains(output, "\x1b[") {
		t.Errorf("Expected no ANSI codes for non-terminal writer, got %q", output)
	}
}

func TestDisplayWarning_AllFields(t *testing.T) {
	var buf bytes.Buffer
	Warning{
		Title:      "Something happened",
		Lines:      []string{"first line", "second line"},
		Files:      []string{"a.blend", "b.blend"},
		Suggestion: "Do something else",
	}.Display(&buf)

	output := buf.String()
	for _, want := range []string{
		"    first line\n",
		"    second line\n",
		"    Affected files:\n",
		"      1. a.blend\n",
		"      2. b.blend\n",
		"    Suggestion:\n",
		"    Do something else\n",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("Expected %q in output:\n%s", want, output)
		}
	}
	if strings.Index(output, "first line") > strings.Index(output, "second line") {
		t.Error("Expected lines in order")
	}
}

func TestDisplayWarning_SingleFile(t *testing.T) {
	var buf bytes.Buffer
	Warning{Title: "t", Files: []string{"a.blend1"}}.Display(&buf)

	if !strings.Contains(buf.String(), "Affected file:\n") {
		t.Errorf("Expected singular label, got %q", buf.String())
	}
}

func TestAdvisory(t *testing.T) {
	tests := []struct {
		name      string
		skipped   bool
		flagged   bool
		wantNil   bool
		wantLines []string
	}{
		{name: "clean run", wantNil: true},
		{
			name:    "skipped only",
			skipped: true,
			wantLines: []string{
				"⚠ Skipped one or more .blend files.",
				"See 'Report' for details.",
			},
		},
		{
			name:    "flagged only",
			flagged: true,
			wantLines: []string{
				"⚠ Flagged text blocks detected.",
				"See 'Report' for details.",
			},
		},
		{
			name:    "both",
			skipped: true,
			flagged: true,
			wantLines: []string{
				"⚠ Skipped one or more .blend files.",
				"⚠ Flagged text blocks detected.",
				"See 'Report' for details.",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := Advisory(tt.skipped, tt.flagged, "Report")
			if tt.wantNil {
				if w != nil {
					t.Fatalf("expected nil advisory, got %+v", w)
				}
				return
			}
			if w == nil {
				t.Fatal("expected advisory")
			}
			if len(w.Lines) != len(tt.wantLines) {
				t.Fatalf("lines = %v, want %v", w.Lines, tt.wantLines)
			}
			for i := range tt.wantLines {
				if w.Lines[i] != tt.wantLines[i] {
					t.Errorf("line %d = %q, want %q", i, w.Lines[i], tt.wantLines[i])
				}
			}
		})
	}
}
