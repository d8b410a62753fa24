package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTextResourceValidate(t *testing.T) {
	tests := []struct {
		name     string
		resource TextResource
		wantErr  bool
	}{
		{name: "valid resource", resource: TextResource{Name: "notes", Content: "hi"}},
		{name: "empty content is allowed", resource: TextResource{Name: "empty"}},
		{name: "missing name", resource: TextResource{Content: "hi"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.resource.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestContainerBaseName(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"/tmp/assets/demo.blend", "demo"},
		{"demo.BLEND", "demo"},
		{"rig.v2.blend", "rig.v2"},
		{"noext", "noext"},
		{"/a/.blend", ".blend"},
		{"/a/..blend", "..blend"},
		{"/a/.hidden.blend", ".hidden"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, ContainerBaseName(tt.path))
		})
	}
}

func TestPrefixedName(t *testing.T) {
	assert.Equal(t, "demo_script1", PrefixedName("demo", "script1"))
	assert.Equal(t, "demo_Text.001", PrefixedName("demo", "Text.001"))
}

func TestRunResultHasIssues(t *testing.T) {
	var clean RunResult
	assert.False(t, clean.HasIssues())

	flagged := RunResult{Flagged: []FlaggedMatch{{Container: "a", Resource: "b", Keywords: []string{"eval"}}}}
	assert.True(t, flagged.HasIssues())

	skipped := RunResult{Skipped: []SkippedFile{{FileName: "bad.blend", Error: "boom"}}}
	assert.True(t, skipped.HasIssues())
}
