package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/harrison/textguard/internal/blend/blendtest"
)

// syncBuffer is a bytes.Buffer safe for the command goroutine and the test to share.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestScanWatchRescansSavedContainers(t *testing.T) {
	setupHome(t)
	folder := t.TempDir()

	orig := watchDebounce
	watchDebounce = 50 * time.Millisecond
	defer func() { watchDebounce = orig }()

	root := NewRootCommand()
	var out, errOut syncBuffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetIn(strings.NewReader(""))
	root.SetArgs([]string{"scan", folder, "--watch", "--no-log-file", "--keywords", "exec("})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- root.ExecuteContext(ctx) }()

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), "Watching "+folder)
	}, 3*time.Second, 20*time.Millisecond)
	assert.Contains(t, errOut.String(), "No .blend files found in the selected folder.")

	require.NoError(t, blendtest.WriteFile(filepath.Join(folder, "late.blend"), []blendtest.Text{
		{Name: "loader.py", Content: "exec(open('x').read())"},
	}, blendtest.Options{}))

	require.Eventually(t, func() bool {
		return strings.Contains(out.String(), ">> Blend File: late\n   Block: loader.py\n")
	}, 5*time.Second, 20*time.Millisecond)
	assert.Contains(t, out.String(), "Appended 1 text block(s) from 1 file.")

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("scan --watch did not stop after cancellation")
	}
	assert.Contains(t, out.String(), "Stopped watching")
}
