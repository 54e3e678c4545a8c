package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockNotifier struct {
	changed chan string
	errs    chan error
}

func (n *mockNotifier) WatcherItemDidChange(path string) {
	n.changed <- path
}

func (n *mockNotifier) WatcherDidError(err error) {
	n.errs <- err
}

func TestFileChanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	other := filepath.Join(dir, "other.yaml")
	require.NoError(t, os.WriteFile(path, []byte("url: http://a\n"), 0o600))

	w, err := NewFile()
	require.NoError(t, err)
	require.NoError(t, w.Add(path))

	n := &mockNotifier{changed: make(chan string, 16), errs: make(chan error, 1)}
	done := make(chan struct{})
	go func() {
		w.Start(n)
		close(done)
	}()

	require.NoError(t, os.WriteFile(other, []byte("x"), 0o600))
	require.NoError(t, os.WriteFile(path, []byte("url: http://b\n"), 0o600))

	select {
	case got := <-n.changed:
		assert.Equal(t, path, got)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification received")
	}

	w.Shutdown()
	w.Shutdown()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
