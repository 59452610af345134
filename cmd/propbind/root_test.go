// FILE: lixenwraith/propbind/cmd/propbind/root_test.go
package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lixenwraith/propbind"
)

// isolateDiscovery keeps settings discovery away from the host's files.
func isolateDiscovery(t *testing.T) {
	t.Helper()
	t.Setenv("PROPBIND_CONFIG", "")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CONFIG_DIRS", t.TempDir())
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	isolateDiscovery(t)
	cmd := NewRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeProperties(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.properties")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

// TestCommands tests the CLI against a property file
func TestCommands(t *testing.T) {
	t.Run("Get", func(t *testing.T) {
		path := writeProperties(t, "# c\nserver.port = 8080\n")
		out, err := runCLI(t, "--path", path, "get", "server.port")
		require.NoError(t, err)
		assert.Equal(t, "8080\n", out)
	})

	t.Run("GetMissing", func(t *testing.T) {
		path := writeProperties(t, "a = 1\n")
		_, err := runCLI(t, "--path", path, "get", "b")
		assert.ErrorIs(t, err, propbind.ErrKeyNotFound)
	})

	t.Run("Set", func(t *testing.T) {
		path := writeProperties(t, "# c\nfield server.port = 8080\n")
		_, err := runCLI(t, "--path", path, "set", "server.port", "9090")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# c\nfield server.port = 9090\n", string(data))
	})

	t.Run("SetKindMismatch", func(t *testing.T) {
		path := writeProperties(t, "enabled = true\n")
		_, err := runCLI(t, "--path", path, "set", "enabled", "12")
		assert.ErrorIs(t, err, propbind.ErrTypeMismatch)
	})

	t.Run("List", func(t *testing.T) {
		path := writeProperties(t, "# c\nstatic field Config.Threshold = 0.5\nname = api\n")
		out, err := runCLI(t, "--path", path, "list")
		require.NoError(t, err)
		assert.Contains(t, out, "Config.Threshold")
		assert.Contains(t, out, "static field")
		assert.Contains(t, out, "api")
		assert.NotContains(t, out, "# c")
	})

	t.Run("Fmt", func(t *testing.T) {
		path := writeProperties(t, "# c\n  field   a.b=1\nratio=2.0\n")
		_, err := runCLI(t, "--path", path, "fmt")
		require.NoError(t, err)

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, "# c\nfield a.b = 1\nratio = 2.0\n", string(data))
	})

	t.Run("CommentFlag", func(t *testing.T) {
		path := writeProperties(t, "; a = 1\nb = 2\n")
		out, err := runCLI(t, "--path", path, "--comment", ";", "list")
		require.NoError(t, err)
		assert.NotContains(t, out, "; a")
	})

	t.Run("SettingsFileWithFlagOverride", func(t *testing.T) {
		path := writeProperties(t, "a = 1\n")
		settings := filepath.Join(t.TempDir(), "propbind.toml")
		require.NoError(t, os.WriteFile(settings, []byte("path = \"/nonexistent/app.properties\"\n"), 0600))

		out, err := runCLI(t, "--config", settings, "--path", path, "get", "a")
		require.NoError(t, err)
		assert.Equal(t, "1\n", out)
	})

	t.Run("SQLiteStore", func(t *testing.T) {
		db := filepath.Join(t.TempDir(), "props.db")
		p := propbind.NewEditableDocumentProvider(propbind.NewSQLiteStore(db, "props"))
		require.NoError(t, p.Save(context.Background(), []*propbind.Entry{{Path: "k", Value: propbind.StringValue("v")}}))

		_, err := runCLI(t, "--store", "sqlite", "--path", db, "--collection", "props", "set", "k", "w")
		require.NoError(t, err)

		out, err := runCLI(t, "--store", "sqlite", "--path", db, "--collection", "props", "get", "k")
		require.NoError(t, err)
		assert.Equal(t, "w\n", out)
	})

	t.Run("InvalidStore", func(t *testing.T) {
		_, err := runCLI(t, "--store", "redis", "list")
		assert.ErrorContains(t, err, "unknown store")
	})

	t.Run("SettingsFromEnvironment", func(t *testing.T) {
		path := writeProperties(t, "a = 1\n")
		settings := filepath.Join(t.TempDir(), "propbind.yaml")
		require.NoError(t, os.WriteFile(settings, []byte("path: "+path+"\n"), 0600))

		isolateDiscovery(t)
		t.Setenv("PROPBIND_CONFIG", settings)
		cmd := NewRootCommand()
		var out bytes.Buffer
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"get", "a"})
		require.NoError(t, cmd.ExecuteContext(context.Background()))
		assert.Equal(t, "1\n", out.String())
	})
}

// syncBuffer is a bytes.Buffer safe for one writer and one reader.
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

// TestWatchCommand tests that changed keys are printed until cancelled
func TestWatchCommand(t *testing.T) {
	isolateDiscovery(t)
	path := writeProperties(t, "a = 1\nb = 2\n")

	ctx, cancel := context.WithCancel(context.Background())
	cmd := NewRootCommand()
	out := &syncBuffer{}
	cmd.SetOut(out)
	cmd.SetArgs([]string{"--path", path, "watch", "--interval", "100ms", "--debounce", "0s"})

	done := make(chan error, 1)
	go func() { done <- cmd.ExecuteContext(ctx) }()

	// Let the watcher take its initial snapshot
	time.Sleep(300 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("a = 10\n"), 0600))

	assert.Eventually(t, func() bool {
		s := out.String()
		return bytes.Contains([]byte(s), []byte("a = 10\n")) && bytes.Contains([]byte(s), []byte("b removed\n"))
	}, 3*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop")
	}
}

func TestWatchRequiresFileStore(t *testing.T) {
	_, err := runCLI(t, "--store", "sqlite", "--path", filepath.Join(t.TempDir(), "p.db"), "watch")
	assert.ErrorContains(t, err, "requires the file store")
}
