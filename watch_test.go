// FILE: lixenwraith/propbind/watch_test.go
package propbind

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testWatchOptions() WatchOptions {
	opts := DefaultWatchOptions()
	opts.PollInterval = MinPollInterval
	opts.Debounce = 150 * time.Millisecond
	return opts
}

func nextEvent(t *testing.T, events <-chan FileEvent) FileEvent {
	t.Helper()
	select {
	case ev, ok := <-events:
		require.True(t, ok, "event channel closed")
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("no file event received")
		return FileEvent{}
	}
}

// TestWatchFile tests change detection on a property file
func TestWatchFile(t *testing.T) {
	t.Run("ModifiedAfterDebounce", func(t *testing.T) {
		path := writeFile(t, "a = 1\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := WatchFile(ctx, path, testWatchOptions())
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("a = 22\n"), 0600))
		ev := nextEvent(t, events)
		assert.Equal(t, FileModified, ev.Kind)
		assert.Equal(t, path, ev.Path)
	})

	t.Run("RapidWritesCoalesce", func(t *testing.T) {
		path := writeFile(t, "a = 1\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		opts := testWatchOptions()
		opts.Debounce = 600 * time.Millisecond
		events, err := WatchFile(ctx, path, opts)
		require.NoError(t, err)

		for i := range 3 {
			require.NoError(t, os.WriteFile(path, []byte(fmt.Sprintf("a = %d\n", 10+i*100)), 0600))
			time.Sleep(120 * time.Millisecond)
		}

		assert.Equal(t, FileModified, nextEvent(t, events).Kind)
		select {
		case ev := <-events:
			t.Fatalf("unexpected second event %v", ev.Kind)
		case <-time.After(800 * time.Millisecond):
		}
	})

	t.Run("ModifiedWithNotify", func(t *testing.T) {
		path := writeFile(t, "a = 1\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		opts := testWatchOptions()
		opts.Notify = true
		events, err := WatchFile(ctx, path, opts)
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("a = 22\n"), 0600))
		assert.Equal(t, FileModified, nextEvent(t, events).Kind)
	})

	t.Run("Deleted", func(t *testing.T) {
		path := writeFile(t, "a = 1\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := WatchFile(ctx, path, testWatchOptions())
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))
		assert.Equal(t, FileDeleted, nextEvent(t, events).Kind)
	})

	t.Run("PermissionsChanged", func(t *testing.T) {
		if runtime.GOOS == "windows" {
			t.Skip("permission bits are not meaningful on Windows")
		}
		path := writeFile(t, "a = 1\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		events, err := WatchFile(ctx, path, testWatchOptions())
		require.NoError(t, err)

		require.NoError(t, os.Chmod(path, 0644))
		assert.Equal(t, FilePermissionsChanged, nextEvent(t, events).Kind)
	})

	t.Run("ClosedOnCancel", func(t *testing.T) {
		path := writeFile(t, "a = 1\n")
		ctx, cancel := context.WithCancel(context.Background())

		events, err := WatchFile(ctx, path, testWatchOptions())
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-events:
			assert.False(t, ok)
		case <-time.After(2 * time.Second):
			t.Fatal("event channel not closed")
		}
	})

	t.Run("MissingFile", func(t *testing.T) {
		_, err := WatchFile(context.Background(), t.TempDir()+"/none", DefaultWatchOptions())
		assert.ErrorIs(t, err, ErrStoreUnavailable)
	})

	t.Run("ReloadOnEvent", func(t *testing.T) {
		path := writeFile(t, "a = 1\nb = x\n")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		m := newManagerForPath(t, path)
		events, err := WatchFile(ctx, path, testWatchOptions())
		require.NoError(t, err)

		require.NoError(t, os.WriteFile(path, []byte("a = 2\nb = x\nc = true\n"), 0600))
		require.Equal(t, FileModified, nextEvent(t, events).Kind)

		before := m.Entries()
		require.NoError(t, m.Reload(ctx))
		assert.Equal(t, []string{"a", "c"}, ChangedKeys(before, m.Entries()))
	})
}

func newManagerForPath(t *testing.T, path string) *Manager {
	t.Helper()
	m, err := NewBuilder().WithFile(path).Build(context.Background())
	require.NoError(t, err)
	return m
}

func TestChangedKeys(t *testing.T) {
	before := []Entry{
		{Passthrough: true, Source: "# c"},
		{Path: "same", Value: IntValue(1)},
		{Path: "value", Value: IntValue(1)},
		{Path: "flag", Value: IntValue(1)},
		{Path: "gone", Value: IntValue(1)},
	}
	after := []Entry{
		{Path: "same", Value: IntValue(1)},
		{Path: "value", Value: FloatValue(1)},
		{Path: "flag", Value: IntValue(1), IsField: true},
		{Path: "new", Value: StringValue("x")},
		{Passthrough: true, Source: "# other"},
	}

	assert.Equal(t, []string{"value", "flag", "new", "gone"}, ChangedKeys(before, after))
	assert.Empty(t, ChangedKeys(after, after))
}

func TestChangeKindString(t *testing.T) {
	assert.Equal(t, "modified", FileModified.String())
	assert.Equal(t, "deleted", FileDeleted.String())
	assert.Equal(t, "permissions_changed", FilePermissionsChanged.String())
	assert.Equal(t, "unknown", ChangeKind(42).String())
}
