// FILE: lixenwraith/propbind/watch.go
package propbind

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchOptions configures file change polling.
type WatchOptions struct {
	// PollInterval for file stat checks (minimum 100ms)
	PollInterval time.Duration

	// Debounce delays a change event until the file has been quiet this long
	Debounce time.Duration

	// VerifyPermissions reports group/other permission changes instead of content changes
	VerifyPermissions bool

	// Notify adds filesystem notifications that trigger a check between polls.
	// Polling continues regardless, so a notification setup failure only logs.
	Notify bool

	// Logger receives watcher events. Default: no-op
	Logger *zap.Logger
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		PollInterval:      DefaultPollInterval,
		Debounce:          DefaultDebounce,
		VerifyPermissions: true,
		Logger:            zap.NewNop(),
	}
}

// ChangeKind classifies a FileEvent.
type ChangeKind int

const (
	// FileModified means the content changed and settled; reload to pick it up.
	FileModified ChangeKind = iota
	// FileDeleted is sent once when the file disappears.
	FileDeleted
	// FilePermissionsChanged is sent when group or other permission bits change.
	FilePermissionsChanged
)

func (k ChangeKind) String() string {
	switch k {
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	case FilePermissionsChanged:
		return "permissions_changed"
	default:
		return "unknown"
	}
}

// FileEvent reports a change of a watched file.
type FileEvent struct {
	Path string
	Kind ChangeKind
}

// fileState is the part of os.FileInfo a watcher compares.
type fileState struct {
	modTime time.Time
	size    int64
	mode    os.FileMode
}

func statFile(path string) (fileState, error) {
	info, err := os.Stat(path)
	if err != nil {
		return fileState{}, err
	}
	return fileState{modTime: info.ModTime(), size: info.Size(), mode: info.Mode()}, nil
}

// WatchFile polls path until ctx is done and reports changes on the returned
// channel, which is closed when watching stops. Events are dropped while the
// receiver is not keeping up.
//
// WatchFile only observes. Reloading is left to the receiver, which keeps a
// Manager confined to one goroutine:
//
//	for ev := range events {
//	    if ev.Kind == propbind.FileModified {
//	        before := m.Entries()
//	        _ = m.Reload(ctx)
//	        changed := propbind.ChangedKeys(before, m.Entries())
//	    }
//	}
func WatchFile(ctx context.Context, path string, opts WatchOptions) (<-chan FileEvent, error) {
	if opts.PollInterval < MinPollInterval {
		opts.PollInterval = MinPollInterval
	}
	if opts.Debounce < 0 {
		opts.Debounce = 0
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	if err := checkFile(path); err != nil {
		return nil, err
	}
	initial, err := statFile(path)
	if err != nil {
		return nil, err
	}

	w := &fileWatcher{
		path:   path,
		opts:   opts,
		last:   initial,
		events: make(chan FileEvent, 10),
	}
	if opts.Notify {
		w.notifier = newNotifier(path, opts.Logger)
	}
	go w.loop(ctx)
	return w.events, nil
}

type fileWatcher struct {
	path    string
	opts    WatchOptions
	last    fileState
	missing bool
	// pending is the time a settled change becomes reportable; zero when idle.
	pending  time.Time
	events   chan FileEvent
	notifier *fsnotify.Watcher
}

// newNotifier watches the directory of path, which survives the file being
// replaced by an atomic rename. Returns nil when notifications are unavailable.
func newNotifier(path string, logger *zap.Logger) *fsnotify.Watcher {
	n, err := fsnotify.NewWatcher()
	if err != nil {
		logger.Warn("File notifications unavailable, polling only", zap.Error(err))
		return nil
	}
	if err := n.Add(filepath.Dir(path)); err != nil {
		logger.Warn("File notifications unavailable, polling only",
			zap.String("path", path), zap.Error(err))
		_ = n.Close()
		return nil
	}
	return n
}

func (w *fileWatcher) loop(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.opts.PollInterval)
	defer ticker.Stop()

	var notes <-chan fsnotify.Event
	var noteErrs <-chan error
	if w.notifier != nil {
		defer w.notifier.Close()
		notes, noteErrs = w.notifier.Events, w.notifier.Errors
	}
	target := filepath.Clean(w.path)

	w.opts.Logger.Debug("Watching property file", zap.String("path", w.path))
	for {
		select {
		case <-ctx.Done():
			w.opts.Logger.Debug("Stopped watching property file", zap.String("path", w.path))
			return
		case now := <-ticker.C:
			w.check(now)
		case ev, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			if filepath.Clean(ev.Name) == target {
				w.check(time.Now())
			}
		case err, ok := <-noteErrs:
			if !ok {
				noteErrs = nil
				continue
			}
			w.opts.Logger.Warn("File notification error", zap.String("path", w.path), zap.Error(err))
		}
	}
}

// check compares the file against the last observed state.
func (w *fileWatcher) check(now time.Time) {
	current, err := statFile(w.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !w.missing {
			w.missing = true
			w.pending = time.Time{}
			w.notify(FileDeleted)
		}
		return
	}

	if w.missing {
		// Recreated files count as modified.
		w.missing = false
		w.last = fileState{}
	}

	if w.opts.VerifyPermissions && current.mode&0077 != w.last.mode&0077 && !w.last.modTime.IsZero() {
		w.last = current
		w.pending = time.Time{}
		w.notify(FilePermissionsChanged)
		return
	}

	if !current.modTime.Equal(w.last.modTime) || current.size != w.last.size {
		w.last = current
		w.pending = now.Add(w.opts.Debounce)
	}

	if !w.pending.IsZero() && !now.Before(w.pending) {
		w.pending = time.Time{}
		w.notify(FileModified)
	}
}

func (w *fileWatcher) notify(kind ChangeKind) {
	select {
	case w.events <- FileEvent{Path: w.path, Kind: kind}:
		w.opts.Logger.Debug("Property file changed",
			zap.String("path", w.path),
			zap.Stringer("change", kind))
	default:
		w.opts.Logger.Warn("Dropped property file event",
			zap.String("path", w.path),
			zap.Stringer("change", kind))
	}
}

// ChangedKeys returns the binding paths whose value or flags differ between
// two entry lists, including added and removed paths. Paths of after come
// first in order, then paths only present in before.
func ChangedKeys(before, after []Entry) []string {
	old := make(map[string]Entry, len(before))
	for _, e := range before {
		if e.Passthrough {
			continue
		}
		if _, seen := old[e.Path]; !seen {
			old[e.Path] = e
		}
	}

	var changed []string
	seen := make(map[string]bool, len(after))
	for _, e := range after {
		if e.Passthrough || seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		prev, ok := old[e.Path]
		if !ok || prev.Value != e.Value || prev.IsField != e.IsField || prev.IsStatic != e.IsStatic {
			changed = append(changed, e.Path)
		}
	}
	for _, e := range before {
		if e.Passthrough || seen[e.Path] {
			continue
		}
		seen[e.Path] = true
		changed = append(changed, e.Path)
	}
	return changed
}
