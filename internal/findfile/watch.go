package findfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// WatchEvent represents a filesystem event type
type WatchEvent string

// Watch event types
const (
	EventCreate WatchEvent = "create"
	EventModify WatchEvent = "modify"
	EventDelete WatchEvent = "delete"
	EventRename WatchEvent = "rename"
	EventChmod  WatchEvent = "chmod"
)

// ParseWatchEvent maps a user-supplied event name to a WatchEvent.
func ParseWatchEvent(s string) (WatchEvent, error) {
	switch strings.ToLower(s) {
	case "create":
		return EventCreate, nil
	case "write", "modify":
		return EventModify, nil
	case "remove", "delete":
		return EventDelete, nil
	case "rename":
		return EventRename, nil
	case "chmod":
		return EventChmod, nil
	}
	return "", fmt.Errorf("%w: unknown event type %q", ErrInvalidArgument, s)
}

// WatchOptions defines options for watching filesystem changes
type WatchOptions struct {
	// Events to watch for; empty means all.
	Events []WatchEvent

	// Watch every folder under the root, including ones created later.
	Recursive bool

	// Only report names matching this pattern; empty means "*".
	Pattern string

	Logger *zap.Logger
}

// WatchResult is delivered to a WatchHandler for every matching event or
// watcher error.
type WatchResult struct {
	Event WatchEvent
	Info  Info // Zero except Path for deleted or renamed entries
	Error error
}

// WatchHandler processes watch results. Returning an error stops the watch.
type WatchHandler func(ctx context.Context, result WatchResult) error

// Watcher reports filesystem changes under a root.
type Watcher struct {
	root    string
	opts    WatchOptions
	logger  *zap.Logger
	match   *matcher
	events  map[fsnotify.Op]WatchEvent
	watcher *fsnotify.Watcher
}

// NewWatcher registers watches on root and, if opts.Recursive, on every
// folder below it. Watches are in place when NewWatcher returns.
func NewWatcher(ctx context.Context, root string, opts WatchOptions) (*Watcher, error) {
	pattern := opts.Pattern
	if pattern == "" {
		pattern = starPattern
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("error creating watcher: %w", err)
	}
	w := &Watcher{
		root:    root,
		opts:    opts,
		logger:  logger,
		match:   newMatcher(pattern),
		events:  eventOps(opts.Events),
		watcher: fw,
	}

	if err := fw.Add(root); err != nil {
		fw.Close()
		return nil, fmt.Errorf("error watching directory %s: %w", root, err)
	}
	if opts.Recursive {
		if err := w.addTree(ctx, root); err != nil {
			fw.Close()
			return nil, err
		}
	}
	return w, nil
}

// addTree watches every folder below dir, using the engine to find them.
func (w *Watcher) addTree(ctx context.Context, dir string) error {
	return AllFoldersIn(ctx, dir, func(e *Entry) error {
		path := e.Path()
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("error watching directory", zap.String("path", path), zap.Error(err))
		}
		return nil
	})
}

func eventOps(events []WatchEvent) map[fsnotify.Op]WatchEvent {
	all := map[fsnotify.Op]WatchEvent{
		fsnotify.Create: EventCreate,
		fsnotify.Write:  EventModify,
		fsnotify.Remove: EventDelete,
		fsnotify.Rename: EventRename,
		fsnotify.Chmod:  EventChmod,
	}
	if len(events) == 0 {
		return all
	}
	ops := make(map[fsnotify.Op]WatchEvent, len(events))
	for op, ev := range all {
		for _, want := range events {
			if ev == want {
				ops[op] = ev
			}
		}
	}
	return ops
}

// Run delivers events to handler until ctx is done, the handler fails or the
// watcher is closed. It returns nil when ctx ends.
func (w *Watcher) Run(ctx context.Context, handler WatchHandler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if err := w.handle(ctx, event, handler); err != nil {
				return err
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			if herr := handler(ctx, WatchResult{Error: fmt.Errorf("watcher error: %w", err)}); herr != nil {
				return herr
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, event fsnotify.Event, handler WatchHandler) error {
	var kind WatchEvent
	for _, op := range []fsnotify.Op{fsnotify.Create, fsnotify.Write, fsnotify.Remove, fsnotify.Rename, fsnotify.Chmod} {
		if ev, ok := w.events[op]; ok && event.Has(op) {
			kind = ev
			break
		}
	}

	info := Info{Path: event.Name}
	if !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		fi, err := os.Lstat(event.Name)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			return handler(ctx, WatchResult{Error: fmt.Errorf("error getting file info for %s: %w", event.Name, err)})
		}
		if fi != nil {
			info = infoFromFileInfo(event.Name, fi)
			if w.opts.Recursive && fi.IsDir() && event.Has(fsnotify.Create) {
				if err := w.watcher.Add(event.Name); err != nil {
					w.logger.Warn("error watching new directory", zap.String("path", event.Name), zap.Error(err))
				}
				if err := w.addTree(ctx, event.Name); err != nil {
					w.logger.Warn("error watching new tree", zap.String("path", event.Name), zap.Error(err))
				}
			}
		}
	}

	if kind == "" || !w.match.matchString(filepath.Base(event.Name)) {
		return nil
	}
	return handler(ctx, WatchResult{Event: kind, Info: info})
}

// Close releases the underlying watches.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

// Watch monitors root until ctx is done.
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	w, err := NewWatcher(ctx, root, opts)
	if err != nil {
		return err
	}
	defer w.Close()
	return w.Run(ctx, handler)
}

func infoFromFileInfo(path string, fi os.FileInfo) Info {
	st := statFromModTime(fi)
	return Info{
		Path:           path,
		Size:           st.size,
		Attributes:     st.attrs,
		CreationTime:   st.created,
		LastAccessTime: st.accessed,
		LastWriteTime:  st.written,
	}
}
