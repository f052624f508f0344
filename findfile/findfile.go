// Package findfile enumerates directory trees quickly, with one native
// listing session per directory and a single reused path buffer.
//
// Basic usage:
//
//	opts := findfile.NewOptions("/var/log")
//	opts.Pattern = "*.log"
//	f, err := findfile.New(opts)
//	if err != nil {
//		return err
//	}
//	err = f.Find(ctx, func(e *findfile.Entry) error {
//		fmt.Println(e.Path(), e.Size())
//		return nil
//	})
//
// An Entry is only valid inside the Visitor call; use Entry.Info to keep a
// copy. Return ErrStop from the Visitor to end the walk early.
package findfile

import (
	"context"
	"fmt"
	"io"

	internal "github.com/TFMV/findfile/internal/findfile"
	"go.uber.org/zap"
)

// Re-export the types of the internal package
type (
	// Options configures a Finder.
	Options = internal.Options

	// Finder runs enumerations for one fixed configuration.
	Finder = internal.Finder

	// Entry is the view of the current item handed to a Visitor.
	Entry = internal.Entry

	// Info is a detached copy of an Entry.
	Info = internal.Info

	// Visitor is called for every reported entry.
	Visitor = internal.Visitor

	// Attr is a set of file attribute flags.
	Attr = internal.Attr

	// NativeError records a failed directory-listing call.
	NativeError = internal.NativeError

	// Middleware wraps a Visitor.
	Middleware = internal.Middleware

	// Stats holds counters updated by StatsMiddleware.
	Stats = internal.Stats

	// ProgressFn receives Stats snapshots.
	ProgressFn = internal.ProgressFn

	// LogLevel defines the verbosity of logging.
	LogLevel = internal.LogLevel

	// StorageReport summarizes what a Finder reports.
	StorageReport = internal.StorageReport

	// TypeStats holds statistics for a file type.
	TypeStats = internal.TypeStats

	// FileEnumerator lists matching files under a root.
	FileEnumerator   = internal.FileEnumerator
	NativeEnumerator = internal.NativeEnumerator
	WalkEnumerator   = internal.WalkEnumerator
	ChainEnumerator  = internal.ChainEnumerator

	// Re-export watch types
	WatchEvent   = internal.WatchEvent
	WatchOptions = internal.WatchOptions
	WatchResult  = internal.WatchResult
	WatchHandler = internal.WatchHandler
	Watcher      = internal.Watcher
)

// Re-export all the constants
const (
	AttrReadOnly     = internal.AttrReadOnly
	AttrHidden       = internal.AttrHidden
	AttrSystem       = internal.AttrSystem
	AttrDirectory    = internal.AttrDirectory
	AttrReparsePoint = internal.AttrReparsePoint
	AttrCompressed   = internal.AttrCompressed
	AttrOffline      = internal.AttrOffline
	AttrEncrypted    = internal.AttrEncrypted

	MinPathLength        = internal.MinPathLength
	MaxPathLimit         = internal.MaxPathLimit
	DefaultMaxPathLength = internal.DefaultMaxPathLength

	// Log levels
	LogLevelError = internal.LogLevelError
	LogLevelWarn  = internal.LogLevelWarn
	LogLevelInfo  = internal.LogLevelInfo
	LogLevelDebug = internal.LogLevelDebug

	// Watch event constants
	EventCreate = internal.EventCreate
	EventModify = internal.EventModify
	EventDelete = internal.EventDelete
	EventRename = internal.EventRename
	EventChmod  = internal.EventChmod
)

// Errors, identical to the internal values so errors.Is works across both.
var (
	ErrInvalidArgument      = internal.ErrInvalidArgument
	ErrPathTooLong          = internal.ErrPathTooLong
	ErrAccessDenied         = internal.ErrAccessDenied
	ErrBusy                 = internal.ErrBusy
	ErrStop                 = internal.ErrStop
	ErrAllEnumeratorsFailed = internal.ErrAllEnumeratorsFailed
)

// NewOptions returns options that recursively report every file and folder
// under root.
func NewOptions(root string) Options {
	return internal.NewOptions(root)
}

// New validates opts and prepares a Finder.
func New(opts Options) (*Finder, error) {
	return internal.New(opts)
}

// FilesIn reports the files directly inside dir.
func FilesIn(ctx context.Context, dir string, visit Visitor) error {
	return internal.FilesIn(ctx, dir, visit)
}

// FoldersIn reports the folders directly inside dir.
func FoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return internal.FoldersIn(ctx, dir, visit)
}

// FilesAndFoldersIn reports everything directly inside dir.
func FilesAndFoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return internal.FilesAndFoldersIn(ctx, dir, visit)
}

// AllFilesIn reports every file under dir.
func AllFilesIn(ctx context.Context, dir string, visit Visitor) error {
	return internal.AllFilesIn(ctx, dir, visit)
}

// AllFoldersIn reports every folder under dir.
func AllFoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return internal.AllFoldersIn(ctx, dir, visit)
}

// AllFilesAndFoldersIn reports everything under dir.
func AllFilesAndFoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return internal.AllFilesAndFoldersIn(ctx, dir, visit)
}

// NewLogger creates a zap logger with the specified log level.
func NewLogger(level LogLevel) *zap.Logger {
	return internal.NewLogger(level)
}

// Chain applies middlewares so that the first one runs outermost.
func Chain(visit Visitor, mws ...Middleware) Visitor {
	return internal.Chain(visit, mws...)
}

// LoggingMiddleware logs every reported entry at debug level.
func LoggingMiddleware(logger *zap.Logger) Middleware {
	return internal.LoggingMiddleware(logger)
}

// StatsMiddleware counts reported entries into stats.
func StatsMiddleware(stats *Stats, interval int64, progress ProgressFn) Middleware {
	return internal.StatsMiddleware(stats, interval, progress)
}

// Summarize runs f and builds a StorageReport.
func Summarize(ctx context.Context, f *Finder, top int) (*StorageReport, error) {
	return internal.Summarize(ctx, f, top)
}

// FormatInfo replaces {}, {base}, {dir}, {ext}, {size}, {time} and {attrs}
// placeholders in template.
func FormatInfo(template string, info Info) string {
	return internal.FormatInfo(template, info)
}

// DefaultEnumerator prefers the native engine and falls back to godirwalk.
func DefaultEnumerator(logger *zap.Logger) FileEnumerator {
	return internal.DefaultEnumerator(logger)
}

// ParseWatchEvent maps a user-supplied event name to a WatchEvent.
func ParseWatchEvent(s string) (WatchEvent, error) {
	return internal.ParseWatchEvent(s)
}

// NewWatcher registers watches on root.
func NewWatcher(ctx context.Context, root string, opts WatchOptions) (*Watcher, error) {
	return internal.NewWatcher(ctx, root, opts)
}

// Watch monitors a directory for filesystem changes
func Watch(ctx context.Context, root string, opts WatchOptions, handler WatchHandler) error {
	return internal.Watch(ctx, root, opts, handler)
}

// WatchWithExec watches for filesystem changes and executes a command for each event
func WatchWithExec(ctx context.Context, root string, opts WatchOptions, cmdTemplate string, out io.Writer) error {
	return Watch(ctx, root, opts, func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			return result.Error
		}
		return internal.RunCommand(ctx, internal.FormatWatchResult(cmdTemplate, result), out)
	})
}

// WatchWithFormat watches for filesystem changes and formats output for each event
func WatchWithFormat(ctx context.Context, root string, opts WatchOptions, formatTemplate string, out io.Writer) error {
	return Watch(ctx, root, opts, func(ctx context.Context, result WatchResult) error {
		if result.Error != nil {
			return result.Error
		}
		_, err := fmt.Fprintln(out, internal.FormatWatchResult(formatTemplate, result))
		return err
	})
}

// FindWithExec runs cmdTemplate, formatted with FormatInfo, for every entry
// f reports.
func FindWithExec(ctx context.Context, f *Finder, cmdTemplate string, out io.Writer) error {
	return f.Find(ctx, func(e *Entry) error {
		return internal.RunCommand(ctx, internal.FormatInfo(cmdTemplate, e.Info()), out)
	})
}

// FindWithFormat prints every entry f reports using formatTemplate.
func FindWithFormat(ctx context.Context, f *Finder, formatTemplate string, out io.Writer) error {
	return f.Find(ctx, func(e *Entry) error {
		_, err := fmt.Fprintln(out, internal.FormatInfo(formatTemplate, e.Info()))
		return err
	})
}

// RunCommand splits cmdStr on white space, runs it and copies its standard
// output to out.
func RunCommand(ctx context.Context, cmdStr string, out io.Writer) error {
	return internal.RunCommand(ctx, cmdStr, out)
}
