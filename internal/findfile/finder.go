// Package findfile enumerates directory trees with one native listing session
// per directory and a single path buffer reused for the whole walk.
package findfile

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sync/atomic"

	"go.uber.org/zap"
)

// Visitor is called for every reported entry. Returning ErrStop ends the walk
// without error; any other error aborts it and is returned by Find.
type Visitor func(e *Entry) error

// Finder runs enumerations for one fixed configuration. A Finder owns its
// path buffer, so calls to Find must not overlap; a nested or concurrent
// call fails with ErrBusy.
type Finder struct {
	opts    Options
	logger  *zap.Logger
	wild    bool
	match   *matcher
	all     *matcher
	buf     *pathBuffer
	readers []*dirReader
	entry   Entry
	running atomic.Bool
}

// New validates opts and prepares a Finder.
func New(opts Options) (*Finder, error) {
	opts, err := opts.normalize()
	if err != nil {
		return nil, err
	}

	f := &Finder{
		opts:   opts,
		logger: opts.Logger,
		wild:   isWild(opts.Pattern),
		match:  newMatcher(opts.Pattern),
		all:    newMatcher(starPattern),
		buf:    newPathBuffer(opts.MaxPathLength),
	}
	if err := f.buf.setRoot(opts.Root); err != nil {
		return nil, err
	}
	return f, nil
}

// Options returns the normalized configuration.
func (f *Finder) Options() Options { return f.opts }

// Root returns the normalized root, ending in a separator.
func (f *Finder) Root() string { return f.buf.root() }

// Find walks the tree depth-first, calling visit for each matching entry.
//
// Missing directories are skipped silently, as are unreadable ones unless
// RaiseOnAccessDenied is set. Any other listing failure, a path exceeding
// MaxPathLength, a visitor error or ctx cancellation ends the walk with an
// error. Every directory session is closed before Find returns.
func (f *Finder) Find(ctx context.Context, visit Visitor) error {
	if visit == nil {
		return fmt.Errorf("%w: nil visitor", ErrInvalidArgument)
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if !f.running.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer f.running.Store(false)

	f.logger.Debug("starting find",
		zap.String("root", f.opts.Root),
		zap.String("pattern", f.opts.Pattern),
		zap.Bool("recursive", f.opts.Recursive),
	)

	w := walker{f: f, ctx: ctx, visit: visit}
	err := w.findIn(f.buf.rootLen, 0)
	if errors.Is(err, ErrStop) {
		f.logger.Debug("find stopped by visitor")
		return nil
	}
	return err
}

// All returns the matching entries as a sequence. Breaking out of the range
// loop stops the walk. A failure is delivered as the final element.
func (f *Finder) All(ctx context.Context) iter.Seq2[Info, error] {
	return func(yield func(Info, error) bool) {
		err := f.Find(ctx, func(e *Entry) error {
			if !yield(e.Info(), nil) {
				return ErrStop
			}
			return nil
		})
		if err != nil {
			yield(Info{}, err)
		}
	}
}

// walker carries the per-call state of one Find.
type walker struct {
	f     *Finder
	ctx   context.Context
	visit Visitor
}

// findIn enumerates the directory whose path occupies the buffer up to
// cursor. A non-wild recursive walk needs a second, unfiltered pass because
// the filtered session hides subdirectories whose names don't match.
func (w *walker) findIn(cursor, depth int) error {
	if err := w.scan(cursor, depth, w.f.match, false); err != nil {
		return err
	}
	if w.f.opts.Recursive && !w.f.wild {
		return w.scan(cursor, depth, w.f.all, true)
	}
	return nil
}

func (w *walker) reader(depth int) *dirReader {
	for len(w.f.readers) <= depth {
		w.f.readers = append(w.f.readers, &dirReader{})
	}
	return w.f.readers[depth]
}

// scan runs one listing session. With dirsOnly set it reports nothing and
// only descends into subdirectories.
func (w *walker) scan(cursor, depth int, m *matcher, dirsOnly bool) error {
	f := w.f
	r := w.reader(depth)
	if err := r.open(f.buf.cstring(cursor), m); err != nil {
		return w.nativeFailure(err)
	}
	defer func() {
		if err := r.close(); err != nil {
			f.logger.Debug("closing directory", zap.Error(err))
		}
	}()

	descend := f.opts.Recursive && (dirsOnly || f.wild)
	for {
		if err := w.ctx.Err(); err != nil {
			return err
		}
		ok, err := r.next()
		if err != nil {
			return w.nativeFailure(err)
		}
		if !ok {
			return nil
		}

		name := r.name()
		end, err := f.buf.appendName(cursor, name)
		if err != nil {
			return fmt.Errorf("%w: %s%s", err, f.buf.bytes(cursor), name)
		}
		isDir := r.isDir()

		if !dirsOnly && ((f.opts.IncludeFolders && isDir) || (f.opts.IncludeFiles && !isDir)) {
			f.entry.set(f.buf, r, cursor, end, isDir)
			if err := w.visit(&f.entry); err != nil {
				return err
			}
		}

		if descend && isDir {
			sub, err := f.buf.appendSeparator(end)
			if err != nil {
				return fmt.Errorf("%w: %s", err, f.buf.bytes(end))
			}
			if err := w.findIn(sub, depth+1); err != nil {
				return err
			}
		}
	}
}

// nativeFailure decides whether a listing error ends only this directory or
// the whole walk.
func (w *walker) nativeFailure(err error) error {
	switch classify(err) {
	case classNotFound:
		w.f.logger.Debug("skipping missing directory", zap.Error(err))
		return nil
	case classAccessDenied:
		if !w.f.opts.RaiseOnAccessDenied {
			w.f.logger.Debug("skipping unreadable directory", zap.Error(err))
			return nil
		}
	}
	return err
}
