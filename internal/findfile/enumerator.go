package findfile

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/karrick/godirwalk"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// ErrAllEnumeratorsFailed is returned by ChainEnumerator when no enumerator
// succeeded.
var ErrAllEnumeratorsFailed = errors.New("findfile: all file enumerators failed")

// FileEnumerator lists the files under root, recursively, whose names match
// pattern. Paths are absolute. Implementations agree on the set of paths,
// not on their order.
type FileEnumerator interface {
	EnumerateFiles(ctx context.Context, root, pattern string) ([]string, error)
}

// NativeEnumerator is a FileEnumerator backed by Finder.
type NativeEnumerator struct {
	MaxPathLength       int
	RaiseOnAccessDenied bool
	Logger              *zap.Logger
}

func (n NativeEnumerator) EnumerateFiles(ctx context.Context, root, pattern string) ([]string, error) {
	opts := NewOptions(root)
	if pattern != "" {
		opts.Pattern = pattern
	}
	opts.IncludeFolders = false
	opts.MaxPathLength = n.MaxPathLength
	opts.RaiseOnAccessDenied = n.RaiseOnAccessDenied
	opts.Logger = n.Logger

	f, err := New(opts)
	if err != nil {
		return nil, err
	}
	var files []string
	err = f.Find(ctx, func(e *Entry) error {
		files = append(files, e.Path())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

// WalkEnumerator is a FileEnumerator built on godirwalk. It does not share
// the path buffer machinery and serves as a fallback.
type WalkEnumerator struct {
	Logger *zap.Logger
}

func (w WalkEnumerator) EnumerateFiles(ctx context.Context, root, pattern string) ([]string, error) {
	if pattern == "" {
		pattern = starPattern
	}
	if root == "" {
		return nil, fmt.Errorf("%w: empty root directory", ErrInvalidArgument)
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	m := newMatcher(pattern)

	var files []string
	err = godirwalk.Walk(abs, &godirwalk.Options{
		Unsorted: true,
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if de.IsDir() || path == abs {
				return nil
			}
			if m.matchString(de.Name()) {
				files = append(files, path)
			}
			return nil
		},
		ErrorCallback: func(path string, err error) godirwalk.ErrorAction {
			if classify(err) != classFatal {
				logger.Debug("skipping path", zap.String("path", path), zap.Error(err))
				return godirwalk.SkipNode
			}
			return godirwalk.Halt
		},
	})
	if err != nil {
		if classify(err) == classNotFound {
			return nil, nil
		}
		return nil, err
	}
	return files, nil
}

// ChainEnumerator tries each enumerator in turn and returns the first
// successful result.
type ChainEnumerator struct {
	Enumerators []FileEnumerator
	Logger      *zap.Logger
}

func (c ChainEnumerator) EnumerateFiles(ctx context.Context, root, pattern string) ([]string, error) {
	logger := c.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	var errs error
	for _, en := range c.Enumerators {
		files, err := en.EnumerateFiles(ctx, root, pattern)
		if err == nil {
			return files, nil
		}
		logger.Info("file enumerator failed",
			zap.String("enumerator", fmt.Sprintf("%T", en)),
			zap.String("root", root),
			zap.Error(err),
		)
		errs = multierr.Append(errs, err)
		if ctx.Err() != nil {
			break
		}
	}
	if errs == nil {
		return nil, ErrAllEnumeratorsFailed
	}
	return nil, fmt.Errorf("%w: %w", ErrAllEnumeratorsFailed, errs)
}

// DefaultEnumerator prefers the native engine and falls back to godirwalk.
func DefaultEnumerator(logger *zap.Logger) FileEnumerator {
	return ChainEnumerator{
		Enumerators: []FileEnumerator{
			NativeEnumerator{Logger: logger},
			WalkEnumerator{Logger: logger},
		},
		Logger: logger,
	}
}
