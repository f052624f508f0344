package findfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

const (
	// MinPathLength is the smallest accepted path buffer, the classic
	// Windows MAX_PATH.
	MinPathLength = 260

	// MaxPathLimit is the largest accepted path buffer (1 MiB).
	MaxPathLimit = 1 << 20

	// DefaultMaxPathLength is used when Options.MaxPathLength is zero.
	DefaultMaxPathLength = 4096
)

// Options configures a Finder. It is copied and validated by New and cannot
// change afterwards.
type Options struct {
	Root                string      // Directory to enumerate
	Pattern             string      // '*' and '?' glob, case-insensitive
	Recursive           bool        // Descend into subdirectories
	IncludeFiles        bool        // Report files
	IncludeFolders      bool        // Report folders
	RaiseOnAccessDenied bool        // Fail instead of skipping unreadable directories
	MaxPathLength       int         // Path buffer capacity in bytes, clamped to [MinPathLength, MaxPathLimit]
	Logger              *zap.Logger // Optional; defaults to a no-op logger
}

// NewOptions returns options that recursively report every file and folder
// under root.
func NewOptions(root string) Options {
	return Options{
		Root:           root,
		Pattern:        starPattern,
		Recursive:      true,
		IncludeFiles:   true,
		IncludeFolders: true,
		MaxPathLength:  DefaultMaxPathLength,
	}
}

// normalize validates o and returns the copy a Finder runs with.
func (o Options) normalize() (Options, error) {
	if o.Root == "" {
		return o, fmt.Errorf("%w: empty root directory", ErrInvalidArgument)
	}
	if strings.ContainsAny(o.Root, invalidPathChars) {
		return o, fmt.Errorf("%w: invalid characters in path %q", ErrInvalidArgument, o.Root)
	}

	pattern := strings.TrimLeft(o.Pattern, string(os.PathSeparator)+"/")
	if pattern == "" {
		return o, fmt.Errorf("%w: empty pattern", ErrInvalidArgument)
	}
	if strings.ContainsAny(pattern, invalidPatternChars) {
		return o, fmt.Errorf("%w: invalid characters in pattern %q", ErrInvalidArgument, o.Pattern)
	}
	o.Pattern = pattern

	root, err := filepath.Abs(o.Root)
	if err != nil {
		return o, fmt.Errorf("%w: %v", ErrInvalidArgument, err)
	}
	o.Root = root

	switch {
	case o.MaxPathLength == 0:
		o.MaxPathLength = DefaultMaxPathLength
	case o.MaxPathLength < MinPathLength:
		o.MaxPathLength = MinPathLength
	case o.MaxPathLength > MaxPathLimit:
		o.MaxPathLength = MaxPathLimit
	}

	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o, nil
}
