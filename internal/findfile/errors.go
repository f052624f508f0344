package findfile

import (
	"errors"
	"fmt"
	"io/fs"
	"syscall"
)

var (
	// ErrInvalidArgument is returned by New for an empty or malformed root or pattern.
	ErrInvalidArgument = errors.New("findfile: invalid argument")

	// ErrPathTooLong is returned when a composed path does not fit the path buffer.
	ErrPathTooLong = errors.New("findfile: path too long")

	// ErrAccessDenied matches a *NativeError caused by a permission failure.
	ErrAccessDenied = errors.New("findfile: access denied")

	// ErrBusy is returned when Find is called while another Find on the same
	// Finder is still running.
	ErrBusy = errors.New("findfile: find already in progress")

	// ErrStop may be returned by a Visitor to end the walk early. Find
	// returns nil in that case.
	ErrStop = errors.New("findfile: stop enumeration")
)

// NativeError records a failed directory-listing call.
type NativeError struct {
	Op   string // "open", "read", "stat" or "close"
	Path string
	Err  error // usually a syscall.Errno
}

func (e *NativeError) Error() string {
	return fmt.Sprintf("findfile: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *NativeError) Unwrap() error { return e.Err }

// Is reports ErrAccessDenied for permission failures so callers don't need
// to know the platform error codes.
func (e *NativeError) Is(target error) bool {
	return target == ErrAccessDenied && classify(e.Err) == classAccessDenied
}

// Code returns the underlying native error number, or 0 if unknown.
func (e *NativeError) Code() uintptr {
	var errno syscall.Errno
	if errors.As(e.Err, &errno) {
		return uintptr(errno)
	}
	return 0
}

type errorClass int

const (
	classFatal errorClass = iota
	classNotFound
	classAccessDenied
)

// classify maps a native failure onto the three handling categories.
func classify(err error) errorClass {
	switch {
	case err == nil:
		return classFatal
	case errors.Is(err, fs.ErrNotExist), errors.Is(err, syscall.ENOTDIR), isPlatformNotFound(err):
		return classNotFound
	case errors.Is(err, fs.ErrPermission):
		return classAccessDenied
	default:
		return classFatal
	}
}
