//go:build windows

package findfile

import (
	"errors"
	"syscall"
)

const longPathPrefix = `\\?\`

const (
	invalidPathChars    = "\"<>|\x00\x01\x02\x03\x04\x05\x06\x07\x08\x09\x0a\x0b\x0c\x0d\x0e\x0f\x10\x11\x12\x13\x14\x15\x16\x17\x18\x19\x1a\x1b\x1c\x1d\x1e\x1f"
	invalidPatternChars = invalidPathChars + `:\/`
)

// errorDirectory is ERROR_DIRECTORY, returned when the root names a file.
const errorDirectory syscall.Errno = 267

func isPlatformNotFound(err error) bool {
	return errors.Is(err, errorDirectory)
}
