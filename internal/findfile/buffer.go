package findfile

import (
	"fmt"
	"os"
	"strings"
)

// initialBufferSize is the starting capacity of a path buffer; it doubles on
// demand up to the configured limit.
const initialBufferSize = 512

// pathBuffer holds the absolute path of the entry being visited. One buffer
// serves a whole walk: segments are written in place at a cursor and later
// overwritten by siblings, so nothing is copied per entry.
//
// Layout: [0, prefixLen) long-path marker, [prefixLen, rootLen) root ending in
// a separator, [rootLen, cursor) the segments of the current depth.
type pathBuffer struct {
	buf       []byte
	limit     int
	prefixLen int
	rootLen   int
}

func newPathBuffer(limit int) *pathBuffer {
	return &pathBuffer{
		buf:   make([]byte, min(limit, initialBufferSize)+1),
		limit: limit,
	}
}

// setRoot writes the normalized root. root must already be absolute.
func (b *pathBuffer) setRoot(root string) error {
	var sb strings.Builder
	if longPathPrefix != "" && !strings.HasPrefix(root, `\\`) {
		sb.WriteString(longPathPrefix)
	}
	sb.WriteString(root)
	if !os.IsPathSeparator(root[len(root)-1]) {
		sb.WriteByte(os.PathSeparator)
	}
	value := sb.String()

	if err := b.reserve(len(value)); err != nil {
		return fmt.Errorf("root %q: %w", root, err)
	}
	copy(b.buf, value)
	b.rootLen = len(value)
	b.prefixLen = 0
	if longPathPrefix != "" && strings.HasPrefix(value, longPathPrefix) {
		b.prefixLen = len(longPathPrefix)
	}
	return nil
}

// reserve makes sure n path bytes plus a NUL terminator fit, growing the
// buffer if the limit allows.
func (b *pathBuffer) reserve(n int) error {
	if n > b.limit {
		return ErrPathTooLong
	}
	if n+1 <= len(b.buf) {
		return nil
	}
	size := len(b.buf)
	for size < n+1 {
		size *= 2
	}
	grown := make([]byte, min(size, b.limit+1))
	copy(grown, b.buf)
	b.buf = grown
	return nil
}

// appendName writes name at cursor and returns the new cursor.
func (b *pathBuffer) appendName(cursor int, name []byte) (int, error) {
	end := cursor + len(name)
	if err := b.reserve(end); err != nil {
		return cursor, err
	}
	copy(b.buf[cursor:], name)
	return end, nil
}

// appendSeparator terminates a directory segment so children can be
// appended after it.
func (b *pathBuffer) appendSeparator(cursor int) (int, error) {
	if err := b.reserve(cursor + 1); err != nil {
		return cursor, err
	}
	b.buf[cursor] = os.PathSeparator
	return cursor + 1, nil
}

// cstring returns the buffer contents up to cursor followed by a NUL, for
// passing directly to system calls. The slice aliases the buffer.
func (b *pathBuffer) cstring(cursor int) []byte {
	b.buf[cursor] = 0
	return b.buf[:cursor+1]
}

// bytes returns the path up to cursor without the long-path marker.
func (b *pathBuffer) bytes(cursor int) []byte {
	return b.buf[b.prefixLen:cursor]
}

// root returns the normalized root without the long-path marker.
func (b *pathBuffer) root() string {
	return string(b.buf[b.prefixLen:b.rootLen])
}
