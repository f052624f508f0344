package findfile

// The engine is written against a small unexported reader surface that each
// platform backend supplies through build-tagged files:
//
//   - Linux:        reader_linux.go (openat + getdents64 + statx)
//   - Everything else: reader_portable.go ((*os.File).ReadDir)
//
// A reader is one native enumeration session over a single directory. It
// applies the session pattern itself, the way FindFirstFile filters at the
// OS level, so non-matching subdirectories are invisible to a filtered
// session. It never yields "." or "..".
//
// name() aliases reader-owned memory and is valid until the next call to
// next(). stat() is lazy and cached per entry; it must be called before
// next() advances. close() is idempotent.

var (
	_ func(*dirReader, []byte, *matcher) error = (*dirReader).open
	_ func(*dirReader) (bool, error)           = (*dirReader).next
	_ func(*dirReader) []byte                  = (*dirReader).name
	_ func(*dirReader) bool                    = (*dirReader).isDir
	_ func(*dirReader) (entryStat, error)      = (*dirReader).stat
	_ func(*dirReader) error                   = (*dirReader).close
)
