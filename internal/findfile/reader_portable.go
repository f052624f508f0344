//go:build !linux

package findfile

import (
	"io"
	"io/fs"
	"os"
)

const readDirBatchSize = 256

// dirReader enumerates with (*os.File).ReadDir on platforms without a
// syscall-level backend.
type dirReader struct {
	f    *os.File
	dir  string
	m    *matcher
	ents []fs.DirEntry
	done bool

	cur     fs.DirEntry
	curName []byte

	st       entryStat
	statErr  error
	statDone bool
}

func (r *dirReader) open(path []byte, m *matcher) error {
	r.dir = string(path[:len(path)-1])
	r.m = m
	r.ents = r.ents[:0]
	r.done = false
	f, err := os.Open(r.dir)
	if err != nil {
		r.f = nil
		return &NativeError{Op: "open", Path: r.dir, Err: underlying(err)}
	}
	r.f = f
	return nil
}

func (r *dirReader) next() (bool, error) {
	for {
		if len(r.ents) == 0 {
			if r.done {
				return false, nil
			}
			ents, err := r.f.ReadDir(readDirBatchSize)
			r.ents = ents
			if err == io.EOF || (err == nil && len(ents) == 0) {
				r.done = true
			} else if err != nil {
				return false, &NativeError{Op: "read", Path: r.dir, Err: underlying(err)}
			}
			if len(r.ents) == 0 {
				return false, nil
			}
		}

		de := r.ents[0]
		r.ents = r.ents[1:]
		r.curName = append(r.curName[:0], de.Name()...)
		if isDotEntry(r.curName) || !r.m.match(r.curName) {
			continue
		}
		r.cur = de
		r.statDone = false
		return true, nil
	}
}

func (r *dirReader) name() []byte { return r.curName }

func (r *dirReader) isDir() bool { return r.cur.Type().IsDir() }

func (r *dirReader) stat() (entryStat, error) {
	if r.statDone {
		return r.st, r.statErr
	}
	r.statDone = true
	info, err := r.cur.Info()
	if err != nil {
		r.st, r.statErr = entryStat{}, &NativeError{Op: "stat", Path: r.dir + string(os.PathSeparator) + r.cur.Name(), Err: underlying(err)}
		return r.st, r.statErr
	}
	r.st, r.statErr = statFromInfo(info), nil
	return r.st, nil
}

func (r *dirReader) close() error {
	if r.f == nil {
		return nil
	}
	f := r.f
	r.f = nil
	r.cur = nil
	if err := f.Close(); err != nil {
		return &NativeError{Op: "close", Path: r.dir, Err: underlying(err)}
	}
	return nil
}

// underlying strips the *fs.PathError so NativeError carries the bare code.
func underlying(err error) error {
	if pe, ok := err.(*fs.PathError); ok {
		return pe.Err
	}
	return err
}
