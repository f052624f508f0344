package findfile

import (
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// Attr is a set of file attribute flags. The values follow the Windows
// FILE_ATTRIBUTE_* bits; other platforms derive what they can.
type Attr uint32

const (
	AttrReadOnly     Attr = 0x0001
	AttrHidden       Attr = 0x0002
	AttrSystem       Attr = 0x0004
	AttrDirectory    Attr = 0x0010
	AttrReparsePoint Attr = 0x0400
	AttrCompressed   Attr = 0x0800
	AttrOffline      Attr = 0x1000
	AttrEncrypted    Attr = 0x4000
)

var attrNames = []struct {
	a    Attr
	name string
}{
	{AttrReadOnly, "readonly"},
	{AttrHidden, "hidden"},
	{AttrSystem, "system"},
	{AttrDirectory, "directory"},
	{AttrReparsePoint, "reparse"},
	{AttrCompressed, "compressed"},
	{AttrOffline, "offline"},
	{AttrEncrypted, "encrypted"},
}

func (a Attr) String() string {
	var parts []string
	for _, n := range attrNames {
		if a&n.a != 0 {
			parts = append(parts, n.name)
		}
	}
	if len(parts) == 0 {
		return "normal"
	}
	return strings.Join(parts, "|")
}

// entryStat is the metadata a backend reports for one raw entry.
type entryStat struct {
	size     int64
	attrs    Attr
	created  time.Time
	accessed time.Time
	written  time.Time
}

// Entry describes the entry currently being reported. It is a window into
// the walk's shared path buffer and open directory session: it is only valid
// during the Visitor call that received it. Use Info to keep a copy.
//
// Metadata (size, attributes, timestamps) is read on first access.
type Entry struct {
	buf       *pathBuffer
	r         *dirReader
	parentEnd int
	itemEnd   int
	dir       bool
}

func (e *Entry) set(buf *pathBuffer, r *dirReader, parentEnd, itemEnd int, dir bool) {
	e.buf, e.r, e.parentEnd, e.itemEnd, e.dir = buf, r, parentEnd, itemEnd, dir
}

// Path returns the absolute path of the entry.
func (e *Entry) Path() string { return string(e.buf.buf[e.buf.prefixLen:e.itemEnd]) }

// PathWithPrefix returns the absolute path including the long-path marker,
// if the platform uses one.
func (e *Entry) PathWithPrefix() string { return string(e.buf.buf[:e.itemEnd]) }

// AppendPath appends the absolute path to dst without an intermediate string.
func (e *Entry) AppendPath(dst []byte) []byte {
	return append(dst, e.buf.buf[e.buf.prefixLen:e.itemEnd]...)
}

// ParentPath returns the directory containing the entry, without a trailing
// separator unless it is a volume root.
func (e *Entry) ParentPath() string {
	p := e.buf.buf[e.buf.prefixLen:e.parentEnd]
	trimmed := string(p[:len(p)-1])
	if trimmed == "" || len(trimmed) == len(filepath.VolumeName(trimmed)) {
		return string(p)
	}
	return trimmed
}

// Name returns the final path element.
func (e *Entry) Name() string { return string(e.buf.buf[e.parentEnd:e.itemEnd]) }

// Ext returns the name suffix starting at the final dot, or "".
func (e *Entry) Ext() string {
	for i := e.itemEnd - 1; i >= e.parentEnd; i-- {
		if e.buf.buf[i] == '.' {
			return string(e.buf.buf[i:e.itemEnd])
		}
	}
	return ""
}

// IsDir reports whether the entry is a directory. Symbolic links and other
// reparse points are never directories here.
func (e *Entry) IsDir() bool { return e.dir }

func (e *Entry) stat() entryStat {
	st, _ := e.r.stat()
	if e.dir {
		st.attrs |= AttrDirectory
	}
	return st
}

// Err returns the error from reading the entry's metadata, if any. The walk
// itself is never aborted by it; metadata accessors return zero values.
func (e *Entry) Err() error {
	_, err := e.r.stat()
	return err
}

// Size returns the length in bytes.
func (e *Entry) Size() int64 { return e.stat().size }

// Attributes returns the entry's attribute flags.
func (e *Entry) Attributes() Attr { return e.stat().attrs }

func (e *Entry) IsReadOnly() bool     { return e.Attributes()&AttrReadOnly != 0 }
func (e *Entry) IsHidden() bool       { return e.Attributes()&AttrHidden != 0 }
func (e *Entry) IsSystem() bool       { return e.Attributes()&AttrSystem != 0 }
func (e *Entry) IsReparsePoint() bool { return e.Attributes()&AttrReparsePoint != 0 }
func (e *Entry) IsCompressed() bool   { return e.Attributes()&AttrCompressed != 0 }
func (e *Entry) IsOffline() bool      { return e.Attributes()&AttrOffline != 0 }
func (e *Entry) IsEncrypted() bool    { return e.Attributes()&AttrEncrypted != 0 }

// CreationTime returns the creation time in UTC. Where the filesystem does
// not record one, the inode change time is used instead.
func (e *Entry) CreationTime() time.Time { return e.stat().created }

// LastAccessTime returns the last access time in UTC.
func (e *Entry) LastAccessTime() time.Time { return e.stat().accessed }

// LastWriteTime returns the last modification time in UTC.
func (e *Entry) LastWriteTime() time.Time { return e.stat().written }

// Info copies the entry into a value that may be retained.
func (e *Entry) Info() Info {
	st := e.stat()
	return Info{
		Path:           e.Path(),
		Size:           st.size,
		Attributes:     st.attrs,
		CreationTime:   st.created,
		LastAccessTime: st.accessed,
		LastWriteTime:  st.written,
	}
}

// Info is an owned snapshot of an Entry.
type Info struct {
	Path           string
	Size           int64
	Attributes     Attr
	CreationTime   time.Time
	LastAccessTime time.Time
	LastWriteTime  time.Time
}

func (i Info) Name() string       { return filepath.Base(i.Path) }
func (i Info) Ext() string        { return filepath.Ext(i.Path) }
func (i Info) ParentPath() string { return filepath.Dir(i.Path) }
func (i Info) IsDir() bool        { return i.Attributes&AttrDirectory != 0 }

func isDotEntry(name []byte) bool {
	if len(name) == 1 && name[0] == '.' {
		return true
	}
	return len(name) == 2 && name[0] == '.' && name[1] == '.'
}

// statFromModTime is used when the platform exposes only the portable
// fs.FileInfo fields; all three timestamps collapse to the write time.
func statFromModTime(info fs.FileInfo) entryStat {
	var a Attr
	mode := info.Mode()
	switch {
	case mode.IsDir():
		a |= AttrDirectory
	case mode&fs.ModeSymlink != 0:
		a |= AttrReparsePoint
	}
	if mode.Perm()&0o222 == 0 {
		a |= AttrReadOnly
	}
	if name := info.Name(); len(name) > 0 && name[0] == '.' {
		a |= AttrHidden
	}
	t := info.ModTime().UTC()
	return entryStat{size: info.Size(), attrs: a, created: t, accessed: t, written: t}
}
