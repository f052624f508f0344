//go:build linux

package findfile

import (
	"encoding/binary"
	"errors"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// linux_dirent64 field offsets.
const (
	direntReclenOffset = 16
	direntTypeOffset   = 18
	direntNameOffset   = 19

	direntBufferSize = 32 * 1024

	// atFDCWD is AT_FDCWD (-100) as a uintptr for raw syscalls.
	atFDCWD = ^uintptr(0) - 99
)

var errInvalidDirent = errors.New("invalid dirent")

type dirReader struct {
	fd   int
	dir  []byte
	m    *matcher
	buf  []byte
	data []byte

	cur []byte
	typ byte

	st       entryStat
	statErr  error
	statDone bool
}

// open starts a session. path must be NUL-terminated.
func (r *dirReader) open(path []byte, m *matcher) error {
	r.dir = path[:len(path)-1]
	r.m = m
	r.data = nil
	if r.buf == nil {
		r.buf = make([]byte, direntBufferSize)
	}
	for {
		fd, _, errno := unix.Syscall6(
			unix.SYS_OPENAT,
			atFDCWD,
			uintptr(unsafe.Pointer(&path[0])),
			uintptr(unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC|unix.O_LARGEFILE),
			0, 0, 0,
		)
		if errno == unix.EINTR {
			continue
		}
		if errno != 0 {
			r.fd = -1
			return &NativeError{Op: "open", Path: string(r.dir), Err: errno}
		}
		r.fd = int(fd)
		return nil
	}
}

func (r *dirReader) next() (bool, error) {
	for {
		if len(r.data) == 0 {
			n, err := r.fill()
			if err != nil || n == 0 {
				return false, err
			}
		}

		if len(r.data) < direntNameOffset {
			return false, &NativeError{Op: "read", Path: string(r.dir), Err: errInvalidDirent}
		}
		reclen := int(binary.NativeEndian.Uint16(r.data[direntReclenOffset:]))
		if reclen < direntNameOffset || reclen > len(r.data) {
			return false, &NativeError{Op: "read", Path: string(r.dir), Err: errInvalidDirent}
		}
		rec := r.data[:reclen]
		r.data = r.data[reclen:]

		name := rec[direntNameOffset:]
		for i, c := range name {
			if c == 0 {
				name = name[:i]
				break
			}
		}
		if len(name) == 0 || isDotEntry(name) || !r.m.match(name) {
			continue
		}

		r.cur = name
		r.typ = rec[direntTypeOffset]
		r.statDone = false
		if r.typ == unix.DT_UNKNOWN {
			if st, err := r.stat(); err == nil {
				r.typ = typeFromAttrs(st.attrs)
			}
		}
		return true, nil
	}
}

func (r *dirReader) fill() (int, error) {
	for {
		n, err := syscall.ReadDirent(r.fd, r.buf)
		if err == syscall.EINTR {
			continue
		}
		if err != nil {
			return 0, &NativeError{Op: "read", Path: string(r.dir), Err: err}
		}
		if n <= 0 {
			return 0, nil
		}
		r.data = r.buf[:n]
		return n, nil
	}
}

func (r *dirReader) name() []byte { return r.cur }

func (r *dirReader) isDir() bool { return r.typ == unix.DT_DIR }

// stat reads the metadata of the current entry relative to the open
// directory. The name passed to statx points straight into the dirent
// buffer, whose record is NUL-terminated.
func (r *dirReader) stat() (entryStat, error) {
	if r.statDone {
		return r.st, r.statErr
	}
	r.statDone = true
	r.st, r.statErr = entryStat{}, nil

	var stx unix.Statx_t
	for {
		_, _, errno := unix.Syscall6(
			unix.SYS_STATX,
			uintptr(r.fd),
			uintptr(unsafe.Pointer(&r.cur[0])),
			uintptr(unix.AT_SYMLINK_NOFOLLOW|unix.AT_STATX_SYNC_AS_STAT),
			uintptr(unix.STATX_BASIC_STATS|unix.STATX_BTIME),
			uintptr(unsafe.Pointer(&stx)),
			0,
		)
		if errno == unix.EINTR {
			continue
		}
		if errno == unix.ENOSYS {
			return r.fstatat()
		}
		if errno != 0 {
			r.statErr = &NativeError{Op: "stat", Path: string(r.dir) + string(r.cur), Err: errno}
			return r.st, r.statErr
		}
		break
	}

	r.st = entryStat{
		size:     int64(stx.Size),
		attrs:    attrsFromMode(uint32(stx.Mode), r.cur),
		accessed: statxTime(stx.Atime),
		written:  statxTime(stx.Mtime),
		created:  statxTime(stx.Ctime),
	}
	if stx.Mask&unix.STATX_BTIME != 0 {
		r.st.created = statxTime(stx.Btime)
	}
	supported := stx.Attributes & stx.Attributes_mask
	if supported&unix.STATX_ATTR_COMPRESSED != 0 {
		r.st.attrs |= AttrCompressed
	}
	if supported&unix.STATX_ATTR_ENCRYPTED != 0 {
		r.st.attrs |= AttrEncrypted
	}
	return r.st, nil
}

// fstatat serves kernels older than 4.11, which lack statx.
func (r *dirReader) fstatat() (entryStat, error) {
	var st unix.Stat_t
	for {
		err := unix.Fstatat(r.fd, string(r.cur), &st, unix.AT_SYMLINK_NOFOLLOW)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			r.statErr = &NativeError{Op: "stat", Path: string(r.dir) + string(r.cur), Err: err}
			return r.st, r.statErr
		}
		break
	}
	r.st = entryStat{
		size:     st.Size,
		attrs:    attrsFromMode(st.Mode, r.cur),
		accessed: time.Unix(st.Atim.Unix()).UTC(),
		written:  time.Unix(st.Mtim.Unix()).UTC(),
		created:  time.Unix(st.Ctim.Unix()).UTC(),
	}
	return r.st, nil
}

func (r *dirReader) close() error {
	if r.fd < 0 {
		return nil
	}
	fd := r.fd
	r.fd = -1
	r.cur = nil
	if err := syscall.Close(fd); err != nil {
		return &NativeError{Op: "close", Path: string(r.dir), Err: err}
	}
	return nil
}

func statxTime(ts unix.StatxTimestamp) time.Time {
	return time.Unix(ts.Sec, int64(ts.Nsec)).UTC()
}

func typeFromAttrs(a Attr) byte {
	switch {
	case a&AttrReparsePoint != 0:
		return unix.DT_LNK
	case a&AttrDirectory != 0:
		return unix.DT_DIR
	default:
		return unix.DT_REG
	}
}

func attrsFromMode(mode uint32, name []byte) Attr {
	var a Attr
	switch mode & unix.S_IFMT {
	case unix.S_IFDIR:
		a |= AttrDirectory
	case unix.S_IFLNK:
		a |= AttrReparsePoint
	}
	if mode&0o222 == 0 {
		a |= AttrReadOnly
	}
	if len(name) > 0 && name[0] == '.' {
		a |= AttrHidden
	}
	return a
}
