//go:build windows

package findfile

import (
	"io/fs"
	"syscall"
	"time"
)

// Attr values mirror FILE_ATTRIBUTE_*, so the native bits carry over as is.
const nativeAttrMask = AttrReadOnly | AttrHidden | AttrSystem | AttrDirectory |
	AttrReparsePoint | AttrCompressed | AttrOffline | AttrEncrypted

func statFromInfo(info fs.FileInfo) entryStat {
	d, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return statFromModTime(info)
	}
	return entryStat{
		size:     int64(d.FileSizeHigh)<<32 | int64(d.FileSizeLow),
		attrs:    Attr(d.FileAttributes) & nativeAttrMask,
		created:  time.Unix(0, d.CreationTime.Nanoseconds()).UTC(),
		accessed: time.Unix(0, d.LastAccessTime.Nanoseconds()).UTC(),
		written:  time.Unix(0, d.LastWriteTime.Nanoseconds()).UTC(),
	}
}
