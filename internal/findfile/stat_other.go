//go:build !linux && !windows

package findfile

import "io/fs"

func statFromInfo(info fs.FileInfo) entryStat {
	return statFromModTime(info)
}
