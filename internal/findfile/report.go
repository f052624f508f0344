package findfile

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// StorageReport summarizes what a Finder reports.
type StorageReport struct {
	TotalSize    int64                // Total size in bytes
	FileCount    int                  // Total number of files
	DirCount     int                  // Total number of directories
	HiddenCount  int                  // Entries carrying AttrHidden
	TypeStats    map[string]TypeStats // Statistics by lower-cased extension
	LargestFiles []Info               // Largest files, biggest first
}

// TypeStats holds statistics for a file type.
type TypeStats struct {
	Count int   // Number of files
	Size  int64 // Total size in bytes
}

const noExtension = "(no extension)"

// Summarize runs f and builds a StorageReport, keeping the top largest files.
func Summarize(ctx context.Context, f *Finder, top int) (*StorageReport, error) {
	r := &StorageReport{TypeStats: make(map[string]TypeStats)}
	err := f.Find(ctx, func(e *Entry) error {
		if e.IsHidden() {
			r.HiddenCount++
		}
		if e.IsDir() {
			r.DirCount++
			return nil
		}
		size := e.Size()
		r.FileCount++
		r.TotalSize += size

		ext := strings.ToLower(e.Ext())
		if ext == "" {
			ext = noExtension
		}
		stats := r.TypeStats[ext]
		stats.Count++
		stats.Size += size
		r.TypeStats[ext] = stats

		if top > 0 {
			r.keepLargest(e, size, top)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

// keepLargest inserts e into the descending LargestFiles list, dropping the
// smallest once the list holds top entries.
func (r *StorageReport) keepLargest(e *Entry, size int64, top int) {
	if len(r.LargestFiles) == top && r.LargestFiles[top-1].Size >= size {
		return
	}
	i := sort.Search(len(r.LargestFiles), func(i int) bool {
		return r.LargestFiles[i].Size < size
	})
	r.LargestFiles = append(r.LargestFiles, Info{})
	copy(r.LargestFiles[i+1:], r.LargestFiles[i:])
	r.LargestFiles[i] = e.Info()
	if len(r.LargestFiles) > top {
		r.LargestFiles = r.LargestFiles[:top]
	}
}

// String returns a string representation of the report.
func (r *StorageReport) String() string {
	var sb strings.Builder

	sb.WriteString("Storage Report:\n")
	sb.WriteString(fmt.Sprintf("Total Size: %d bytes\n", r.TotalSize))
	sb.WriteString(fmt.Sprintf("Files: %d\n", r.FileCount))
	sb.WriteString(fmt.Sprintf("Directories: %d\n", r.DirCount))
	sb.WriteString(fmt.Sprintf("Hidden: %d\n", r.HiddenCount))

	if len(r.TypeStats) > 0 {
		exts := make([]string, 0, len(r.TypeStats))
		for ext := range r.TypeStats {
			exts = append(exts, ext)
		}
		sort.Strings(exts)
		sb.WriteString("\nBy Type:\n")
		for _, ext := range exts {
			s := r.TypeStats[ext]
			sb.WriteString(fmt.Sprintf("%s: %d files, %d bytes\n", ext, s.Count, s.Size))
		}
	}

	if len(r.LargestFiles) > 0 {
		sb.WriteString("\nLargest Files:\n")
		for _, fi := range r.LargestFiles {
			sb.WriteString(fmt.Sprintf("  %s (%d bytes)\n", fi.Path, fi.Size))
		}
	}
	return sb.String()
}
