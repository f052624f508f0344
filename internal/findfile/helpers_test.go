package findfile

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"
)

// buildTree creates the given slash-separated paths under root. Paths ending
// in "/" become directories, everything else a file holding its own name.
func buildTree(t testing.TB, root string, paths ...string) {
	t.Helper()
	for _, p := range paths {
		full := filepath.Join(root, filepath.FromSlash(p))
		if strings.HasSuffix(p, "/") {
			if err := os.MkdirAll(full, 0o755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", full, err)
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatalf("Failed to create directory for %s: %v", full, err)
		}
		if err := os.WriteFile(full, []byte(p), 0o644); err != nil {
			t.Fatalf("Failed to create file %s: %v", full, err)
		}
	}
}

// collect runs a Finder and returns the reported paths relative to root,
// slash-separated, folders suffixed with "/", sorted.
func collect(t testing.TB, opts Options) []string {
	t.Helper()
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	got, err := collectWith(f)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	return got
}

func collectWith(f *Finder) ([]string, error) {
	root := f.Root()
	var got []string
	err := f.Find(context.Background(), func(e *Entry) error {
		rel := filepath.ToSlash(strings.TrimPrefix(e.Path(), root))
		if e.IsDir() {
			rel += "/"
		}
		got = append(got, rel)
		return nil
	})
	sort.Strings(got)
	return got, err
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
