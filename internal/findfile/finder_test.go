package findfile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

var sampleTree = []string{
	"a.txt",
	"b.log",
	".hidden",
	"src/",
	"src/main.go",
	"src/util/",
	"src/util/helper.go",
	"src/util/notes.txt",
	"docs/",
	"docs/readme.md",
	"empty/",
}

func TestFindDirectFilesOnly(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	opts := NewOptions(root)
	opts.Recursive = false
	opts.IncludeFolders = false

	got := collect(t, opts)
	want := []string{".hidden", "a.txt", "b.log"}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFindDirectFoldersOnly(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	opts := NewOptions(root)
	opts.Recursive = false
	opts.IncludeFiles = false

	got := collect(t, opts)
	want := []string{"docs/", "empty/", "src/"}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFindRecursiveReportsEverythingOnce(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	got := collect(t, NewOptions(root))
	want := []string{
		".hidden", "a.txt", "b.log",
		"docs/", "docs/readme.md",
		"empty/",
		"src/", "src/main.go", "src/util/", "src/util/helper.go", "src/util/notes.txt",
	}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFindTwoPassReachesNonMatchingDirectories(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a/b/x.txt", "a/y.log", "z.cfg")

	opts := NewOptions(root)
	opts.Pattern = "*.txt"

	got := collect(t, opts)
	want := []string{"a/b/x.txt"}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFindTwoPassMatchingDirectoryVisitedOnce(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "q.txt/w.txt", "q.txt/deeper/v.txt", "other/u.txt")

	opts := NewOptions(root)
	opts.Pattern = "*.txt"

	got := collect(t, opts)
	want := []string{"other/u.txt", "q.txt/", "q.txt/deeper/v.txt", "q.txt/w.txt"}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFindWildAndFilteredWalksAgree(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)
	buildTree(t, root, "deep/er/still/n.TXT", "deep/x.txt/")

	for _, pattern := range []string{"*.txt", "*.go", "?.*", "*e*"} {
		t.Run(pattern, func(t *testing.T) {
			m := newMatcher(pattern)
			var want []string
			for _, p := range collect(t, NewOptions(root)) {
				if m.matchString(filepath.Base(strings.TrimSuffix(p, "/"))) {
					want = append(want, p)
				}
			}

			opts := NewOptions(root)
			opts.Pattern = pattern
			got := collect(t, opts)
			if !equalStrings(got, want) {
				t.Errorf("Expected %v, got %v", want, got)
			}
		})
	}
}

func TestFindStarDotStarIsWild(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	opts := NewOptions(root)
	opts.Pattern = "*.*"

	star := collect(t, NewOptions(root))
	got := collect(t, opts)
	if !equalStrings(got, star) {
		t.Errorf("Expected *.* to match everything: %v, got %v", star, got)
	}
}

func TestFindPatternIsCaseInsensitive(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "Web.Config", "sub/app.CONFIG", "sub/other.txt")

	opts := NewOptions(root)
	opts.Pattern = "*.config"
	opts.IncludeFolders = false

	got := collect(t, opts)
	want := []string{"Web.Config", "sub/app.CONFIG"}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
}

func TestFindStopFromVisitor(t *testing.T) {
	root := t.TempDir()
	for i := 0; i < 50; i++ {
		buildTree(t, root, filepath.Join("d", strings.Repeat("x", i%5+1), "f"+string(rune('a'+i%26))+".txt"))
	}

	f, err := New(NewOptions(root))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var count int
	err = f.Find(context.Background(), func(e *Entry) error {
		count++
		if count == 5 {
			return ErrStop
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Expected nil error after ErrStop, got %v", err)
	}
	if count != 5 {
		t.Errorf("Expected exactly 5 callbacks, got %d", count)
	}

	all, err := collectWith(f)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if len(all) <= 5 {
		t.Errorf("Expected the full run to report more than the stopped run, got %d", len(all))
	}
}

func TestFindContextCancellation(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	f, err := New(NewOptions(root))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var count int
	err = f.Find(ctx, func(e *Entry) error {
		count++
		cancel()
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 callback before cancellation, got %d", count)
	}
}

func TestFindVisitorErrorPropagates(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a/b/c/d.txt")

	f, err := New(NewOptions(root))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	customErr := errors.New("custom error")
	err = f.Find(context.Background(), func(e *Entry) error {
		if !e.IsDir() {
			return customErr
		}
		return nil
	})
	if !errors.Is(err, customErr) {
		t.Errorf("Expected custom error, got %v", err)
	}

	// Every session was released, so the Finder is reusable.
	if _, err := collectWith(f); err != nil {
		t.Errorf("Expected reuse to succeed, got %v", err)
	}
}

func TestFindPathTooLong(t *testing.T) {
	root := t.TempDir()
	const limit = 300
	rootLen := len(root) + 1
	dirLen := limit - rootLen - 1 - 100
	if dirLen < 1 || dirLen > 255 {
		t.Skipf("temp dir length %d unsuitable", len(root))
	}
	dir := strings.Repeat("d", dirLen)
	file := strings.Repeat("f", 100)
	buildTree(t, root, dir+"/"+file)

	opts := NewOptions(root)
	opts.MaxPathLength = limit
	got := collect(t, opts)
	if len(got) != 2 {
		t.Errorf("Expected 2 entries at exactly the limit, got %v", got)
	}

	opts.MaxPathLength = limit - 1
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = collectWith(f)
	if !errors.Is(err, ErrPathTooLong) {
		t.Errorf("Expected ErrPathTooLong, got %v", err)
	}
}

func TestFindAccessDenied(t *testing.T) {
	if runtime.GOOS == "windows" || os.Geteuid() == 0 {
		t.Skip("permission bits are not enforced here")
	}
	root := t.TempDir()
	buildTree(t, root, "open/a.txt", "locked/secret.txt", "z.txt")
	locked := filepath.Join(root, "locked")
	if err := os.Chmod(locked, 0o000); err != nil {
		t.Fatalf("Failed to chmod: %v", err)
	}
	t.Cleanup(func() { os.Chmod(locked, 0o755) })

	opts := NewOptions(root)
	got := collect(t, opts)
	want := []string{"locked/", "open/", "open/a.txt", "z.txt"}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	opts.RaiseOnAccessDenied = true
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	_, err = collectWith(f)
	if !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("Expected ErrAccessDenied, got %v", err)
	}
	var nerr *NativeError
	if !errors.As(err, &nerr) || nerr.Op != "open" {
		t.Errorf("Expected a NativeError from open, got %v", err)
	}
}

func TestFindMissingRootIsEmpty(t *testing.T) {
	opts := NewOptions(filepath.Join(t.TempDir(), "does", "not", "exist"))
	if got := collect(t, opts); len(got) != 0 {
		t.Errorf("Expected no entries, got %v", got)
	}
}

func TestFindIdempotent(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	f, err := New(NewOptions(root))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	snapshot := func() map[string]Info {
		out := make(map[string]Info)
		err := f.Find(context.Background(), func(e *Entry) error {
			out[e.Path()] = e.Info()
			return nil
		})
		if err != nil {
			t.Fatalf("Find failed: %v", err)
		}
		return out
	}

	first, second := snapshot(), snapshot()
	if len(first) != len(second) {
		t.Fatalf("Expected equal runs, got %d and %d entries", len(first), len(second))
	}
	for path, a := range first {
		b, ok := second[path]
		if !ok {
			t.Errorf("Missing %s in second run", path)
			continue
		}
		if a.Size != b.Size || a.Attributes != b.Attributes || !a.LastWriteTime.Equal(b.LastWriteTime) {
			t.Errorf("Entry %s differs: %+v vs %+v", path, a, b)
		}
	}
}

func TestFindReentrantCallIsRejected(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "a.txt")

	f, err := New(NewOptions(root))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var inner error
	err = f.Find(context.Background(), func(e *Entry) error {
		inner = f.Find(context.Background(), func(*Entry) error { return nil })
		return nil
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	if !errors.Is(inner, ErrBusy) {
		t.Errorf("Expected ErrBusy, got %v", inner)
	}
}

func TestEntryView(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, "sub/report.final.txt", "sub/.profile", "sub/noext")
	ro := filepath.Join(root, "sub", "noext")
	if err := os.Chmod(ro, 0o444); err != nil {
		t.Fatalf("Failed to chmod: %v", err)
	}
	before := time.Now().Add(-time.Minute)

	opts := NewOptions(root)
	opts.IncludeFolders = false
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	seen := make(map[string]Info)
	err = f.Find(context.Background(), func(e *Entry) error {
		if e.ParentPath() != filepath.Dir(e.Path()) {
			t.Errorf("ParentPath %q != %q", e.ParentPath(), filepath.Dir(e.Path()))
		}
		if e.Name() != filepath.Base(e.Path()) {
			t.Errorf("Name %q != %q", e.Name(), filepath.Base(e.Path()))
		}
		if e.Ext() != filepath.Ext(e.Path()) {
			t.Errorf("Ext %q != %q", e.Ext(), filepath.Ext(e.Path()))
		}
		if string(e.AppendPath(nil)) != e.Path() {
			t.Errorf("AppendPath mismatch for %s", e.Path())
		}
		if e.Err() != nil {
			t.Errorf("Unexpected metadata error: %v", e.Err())
		}
		if e.LastWriteTime().Before(before) || e.LastWriteTime().Location() != time.UTC {
			t.Errorf("Unexpected LastWriteTime %v", e.LastWriteTime())
		}
		seen[e.Name()] = e.Info()
		return nil
	})
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}

	txt := seen["report.final.txt"]
	if txt.Size != int64(len("sub/report.final.txt")) {
		t.Errorf("Expected size %d, got %d", len("sub/report.final.txt"), txt.Size)
	}
	if txt.Ext() != ".txt" || txt.IsDir() {
		t.Errorf("Unexpected info %+v", txt)
	}
	if runtime.GOOS != "windows" {
		if seen[".profile"].Attributes&AttrHidden == 0 {
			t.Errorf("Expected .profile to be hidden")
		}
	}
	if seen["noext"].Attributes&AttrReadOnly == 0 {
		t.Errorf("Expected noext to be read-only, got %v", seen["noext"].Attributes)
	}
}

func TestFindDoesNotFollowSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	buildTree(t, root, "real/inside.txt")
	if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
		t.Fatalf("Failed to create symlink: %v", err)
	}

	f, err := New(NewOptions(root))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	var reparse []string
	got, err := collectWith(f)
	if err != nil {
		t.Fatalf("Find failed: %v", err)
	}
	f.Find(context.Background(), func(e *Entry) error {
		if e.IsReparsePoint() {
			reparse = append(reparse, e.Name())
		}
		return nil
	})

	want := []string{"link", "real/", "real/inside.txt"}
	if !equalStrings(got, want) {
		t.Errorf("Expected %v, got %v", want, got)
	}
	if len(reparse) != 1 || reparse[0] != "link" {
		t.Errorf("Expected link to be a reparse point, got %v", reparse)
	}
}

func TestFinderAll(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	f, err := New(NewOptions(root))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	var n int
	for info, err := range f.All(context.Background()) {
		if err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
		if info.Path == "" {
			t.Fatalf("Empty path")
		}
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Errorf("Expected to stop after 3, got %d", n)
	}

	// Breaking out released the Finder.
	if _, err := collectWith(f); err != nil {
		t.Errorf("Expected reuse to succeed, got %v", err)
	}
}

func TestConvenienceEntryPoints(t *testing.T) {
	root := t.TempDir()
	buildTree(t, root, sampleTree...)

	tests := []struct {
		name string
		fn   func(context.Context, string, Visitor) error
		want int
	}{
		{"FilesIn", FilesIn, 3},
		{"FoldersIn", FoldersIn, 3},
		{"FilesAndFoldersIn", FilesAndFoldersIn, 6},
		{"AllFilesIn", AllFilesIn, 7},
		{"AllFoldersIn", AllFoldersIn, 4},
		{"AllFilesAndFoldersIn", AllFilesAndFoldersIn, 11},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n int
			err := tt.fn(context.Background(), root, func(*Entry) error {
				n++
				return nil
			})
			if err != nil {
				t.Fatalf("%s failed: %v", tt.name, err)
			}
			if n != tt.want {
				t.Errorf("Expected %d entries, got %d", tt.want, n)
			}
		})
	}
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Options)
		wantErr error
	}{
		{"empty root", func(o *Options) { o.Root = "" }, ErrInvalidArgument},
		{"empty pattern", func(o *Options) { o.Pattern = "" }, ErrInvalidArgument},
		{"separator only pattern", func(o *Options) { o.Pattern = string(os.PathSeparator) }, ErrInvalidArgument},
		{"nul in root", func(o *Options) { o.Root += "\x00x" }, ErrInvalidArgument},
		{"nul in pattern", func(o *Options) { o.Pattern = "a\x00*" }, ErrInvalidArgument},
		{"valid", func(o *Options) {}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := NewOptions(t.TempDir())
			tt.mutate(&opts)
			_, err := New(opts)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestNewNormalizesOptions(t *testing.T) {
	root := t.TempDir()

	opts := NewOptions(root)
	opts.Pattern = string(os.PathSeparator) + "*.txt"
	opts.MaxPathLength = 10
	f, err := New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := f.Options().Pattern; got != "*.txt" {
		t.Errorf("Expected leading separator trimmed, got %q", got)
	}
	if got := f.Options().MaxPathLength; got != MinPathLength {
		t.Errorf("Expected clamp to %d, got %d", MinPathLength, got)
	}
	if !strings.HasSuffix(f.Root(), string(os.PathSeparator)) {
		t.Errorf("Expected root with trailing separator, got %q", f.Root())
	}

	opts.MaxPathLength = MaxPathLimit * 2
	f, err = New(opts)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if got := f.Options().MaxPathLength; got != MaxPathLimit {
		t.Errorf("Expected clamp to %d, got %d", MaxPathLimit, got)
	}
}
