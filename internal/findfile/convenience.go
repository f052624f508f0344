package findfile

import "context"

// FilesIn reports the files directly inside dir.
func FilesIn(ctx context.Context, dir string, visit Visitor) error {
	return findWith(ctx, dir, false, true, false, visit)
}

// FoldersIn reports the folders directly inside dir.
func FoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return findWith(ctx, dir, false, false, true, visit)
}

// FilesAndFoldersIn reports the files and folders directly inside dir.
func FilesAndFoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return findWith(ctx, dir, false, true, true, visit)
}

// AllFilesIn reports the files anywhere under dir.
func AllFilesIn(ctx context.Context, dir string, visit Visitor) error {
	return findWith(ctx, dir, true, true, false, visit)
}

// AllFoldersIn reports the folders anywhere under dir.
func AllFoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return findWith(ctx, dir, true, false, true, visit)
}

// AllFilesAndFoldersIn reports the files and folders anywhere under dir.
func AllFilesAndFoldersIn(ctx context.Context, dir string, visit Visitor) error {
	return findWith(ctx, dir, true, true, true, visit)
}

func findWith(ctx context.Context, dir string, recursive, files, folders bool, visit Visitor) error {
	opts := NewOptions(dir)
	opts.Recursive = recursive
	opts.IncludeFiles = files
	opts.IncludeFolders = folders
	f, err := New(opts)
	if err != nil {
		return err
	}
	return f.Find(ctx, visit)
}
