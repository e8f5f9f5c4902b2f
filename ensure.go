package fsextender

import (
	"context"
	"os"
	"path/filepath"
	"syscall"
)

// EnsureDir makes sure name is a directory, creating it and its parents if
// needed. An existing non-directory fails with EEXIST.
func (f *FS) EnsureDir(name string, perm os.FileMode) error {
	info, err := f.Stat(name)
	if err == nil {
		if info.IsDir() {
			return nil
		}
		return &os.PathError{Op: "ensuredir", Path: name, Err: syscall.EEXIST}
	}
	if !os.IsNotExist(err) {
		return err
	}
	return f.MkdirAll(name, perm)
}

// EnsureFile makes sure name is a regular file, creating an empty one and its
// parents if needed. Existing content is kept.
func (f *FS) EnsureFile(name string) error {
	info, err := f.Stat(name)
	if err == nil {
		if info.Mode().IsRegular() {
			return nil
		}
		return &os.PathError{Op: "ensurefile", Path: name, Err: syscall.EEXIST}
	}
	if !os.IsNotExist(err) {
		return err
	}
	if err := f.MkdirAll(filepath.Dir(name), 0o777); err != nil {
		return err
	}
	file, err := f.OpenFile(name, os.O_CREATE|os.O_WRONLY, 0o666)
	if err != nil {
		return err
	}
	return file.Close()
}

// EnsureLink makes dst a hard link to src. An existing dst that is already the
// same file is left alone.
func (f *FS) EnsureLink(src, dst string) error {
	srcInfo, err := f.lstat(src)
	if err != nil {
		return err
	}
	dstInfo, err := f.lstat(dst)
	switch {
	case err == nil:
		if os.SameFile(srcInfo, dstInfo) {
			return nil
		}
		return &os.LinkError{Op: "ensurelink", Old: src, New: dst, Err: syscall.EEXIST}
	case !os.IsNotExist(err):
		return err
	}
	if err := f.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return err
	}
	return f.Link(src, dst)
}

// EnsureDirAsync is the asynchronous form of EnsureDir.
func (f *FS) EnsureDirAsync(ctx context.Context, name string, perm os.FileMode) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.EnsureDir(name, perm)
	})
}

// EnsureFileAsync is the asynchronous form of EnsureFile.
func (f *FS) EnsureFileAsync(ctx context.Context, name string) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.EnsureFile(name)
	})
}

// EnsureLinkAsync is the asynchronous form of EnsureLink.
func (f *FS) EnsureLinkAsync(ctx context.Context, src, dst string) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.EnsureLink(src, dst)
	})
}
