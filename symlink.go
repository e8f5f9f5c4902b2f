package fsextender

import (
	"context"
	"os"
	"path/filepath"
	"syscall"

	"github.com/spf13/afero"
)

var (
	_ afero.Lstater    = (*FS)(nil)
	_ afero.Linker     = (*FS)(nil)
	_ afero.LinkReader = (*FS)(nil)
)

// lstat describes name without following a final symlink when the wrapped
// filesystem can do that, and falls back to Stat otherwise.
func (f *FS) lstat(name string) (os.FileInfo, error) {
	if l, ok := f.base.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return f.base.Stat(name)
}

// Lstat returns file info without following symlinks
func (f *FS) Lstat(name string) (os.FileInfo, error) {
	return f.lstat(name)
}

// LstatIfPossible implements afero.Lstater.
func (f *FS) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if l, ok := f.base.(afero.Lstater); ok {
		return l.LstatIfPossible(name)
	}
	info, err := f.base.Stat(name)
	return info, false, err
}

// Symlink creates newname as a symbolic link to oldname.
func (f *FS) Symlink(oldname, newname string) error {
	if l, ok := f.base.(afero.Linker); ok {
		return l.SymlinkIfPossible(oldname, newname)
	}
	return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: afero.ErrNoSymlink}
}

// SymlinkIfPossible implements afero.Linker.
func (f *FS) SymlinkIfPossible(oldname, newname string) error {
	return f.Symlink(oldname, newname)
}

// Readlink returns the destination of a symlink
func (f *FS) Readlink(name string) (string, error) {
	if l, ok := f.base.(afero.LinkReader); ok {
		return l.ReadlinkIfPossible(name)
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
}

// ReadlinkIfPossible implements afero.LinkReader.
func (f *FS) ReadlinkIfPossible(name string) (string, error) {
	return f.Readlink(name)
}

// Link creates newname as a hard link to oldname.
func (f *FS) Link(oldname, newname string) error {
	if l, ok := f.base.(linker); ok {
		return l.Link(oldname, newname)
	}
	return &os.LinkError{Op: "link", Old: oldname, New: newname, Err: ErrUnsupported}
}

// EnsureSymlink makes dst a symlink to target, creating missing parents. An
// existing symlink with the same target is left alone; anything else at dst
// fails with EEXIST.
func (f *FS) EnsureSymlink(target, dst string) error {
	info, err := f.lstat(dst)
	switch {
	case err == nil:
		if info.Mode()&os.ModeSymlink != 0 {
			if current, rerr := f.Readlink(dst); rerr == nil && samePath(dst, current, target) {
				return nil
			}
		}
		return &os.LinkError{Op: "ensuresymlink", Old: target, New: dst, Err: syscall.EEXIST}
	case !os.IsNotExist(err):
		return err
	}
	if err := f.base.MkdirAll(filepath.Dir(dst), 0o777); err != nil {
		return err
	}
	return f.Symlink(target, dst)
}

// EnsureSymlinkAsync is the asynchronous form of EnsureSymlink.
func (f *FS) EnsureSymlinkAsync(ctx context.Context, target, dst string) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.EnsureSymlink(target, dst)
	})
}

// samePath compares two symlink targets as seen from the link at link.
func samePath(link, a, b string) bool {
	resolve := func(p string) string {
		if !filepath.IsAbs(p) {
			p = filepath.Join(filepath.Dir(link), p)
		}
		return filepath.Clean(p)
	}
	return resolve(a) == resolve(b)
}
