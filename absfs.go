package fsextender

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"syscall"
	"time"

	"github.com/absfs/absfs"
	"github.com/spf13/afero"
)

// absFSAdapter wraps FS to implement absfs.Filer with correct types. It keeps its
// own working directory, so absfs.ExtendFiler hands every name through unchanged
// and relative names are resolved here, including for RemoveAll and Truncate.
// Chdir is not safe for concurrent use with other calls.
type absFSAdapter struct {
	fs  *FS
	cwd string
}

// Ensure absFSAdapter implements absfs.Filer interface at compile time
var _ absfs.Filer = (*absFSAdapter)(nil)

// FileSystem returns an absfs.FileSystem view of this FS, starting in "/". Every
// call made through the view goes through the same retry and recovery paths,
// and RemoveAll uses the recursive remover.
//
// Example:
//
//	fsys := fsextender.NewOsFs().FileSystem()
//	fsys.Chdir("/srv/app")
//	err := fsys.RemoveAll("cache")
func (f *FS) FileSystem() absfs.FileSystem {
	return absfs.ExtendFiler(&absFSAdapter{fs: f, cwd: "/"})
}

// resolve joins a relative name onto the working directory.
func (a *absFSAdapter) resolve(name string) string {
	slashed := filepath.ToSlash(name)
	if !path.IsAbs(slashed) && !filepath.IsAbs(name) {
		slashed = path.Join(a.cwd, slashed)
	}
	return cleanPath(filepath.FromSlash(slashed))
}

// Chdir changes the working directory of this view only.
func (a *absFSAdapter) Chdir(dir string) error {
	name := a.resolve(dir)
	info, err := a.fs.Stat(name)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "chdir", Path: name, Err: syscall.ENOTDIR}
	}
	a.cwd = filepath.ToSlash(name)
	return nil
}

// Getwd returns the working directory of this view.
func (a *absFSAdapter) Getwd() (string, error) {
	return a.cwd, nil
}

// OpenFile implements absfs.Filer
func (a *absFSAdapter) OpenFile(name string, flag int, perm os.FileMode) (absfs.File, error) {
	file, err := a.fs.openFile(a.resolve(name), flag, perm)
	if err != nil {
		return nil, err
	}
	return file, nil
}

// Mkdir implements absfs.Filer
func (a *absFSAdapter) Mkdir(name string, perm os.FileMode) error {
	return a.fs.Mkdir(a.resolve(name), perm)
}

// MkdirAll creates a directory and all parent directories
func (a *absFSAdapter) MkdirAll(name string, perm os.FileMode) error {
	return a.fs.MkdirAll(a.resolve(name), perm)
}

// Remove implements absfs.Filer
func (a *absFSAdapter) Remove(name string) error {
	return a.fs.Remove(a.resolve(name))
}

// RemoveAll removes a tree with the recursive remover. The root is refused
// after resolution, so "." in "/" is refused too.
func (a *absFSAdapter) RemoveAll(name string) error {
	return a.fs.RemoveAll(a.resolve(name))
}

// Rename implements absfs.Filer
func (a *absFSAdapter) Rename(oldpath, newpath string) error {
	return a.fs.Rename(a.resolve(oldpath), a.resolve(newpath))
}

// Stat implements absfs.Filer
func (a *absFSAdapter) Stat(name string) (os.FileInfo, error) {
	return a.fs.Stat(a.resolve(name))
}

// Chmod implements absfs.Filer
func (a *absFSAdapter) Chmod(name string, mode os.FileMode) error {
	return a.fs.Chmod(a.resolve(name), mode)
}

// Chtimes implements absfs.Filer
func (a *absFSAdapter) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return a.fs.Chtimes(a.resolve(name), atime, mtime)
}

// Chown implements absfs.Filer
func (a *absFSAdapter) Chown(name string, uid, gid int) error {
	return a.fs.Chown(a.resolve(name), uid, gid)
}

// ReadDir implements absfs.Filer
func (a *absFSAdapter) ReadDir(name string) ([]fs.DirEntry, error) {
	infos, err := a.fs.ReadDir(a.resolve(name))
	if err != nil {
		return nil, err
	}
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	return entries, nil
}

// ReadFile implements absfs.Filer
func (a *absFSAdapter) ReadFile(name string) ([]byte, error) {
	return a.fs.ReadFile(a.resolve(name))
}

// Sub implements absfs.Filer
func (a *absFSAdapter) Sub(dir string) (fs.FS, error) {
	return absfs.FilerToFS(a, filepath.ToSlash(a.resolve(dir)))
}

// Lstat returns file info without following symlinks
func (a *absFSAdapter) Lstat(name string) (os.FileInfo, error) {
	return a.fs.Lstat(a.resolve(name))
}

// Lchown changes the ownership of a symlink
func (a *absFSAdapter) Lchown(name string, uid, gid int) error {
	return a.fs.Lchown(a.resolve(name), uid, gid)
}

// Readlink returns the destination of a symlink
func (a *absFSAdapter) Readlink(name string) (string, error) {
	return a.fs.Readlink(a.resolve(name))
}

// Symlink creates a symbolic link. The target is stored as given.
func (a *absFSAdapter) Symlink(oldname, newname string) error {
	return a.fs.Symlink(oldname, a.resolve(newname))
}

// Truncate changes the size of the named file
func (a *absFSAdapter) Truncate(name string, size int64) error {
	name = a.resolve(name)
	info, err := a.fs.Stat(name)
	if err != nil {
		return err
	}
	// Don't truncate directories
	if info.IsDir() {
		return &os.PathError{Op: "truncate", Path: name, Err: os.ErrInvalid}
	}

	file, err := a.fs.openFile(name, os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	if err := file.Truncate(size); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// absFSBridge presents an absfs.FileSystem as an afero.Fs so it can be wrapped
// by New.
type absFSBridge struct {
	fsys absfs.FileSystem
}

var (
	_ afero.Fs         = (*absFSBridge)(nil)
	_ afero.Lstater    = (*absFSBridge)(nil)
	_ afero.Linker     = (*absFSBridge)(nil)
	_ afero.LinkReader = (*absFSBridge)(nil)
)

// FromAbsFS adapts an absfs filesystem to afero.Fs.
//
// Example:
//
//	mfs, _ := memfs.NewFS()
//	f := fsextender.New(fsextender.FromAbsFS(mfs))
func FromAbsFS(fsys absfs.FileSystem) afero.Fs {
	return &absFSBridge{fsys: fsys}
}

func (b *absFSBridge) Name() string { return "absfs" }

func (b *absFSBridge) Create(name string) (afero.File, error) {
	return b.file(b.fsys.Create(name))
}

func (b *absFSBridge) Mkdir(name string, perm os.FileMode) error {
	return b.fsys.Mkdir(name, perm)
}

func (b *absFSBridge) MkdirAll(name string, perm os.FileMode) error {
	return b.fsys.MkdirAll(name, perm)
}

func (b *absFSBridge) Open(name string) (afero.File, error) {
	return b.file(b.fsys.Open(name))
}

func (b *absFSBridge) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	return b.file(b.fsys.OpenFile(name, flag, perm))
}

func (b *absFSBridge) Remove(name string) error {
	return b.fsys.Remove(name)
}

func (b *absFSBridge) RemoveAll(name string) error {
	return b.fsys.RemoveAll(name)
}

func (b *absFSBridge) Rename(oldname, newname string) error {
	return b.fsys.Rename(oldname, newname)
}

func (b *absFSBridge) Stat(name string) (os.FileInfo, error) {
	return b.fsys.Stat(name)
}

func (b *absFSBridge) Chmod(name string, mode os.FileMode) error {
	return b.fsys.Chmod(name, mode)
}

func (b *absFSBridge) Chown(name string, uid, gid int) error {
	return b.fsys.Chown(name, uid, gid)
}

func (b *absFSBridge) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return b.fsys.Chtimes(name, atime, mtime)
}

func (b *absFSBridge) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if l, ok := b.fsys.(absfs.SymLinker); ok {
		info, err := l.Lstat(name)
		return info, true, err
	}
	info, err := b.fsys.Stat(name)
	return info, false, err
}

func (b *absFSBridge) SymlinkIfPossible(oldname, newname string) error {
	if l, ok := b.fsys.(absfs.SymLinker); ok {
		return l.Symlink(oldname, newname)
	}
	return &os.LinkError{Op: "symlink", Old: oldname, New: newname, Err: afero.ErrNoSymlink}
}

func (b *absFSBridge) ReadlinkIfPossible(name string) (string, error) {
	if l, ok := b.fsys.(absfs.SymLinker); ok {
		return l.Readlink(name)
	}
	return "", &os.PathError{Op: "readlink", Path: name, Err: afero.ErrNoReadlink}
}

func (b *absFSBridge) Lchown(name string, uid, gid int) error {
	if l, ok := b.fsys.(absfs.SymLinker); ok {
		return l.Lchown(name, uid, gid)
	}
	return &os.PathError{Op: "lchown", Path: name, Err: syscall.ENOSYS}
}

func (b *absFSBridge) file(f absfs.File, err error) (afero.File, error) {
	if err != nil {
		return nil, err
	}
	return f, nil
}
