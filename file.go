package fsextender

import (
	"io"
	"io/fs"
	"os"
	"syscall"

	"github.com/spf13/afero"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// File wraps a file handed out by the wrapped filesystem.
type File struct {
	afero.File
	fs *FS
}

var _ afero.File = (*File)(nil)

func (f *FS) wrapFile(file afero.File) *File {
	return &File{File: file, fs: f}
}

// Read retries EAGAIN inline, up to readRetries times.
func (fl *File) Read(p []byte) (int, error) {
	for attempt := 0; ; attempt++ {
		n, err := fl.File.Read(p)
		if n > 0 || attempt >= readRetries || fl.fs.classify(errcode.OpRead, err) != errcode.RetryBusy {
			return n, err
		}
		fl.fs.logRetry(errcode.OpRead, fl.Name(), attempt+1, err)
	}
}

// Close closes the file. A successful close tells the retry queue that a
// descriptor was released.
func (fl *File) Close() error {
	err := fl.File.Close()
	if err == nil && !fl.fs.ignoreClose && !fl.fs.passThrough {
		fl.fs.queue.Reset()
	}
	return err
}

// Chmod changes the mode of the open file. Failures a non-privileged process cannot
// avoid are ignored.
func (fl *File) Chmod(mode os.FileMode) error {
	c, ok := fl.File.(interface{ Chmod(os.FileMode) error })
	if !ok {
		return fl.fs.bestEffort(errcode.OpChmod, fl.Name(), &os.PathError{Op: "chmod", Path: fl.Name(), Err: syscall.ENOSYS})
	}
	return fl.fs.bestEffort(errcode.OpChmod, fl.Name(), c.Chmod(mode))
}

// Chown changes the owner of the open file, with the same tolerance as Chmod.
func (fl *File) Chown(uid, gid int) error {
	c, ok := fl.File.(interface{ Chown(int, int) error })
	if !ok {
		return fl.fs.bestEffort(errcode.OpChown, fl.Name(), &os.PathError{Op: "chown", Path: fl.Name(), Err: syscall.ENOSYS})
	}
	return fl.fs.bestEffort(errcode.OpChown, fl.Name(), c.Chown(uid, gid))
}

// ReadDir reads directory entries the way os.File.ReadDir does.
func (fl *File) ReadDir(n int) ([]fs.DirEntry, error) {
	if r, ok := fl.File.(interface {
		ReadDir(int) ([]fs.DirEntry, error)
	}); ok {
		return r.ReadDir(n)
	}

	infos, err := fl.File.Readdir(n)
	entries := make([]fs.DirEntry, len(infos))
	for i, info := range infos {
		entries[i] = fs.FileInfoToDirEntry(info)
	}
	if err == io.EOF && n <= 0 {
		err = nil
	}
	return entries, err
}

// Unwrap returns the file of the wrapped filesystem.
func (fl *File) Unwrap() afero.File {
	return fl.File
}
