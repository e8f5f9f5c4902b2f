package fsextender

import (
	"os"

	"github.com/spf13/afero"
)

// Stat returns a FileInfo describing the named file
func (f *FS) Stat(name string) (os.FileInfo, error) {
	return f.base.Stat(name)
}

// Open opens a file for reading
func (f *FS) Open(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDONLY, 0)
}

// OpenFile opens a file with the specified flags and permissions. The returned
// file is a *File.
func (f *FS) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	file, err := f.openFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return file, nil
}

func (f *FS) openFile(name string, flag int, perm os.FileMode) (*File, error) {
	file, err := f.base.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return f.wrapFile(file), nil
}

// Create creates or truncates the named file
func (f *FS) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

// Mkdir creates a directory
func (f *FS) Mkdir(name string, perm os.FileMode) error {
	return f.base.Mkdir(name, perm)
}

// MkdirAll creates a directory and all parent directories
func (f *FS) MkdirAll(name string, perm os.FileMode) error {
	return f.base.MkdirAll(name, perm)
}

// ReadFile reads the whole named file.
func (f *FS) ReadFile(name string) ([]byte, error) {
	return afero.ReadFile(f, name)
}

// WriteFile writes data to the named file, creating it with perm if needed.
func (f *FS) WriteFile(name string, data []byte, perm os.FileMode) error {
	return afero.WriteFile(f, name, data, perm)
}

// AppendFile appends data to the named file, creating it with perm if needed.
func (f *FS) AppendFile(name string, data []byte, perm os.FileMode) error {
	file, err := f.openFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, perm)
	if err != nil {
		return err
	}
	_, err = file.Write(data)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// ReadDir returns the entries of the named directory sorted by name.
func (f *FS) ReadDir(name string) ([]os.FileInfo, error) {
	return afero.ReadDir(f, name)
}

// Exists reports whether name exists. A dangling symlink exists.
func (f *FS) Exists(name string) (bool, error) {
	_, err := f.lstat(name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}
