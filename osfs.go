package fsextender

import (
	"os"

	"github.com/spf13/afero"
)

// OsFs is afero.OsFs plus hard links and Lchown.
type OsFs struct {
	afero.OsFs
}

var (
	_ afero.Symlinker = (*OsFs)(nil)
	_ linker          = (*OsFs)(nil)
	_ lchowner        = (*OsFs)(nil)
)

// Link creates newname as a hard link to oldname.
func (OsFs) Link(oldname, newname string) error {
	return os.Link(oldname, newname)
}

// Lchown changes the ownership of a symlink itself.
func (OsFs) Lchown(name string, uid, gid int) error {
	return os.Lchown(name, uid, gid)
}

// Capabilities probed on the wrapped filesystem.
type (
	linker interface {
		Link(oldname, newname string) error
	}
	lchowner interface {
		Lchown(name string, uid, gid int) error
	}
	lchmoder interface {
		Lchmod(name string, mode os.FileMode) error
	}
)
