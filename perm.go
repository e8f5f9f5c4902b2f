package fsextender

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// bestEffort drops ownership and mode failures that a non-privileged process
// cannot avoid. Every other error is returned unchanged.
func (f *FS) bestEffort(op errcode.Op, name string, err error) error {
	if f.classify(op, err) == errcode.RetryPerm {
		f.log.Warn("ignoring permission change failure", "op", op.String(), "path", name, "error", err)
		return nil
	}
	return err
}

// Chmod changes the mode of the named file.
func (f *FS) Chmod(name string, mode os.FileMode) error {
	return f.bestEffort(errcode.OpChmod, name, f.base.Chmod(name, mode))
}

// Chown changes the uid and gid of the named file.
func (f *FS) Chown(name string, uid, gid int) error {
	return f.bestEffort(errcode.OpChown, name, f.base.Chown(name, uid, gid))
}

// Lchown changes the uid and gid of a symlink itself. A wrapped filesystem
// without the capability is treated like a system without lchown.
func (f *FS) Lchown(name string, uid, gid int) error {
	l, ok := f.base.(lchowner)
	if !ok {
		return f.bestEffort(errcode.OpChown, name, &os.PathError{Op: "lchown", Path: name, Err: syscall.ENOSYS})
	}
	return f.bestEffort(errcode.OpChown, name, l.Lchown(name, uid, gid))
}

// Lchmod changes the mode of a symlink itself where the platform allows it.
func (f *FS) Lchmod(name string, mode os.FileMode) error {
	l, ok := f.base.(lchmoder)
	if !ok {
		return f.bestEffort(errcode.OpChmod, name, &os.PathError{Op: "lchmod", Path: name, Err: syscall.ENOSYS})
	}
	return f.bestEffort(errcode.OpChmod, name, l.Lchmod(name, mode))
}

// Chtimes changes the access and modification times of the named file
func (f *FS) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return f.base.Chtimes(name, atime, mtime)
}

// ChmodAsync is the asynchronous form of Chmod.
func (f *FS) ChmodAsync(ctx context.Context, name string, mode os.FileMode) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.Chmod(name, mode)
	})
}

// ChownAsync is the asynchronous form of Chown.
func (f *FS) ChownAsync(ctx context.Context, name string, uid, gid int) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.Chown(name, uid, gid)
	})
}

// LchownAsync is the asynchronous form of Lchown.
func (f *FS) LchownAsync(ctx context.Context, name string, uid, gid int) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.Lchown(name, uid, gid)
	})
}

// LchmodAsync is the asynchronous form of Lchmod.
func (f *FS) LchmodAsync(ctx context.Context, name string, mode os.FileMode) *Future[struct{}] {
	return goAsync(ctx, func(context.Context) (struct{}, error) {
		return struct{}{}, f.Lchmod(name, mode)
	})
}

// fixPerm clears a read-only attribute that makes Windows refuse a removal.
func (f *FS) fixPerm(name string) {
	if err := f.base.Chmod(name, fixPermMode); err != nil {
		f.log.Debug("chmod before retry failed", "path", name, "error", err)
	}
}
