package fsextender

import (
	"io"
	"os"
	"syscall"
)

// CopyFile copies the regular file src to dst, replacing dst. The mode and
// modification time of src are carried over.
func (f *FS) CopyFile(src, dst string) error {
	info, err := f.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return &os.PathError{Op: "copyfile", Path: src, Err: syscall.EISDIR}
	}

	in, err := f.openFile(src, os.O_RDONLY, 0)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := f.openFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	buf := make([]byte, f.copyBufferSize)
	if _, err := io.CopyBuffer(out, in, buf); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}

	// Preserve file metadata
	if err := f.Chmod(dst, info.Mode().Perm()); err != nil {
		return err
	}
	if err := f.base.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		// Non-fatal error
		f.log.Debug("preserving modification time", "path", dst, "error", err)
	}
	return nil
}
