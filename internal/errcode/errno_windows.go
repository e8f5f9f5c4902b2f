//go:build windows

package errcode

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// Ordered: the first pair for an errno wins, so native Windows errors are listed
// before the aliases the syscall package invents for POSIX names.
var windowsErrnos = []struct {
	errno syscall.Errno
	code  Code
}{
	{windows.ERROR_FILE_NOT_FOUND, ENOENT},
	{windows.ERROR_PATH_NOT_FOUND, ENOENT},
	{windows.ERROR_INVALID_NAME, ENOENT},
	{windows.ERROR_ACCESS_DENIED, EPERM},
	{windows.ERROR_SHARING_VIOLATION, EBUSY},
	{windows.ERROR_LOCK_VIOLATION, EBUSY},
	{windows.ERROR_BUSY, EBUSY},
	{windows.ERROR_DIR_NOT_EMPTY, ENOTEMPTY},
	{windows.ERROR_TOO_MANY_OPEN_FILES, EMFILE},
	{windows.ERROR_ALREADY_EXISTS, EEXIST},
	{windows.ERROR_FILE_EXISTS, EEXIST},
	{windows.ERROR_NOT_SAME_DEVICE, EXDEV},
	{windows.ERROR_DIRECTORY, ENOTDIR},
	{windows.ERROR_INVALID_PARAMETER, EINVAL},
	{windows.ERROR_CALL_NOT_IMPLEMENTED, ENOSYS},
	{syscall.EACCES, EACCES},
	{syscall.EAGAIN, EAGAIN},
	{syscall.EBUSY, EBUSY},
	{syscall.EEXIST, EEXIST},
	{syscall.EINVAL, EINVAL},
	{syscall.EISDIR, EISDIR},
	{syscall.EMFILE, EMFILE},
	{syscall.ENFILE, ENFILE},
	{syscall.ENOENT, ENOENT},
	{syscall.ENOSYS, ENOSYS},
	{syscall.ENOTDIR, ENOTDIR},
	{syscall.ENOTEMPTY, ENOTEMPTY},
	{syscall.EPERM, EPERM},
	{syscall.EXDEV, EXDEV},
}

var windowsCodes = func() map[syscall.Errno]Code {
	m := make(map[syscall.Errno]Code, len(windowsErrnos))
	for _, e := range windowsErrnos {
		if _, ok := m[e.errno]; !ok {
			m[e.errno] = e.code
		}
	}
	return m
}()

func errnoCode(errno syscall.Errno) Code {
	return windowsCodes[errno]
}
