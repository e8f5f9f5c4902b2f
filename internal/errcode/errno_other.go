//go:build !unix && !windows

package errcode

import "syscall"

var otherCodes = map[syscall.Errno]Code{
	syscall.EACCES:    EACCES,
	syscall.EAGAIN:    EAGAIN,
	syscall.EBUSY:     EBUSY,
	syscall.EEXIST:    EEXIST,
	syscall.EINVAL:    EINVAL,
	syscall.EISDIR:    EISDIR,
	syscall.EMFILE:    EMFILE,
	syscall.ENFILE:    ENFILE,
	syscall.ENOENT:    ENOENT,
	syscall.ENOSYS:    ENOSYS,
	syscall.ENOTDIR:   ENOTDIR,
	syscall.ENOTEMPTY: ENOTEMPTY,
	syscall.EPERM:     EPERM,
	syscall.EXDEV:     EXDEV,
}

func errnoCode(errno syscall.Errno) Code {
	return otherCodes[errno]
}
