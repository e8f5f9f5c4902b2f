//go:build unix

package errcode

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func errnoCode(errno syscall.Errno) Code {
	if errno == unix.EWOULDBLOCK {
		return EAGAIN
	}
	return Code(unix.ErrnoName(errno))
}
