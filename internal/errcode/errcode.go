// Package errcode maps filesystem errors to symbolic POSIX codes and decides how a
// failed primitive should be recovered.
package errcode

import (
	"errors"
	"io/fs"
	"syscall"
)

// Code is a symbolic POSIX error code such as "ENOENT".
type Code string

const (
	EACCES    Code = "EACCES"
	EAGAIN    Code = "EAGAIN"
	EBUSY     Code = "EBUSY"
	EEXIST    Code = "EEXIST"
	EINVAL    Code = "EINVAL"
	EISDIR    Code = "EISDIR"
	EMFILE    Code = "EMFILE"
	ENFILE    Code = "ENFILE"
	ENOENT    Code = "ENOENT"
	ENOSYS    Code = "ENOSYS"
	ENOTDIR   Code = "ENOTDIR"
	ENOTEMPTY Code = "ENOTEMPTY"
	EPERM     Code = "EPERM"
	EXDEV     Code = "EXDEV"
)

// Of returns the symbolic code carried by err, or "" when err is nil or carries
// no recognisable code.
func Of(err error) Code {
	if err == nil {
		return ""
	}
	var errno syscall.Errno
	if errors.As(err, &errno) {
		if c := errnoCode(errno); c != "" {
			return c
		}
	}
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ENOENT
	case errors.Is(err, fs.ErrExist):
		return EEXIST
	case errors.Is(err, fs.ErrPermission):
		return EACCES
	case errors.Is(err, fs.ErrInvalid):
		return EINVAL
	}
	return ""
}

// Is reports whether err carries one of the given codes.
func Is(err error, codes ...Code) bool {
	c := Of(err)
	if c == "" {
		return false
	}
	for _, want := range codes {
		if c == want {
			return true
		}
	}
	return false
}
