package errcode

import "os"

// Class is the recovery policy for a failed primitive.
type Class int

const (
	// None means there was no error.
	None Class = iota
	// Fatal errors are returned to the caller unchanged.
	Fatal
	// RetryResource is descriptor exhaustion (EMFILE, ENFILE); only waiting helps.
	RetryResource
	// RetryBusy is a transient lock or contention condition.
	RetryBusy
	// RetryPerm is a best-effort ownership or mode change that may be ignored.
	RetryPerm
	// Satisfied means the desired end state already holds (ENOENT on removal).
	Satisfied
)

func (c Class) String() string {
	switch c {
	case None:
		return "none"
	case Fatal:
		return "fatal"
	case RetryResource:
		return "retry-resource"
	case RetryBusy:
		return "retry-busy"
	case RetryPerm:
		return "retry-perm"
	case Satisfied:
		return "satisfied"
	}
	return "unknown"
}

// Op identifies the primitive that produced an error.
type Op int

const (
	OpOpen Op = iota
	OpRead
	OpWrite
	OpAppend
	OpCopy
	OpReaddir
	OpUnlink
	OpRmdir
	OpRename
	OpChown
	OpChmod
	OpStat
)

var opNames = [...]string{
	OpOpen:    "open",
	OpRead:    "read",
	OpWrite:   "write",
	OpAppend:  "append",
	OpCopy:    "copyfile",
	OpReaddir: "readdir",
	OpUnlink:  "unlink",
	OpRmdir:   "rmdir",
	OpRename:  "rename",
	OpChown:   "chown",
	OpChmod:   "chmod",
	OpStat:    "stat",
}

func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "unknown"
}

// Classifier decides the recovery policy for an error. Privileged reports whether
// the process runs as the superuser, which makes ownership failures real errors.
type Classifier struct {
	Privileged bool
}

// Default classifies with the privilege level of the current process.
var Default = Classifier{Privileged: os.Geteuid() == 0}

// Classify returns the recovery policy for err raised by op.
func (c Classifier) Classify(op Op, err error) Class {
	if err == nil {
		return None
	}
	code := Of(err)
	if code == EMFILE || code == ENFILE {
		return RetryResource
	}
	switch op {
	case OpChown, OpChmod:
		if code == ENOSYS {
			return RetryPerm
		}
		if !c.Privileged && (code == EPERM || code == EINVAL) {
			return RetryPerm
		}
	case OpUnlink, OpRmdir:
		switch code {
		case ENOENT:
			return Satisfied
		case EBUSY, ENOTEMPTY, EPERM:
			return RetryBusy
		}
	case OpRename:
		if code == EACCES || code == EPERM {
			return RetryBusy
		}
	case OpRead:
		if code == EAGAIN {
			return RetryBusy
		}
	}
	return Fatal
}

// Classify uses the Default classifier.
func Classify(op Op, err error) Class {
	return Default.Classify(op, err)
}
