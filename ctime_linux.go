package fsextender

import (
	"os"
	"syscall"
	"time"
)

// changeTime returns the inode change time, or the modification time when the
// entry does not come from the OS.
func changeTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Unix())
	}
	return info.ModTime()
}
