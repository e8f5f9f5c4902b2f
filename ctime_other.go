//go:build !linux && !darwin

package fsextender

import (
	"os"
	"time"
)

// changeTime falls back to the modification time where no change time is exposed.
func changeTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
