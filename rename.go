package fsextender

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// Rename renames oldname to newname. With the stabilizer enabled, a rename
// refused with EACCES or EPERM is retried until the sync rename timeout, and a
// rename that a previous attempt already completed counts as done.
func (f *FS) Rename(oldname, newname string) error {
	return f.rename(context.Background(), oldname, newname, f.syncRenameTimeout)
}

// RenameAsync is the asynchronous form of Rename, bounded by the rename timeout.
func (f *FS) RenameAsync(ctx context.Context, oldname, newname string) *Future[struct{}] {
	return goAsync(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.rename(ctx, oldname, newname, f.renameTimeout)
	})
}

func (f *FS) rename(ctx context.Context, oldname, newname string, timeout time.Duration) error {
	if !f.stabilizeRename || f.passThrough {
		return f.base.Rename(oldname, newname)
	}

	attempt := 0
	backoff := retry.WithMaxDuration(timeout, steppedBackoff(unlinkBackoffStep, unlinkBackoffCap))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := f.base.Rename(oldname, newname)
		if err == nil {
			return nil
		}
		if attempt > 1 && errcode.Is(err, errcode.ENOENT) {
			// The source vanished: an earlier attempt went through.
			return nil
		}
		if f.classify(errcode.OpRename, err) != errcode.RetryBusy {
			return err
		}
		if f.renameApplied(oldname, newname) {
			return nil
		}
		f.logRetry(errcode.OpRename, oldname, attempt, err)
		return retry.RetryableError(err)
	})
}

// renameApplied reports whether newname already holds what oldname held: either
// oldname is gone, or both entries have the same size and change time.
func (f *FS) renameApplied(oldname, newname string) bool {
	newInfo, err := f.lstat(newname)
	if err != nil {
		return false
	}
	oldInfo, err := f.lstat(oldname)
	if err != nil {
		return errcode.Is(err, errcode.ENOENT)
	}
	return oldInfo.Size() == newInfo.Size() && changeTime(oldInfo).Equal(changeTime(newInfo))
}
