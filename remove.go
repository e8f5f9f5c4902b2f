package fsextender

import (
	"context"
	"os"
	"syscall"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// defaultRetryDelay is the rmdir backoff unit when none is given.
const defaultRetryDelay = 100 * time.Millisecond

// RmdirOptions configures Rmdir.
type RmdirOptions struct {
	// Recursive removes the whole subtree through Rm.
	Recursive bool
	// MaxRetries bounds the retries of a busy directory. Zero means a single attempt.
	MaxRetries int
	// RetryDelay is multiplied by the attempt number between retries.
	RetryDelay time.Duration
}

// steppedBackoff grows by step after every attempt up to limit. It never returns
// zero, so a duration limiter cannot mistake it for "wait out the deadline".
func steppedBackoff(step, limit time.Duration) retry.Backoff {
	var next time.Duration
	return retry.WithCappedDuration(limit, retry.BackoffFunc(func() (time.Duration, bool) {
		next += step
		return next, false
	}))
}

// Remove removes a file or an empty directory. A missing entry counts as removed.
func (f *FS) Remove(name string) error {
	info, err := f.lstat(name)
	if err != nil {
		if f.classify(errcode.OpUnlink, err) == errcode.Satisfied {
			return nil
		}
		return err
	}
	if info.IsDir() {
		return f.rmdir(context.Background(), name, 0, defaultRetryDelay)
	}
	return f.Unlink(name)
}

// RemoveAll removes path and any children it contains.
func (f *FS) RemoveAll(path string) error {
	return f.Rm(path, RmOptions{Recursive: true, Force: true})
}

// Unlink removes a non-directory entry. Busy and permission failures are retried
// until the sync retry timeout elapses.
func (f *FS) Unlink(name string) error {
	return f.unlink(context.Background(), name, f.syncRetryTimeout)
}

// UnlinkAsync is the asynchronous form of Unlink, bounded by the retry timeout.
func (f *FS) UnlinkAsync(ctx context.Context, name string) *Future[struct{}] {
	return goAsync(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.unlink(ctx, name, f.retryTimeout)
	})
}

func (f *FS) unlink(ctx context.Context, name string, timeout time.Duration) error {
	attempt := 0
	backoff := retry.WithMaxDuration(timeout, steppedBackoff(unlinkBackoffStep, unlinkBackoffCap))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := f.base.Remove(name)
		switch f.classify(errcode.OpUnlink, err) {
		case errcode.None, errcode.Satisfied:
			return nil
		case errcode.RetryBusy:
			if !errcode.Is(err, errcode.EBUSY, errcode.EPERM) {
				return err
			}
			if f.windows && errcode.Is(err, errcode.EPERM) {
				f.fixPerm(name)
			}
			f.logRetry(errcode.OpUnlink, name, attempt, err)
			return retry.RetryableError(err)
		}
		return err
	})
}

// Rmdir removes an empty directory. With Recursive set it removes the whole
// subtree and ignores a missing target.
func (f *FS) Rmdir(name string, opts RmdirOptions) error {
	return f.rmdirOpts(context.Background(), name, opts, false)
}

// RmdirAsync is the asynchronous form of Rmdir.
func (f *FS) RmdirAsync(ctx context.Context, name string, opts RmdirOptions) *Future[struct{}] {
	return goAsync(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.rmdirOpts(ctx, name, opts, true)
	})
}

func (f *FS) rmdirOpts(ctx context.Context, name string, opts RmdirOptions, async bool) error {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	if opts.Recursive {
		rm := RmOptions{Recursive: true, Force: true, MaxRetries: opts.MaxRetries, RetryDelay: opts.RetryDelay}
		return f.newRemover(ctx, rm, async).rm(name)
	}
	info, err := f.lstat(name)
	if err != nil {
		if f.classify(errcode.OpRmdir, err) == errcode.Satisfied {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "rmdir", Path: name, Err: syscall.ENOTDIR}
	}
	return f.rmdir(ctx, name, opts.MaxRetries, opts.RetryDelay)
}

// rmdir removes a directory known to exist, retrying busy failures up to
// maxRetries times with a delay of attempt*delay.
func (f *FS) rmdir(ctx context.Context, name string, maxRetries int, delay time.Duration) error {
	if maxRetries < 0 {
		maxRetries = 0
	}
	attempt := 0
	backoff := retry.WithMaxRetries(uint64(maxRetries), retry.BackoffFunc(func() (time.Duration, bool) {
		return time.Duration(attempt) * delay, false
	}))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		err := f.base.Remove(name)
		switch f.classify(errcode.OpRmdir, err) {
		case errcode.None, errcode.Satisfied:
			return nil
		case errcode.RetryBusy, errcode.RetryResource:
			if f.windows && errcode.Is(err, errcode.EPERM) {
				f.fixPerm(name)
			}
			f.logRetry(errcode.OpRmdir, name, attempt, err)
			return retry.RetryableError(err)
		}
		return err
	})
}
