package fsextender

import (
	"context"
	"os"
	"time"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
	"github.com/n3okill/fs-extender-sub001/internal/retryqueue"
)

// queued runs fn on a new goroutine. When fn fails because the process ran out
// of descriptors, the call is handed to the retry queue, which re-runs it until
// it stops failing that way or the queue timeout elapses.
func queued[T any](ctx context.Context, f *FS, op errcode.Op, name string, fn func() (T, error)) *Future[T] {
	fut := newFuture[T]()
	stop := context.AfterFunc(ctx, func() {
		var zero T
		fut.resolve(zero, ctx.Err())
	})

	var run func(first time.Time)
	run = func(first time.Time) {
		select {
		case <-fut.done:
			// Cancelled while waiting in the queue.
			return
		default:
		}

		v, err := fn()
		if f.classify(op, err) == errcode.RetryResource {
			now := time.Now()
			if first.IsZero() {
				first = now
			}
			f.log.Debug("queueing retry", "op", op.String(), "path", name, "code", string(errcode.Of(err)))
			f.queue.Enqueue(&retryqueue.Entry{
				Op:  op.String(),
				Run: run,
				Fail: func(err error) {
					stop()
					var zero T
					fut.resolve(zero, err)
				},
				Err:            err,
				FirstAttemptAt: first,
				LastAttemptAt:  now,
			})
			return
		}
		stop()
		settle(fut, v, err)
	}

	go run(time.Time{})
	return fut
}

// OpenFileAsync is the asynchronous form of OpenFile.
func (f *FS) OpenFileAsync(ctx context.Context, name string, flag int, perm os.FileMode) *Future[*File] {
	return queued(ctx, f, errcode.OpOpen, name, func() (*File, error) {
		return f.openFile(name, flag, perm)
	})
}

// OpenAsync is the asynchronous form of Open.
func (f *FS) OpenAsync(ctx context.Context, name string) *Future[*File] {
	return f.OpenFileAsync(ctx, name, os.O_RDONLY, 0)
}

// ReadFileAsync is the asynchronous form of ReadFile.
func (f *FS) ReadFileAsync(ctx context.Context, name string) *Future[[]byte] {
	return queued(ctx, f, errcode.OpRead, name, func() ([]byte, error) {
		return f.ReadFile(name)
	})
}

// WriteFileAsync is the asynchronous form of WriteFile.
func (f *FS) WriteFileAsync(ctx context.Context, name string, data []byte, perm os.FileMode) *Future[struct{}] {
	return queued(ctx, f, errcode.OpWrite, name, func() (struct{}, error) {
		return struct{}{}, f.WriteFile(name, data, perm)
	})
}

// AppendFileAsync is the asynchronous form of AppendFile.
func (f *FS) AppendFileAsync(ctx context.Context, name string, data []byte, perm os.FileMode) *Future[struct{}] {
	return queued(ctx, f, errcode.OpAppend, name, func() (struct{}, error) {
		return struct{}{}, f.AppendFile(name, data, perm)
	})
}

// CopyFileAsync is the asynchronous form of CopyFile.
func (f *FS) CopyFileAsync(ctx context.Context, src, dst string) *Future[struct{}] {
	return queued(ctx, f, errcode.OpCopy, src, func() (struct{}, error) {
		return struct{}{}, f.CopyFile(src, dst)
	})
}

// ReadDirAsync is the asynchronous form of ReadDir.
func (f *FS) ReadDirAsync(ctx context.Context, name string) *Future[[]os.FileInfo] {
	return queued(ctx, f, errcode.OpReaddir, name, func() ([]os.FileInfo, error) {
		return f.ReadDir(name)
	})
}

// StatAsync is the asynchronous form of Stat.
func (f *FS) StatAsync(ctx context.Context, name string) *Future[os.FileInfo] {
	return goAsync(ctx, func(context.Context) (os.FileInfo, error) {
		return f.Stat(name)
	})
}

// ExistsAsync is the asynchronous form of Exists.
func (f *FS) ExistsAsync(ctx context.Context, name string) *Future[bool] {
	return goAsync(ctx, func(context.Context) (bool, error) {
		return f.Exists(name)
	})
}
