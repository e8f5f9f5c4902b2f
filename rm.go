package fsextender

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

// RmOptions configures Rm.
type RmOptions struct {
	// Recursive allows directories to be removed with everything below them.
	Recursive bool
	// Force makes a missing target a success.
	Force bool
	// MaxRetries bounds the retries of each busy directory removal.
	MaxRetries int
	// RetryDelay is multiplied by the attempt number between directory retries.
	// Zero means 100ms.
	RetryDelay time.Duration
	// Stream, when set, receives one ProgressEvent per processed entry. Without a
	// stream the removal stops at the first failure; with one every sibling is
	// still attempted and reported. A directory is not removed while a child
	// failed, and it gets no event of its own: the failing children carry the
	// errors. A directory that cannot be listed is reported with the list error.
	Stream io.Writer
}

// EmptyDirOptions configures EmptyDir. The fields behave as in RmOptions; the
// emptied directory itself is only reported on Stream when it cannot be listed.
type EmptyDirOptions struct {
	MaxRetries int
	RetryDelay time.Duration
	Stream     io.Writer
}

// Rm removes name. Directories need Recursive; their contents are removed
// bottom-up so a directory is only removed after everything below it. The root of
// a volume is always refused with EPERM.
func (f *FS) Rm(name string, opts RmOptions) error {
	return f.newRemover(context.Background(), opts, false).rm(name)
}

// RmAsync is the asynchronous form of Rm. Sibling subtrees are removed
// concurrently.
func (f *FS) RmAsync(ctx context.Context, name string, opts RmOptions) *Future[struct{}] {
	return goAsync(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.newRemover(ctx, opts, true).rm(name)
	})
}

// EmptyDir removes everything inside name but keeps name itself. A missing
// directory is created; a target that is not a directory fails with EEXIST.
func (f *FS) EmptyDir(name string, opts EmptyDirOptions) error {
	return f.newRemover(context.Background(), opts.rmOptions(), false).emptyDir(name)
}

// EmptyDirAsync is the asynchronous form of EmptyDir.
func (f *FS) EmptyDirAsync(ctx context.Context, name string, opts EmptyDirOptions) *Future[struct{}] {
	return goAsync(ctx, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, f.newRemover(ctx, opts.rmOptions(), true).emptyDir(name)
	})
}

// RemoveAllAsync is the asynchronous form of RemoveAll.
func (f *FS) RemoveAllAsync(ctx context.Context, name string) *Future[struct{}] {
	return f.RmAsync(ctx, name, RmOptions{Recursive: true, Force: true})
}

func (o EmptyDirOptions) rmOptions() RmOptions {
	return RmOptions{
		Recursive:  true,
		Force:      true,
		MaxRetries: o.MaxRetries,
		RetryDelay: o.RetryDelay,
		Stream:     o.Stream,
	}
}

// remover carries the state of one Rm or EmptyDir call.
type remover struct {
	fs            *FS
	ctx           context.Context
	opts          RmOptions
	unlinkTimeout time.Duration
	progress      *progressWriter

	// sem bounds the workers of an asynchronous removal; nil when sequential.
	sem *semaphore.Weighted

	mu       sync.Mutex
	firstErr error
}

func (f *FS) newRemover(ctx context.Context, opts RmOptions, async bool) *remover {
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	r := &remover{
		fs:            f,
		ctx:           ctx,
		opts:          opts,
		unlinkTimeout: f.syncRetryTimeout,
		progress:      newProgressWriter(opts.Stream, f.log),
	}
	if async {
		r.unlinkTimeout = f.retryTimeout
		r.sem = semaphore.NewWeighted(int64(f.concurrency))
	}
	return r
}

func (r *remover) rm(name string) error {
	name = cleanPath(name)
	if isRoot(name) {
		return &os.PathError{Op: "rm", Path: name, Err: syscall.EPERM}
	}

	info, err := r.fs.lstat(name)
	if err != nil {
		if r.opts.Force && errcode.Is(err, errcode.ENOENT) {
			return nil
		}
		return err
	}
	if !info.IsDir() {
		return r.result(r.removeFile(name))
	}
	if !r.opts.Recursive {
		return &os.PathError{Op: "rm", Path: name, Err: syscall.EISDIR}
	}
	return r.result(r.removeDir(name))
}

func (r *remover) emptyDir(name string) error {
	name = cleanPath(name)
	if isRoot(name) {
		return &os.PathError{Op: "emptydir", Path: name, Err: syscall.EPERM}
	}

	info, err := r.fs.lstat(name)
	if err != nil {
		if errcode.Is(err, errcode.ENOENT) {
			return r.fs.MkdirAll(name, 0o777)
		}
		return err
	}
	if !info.IsDir() {
		return &os.PathError{Op: "emptydir", Path: name, Err: syscall.EEXIST}
	}
	return r.result(r.removeChildren(name))
}

// record reports the outcome of one entry and keeps the first failure.
func (r *remover) record(path string, typ EntryType, err error) error {
	if r.progress != nil {
		r.progress.emit(path, typ, err)
	}
	if err != nil {
		r.mu.Lock()
		if r.firstErr == nil {
			r.firstErr = err
		}
		r.mu.Unlock()
	}
	return err
}

func (r *remover) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firstErr
}

// result prefers the first recorded failure over err, which may only be a
// cancellation.
func (r *remover) result(err error) error {
	if first := r.err(); first != nil {
		return first
	}
	return err
}

// stopped reports whether no further entries should be started.
func (r *remover) stopped() bool {
	if r.ctx.Err() != nil {
		return true
	}
	return r.progress == nil && r.err() != nil
}

func (r *remover) removeFile(path string) error {
	return r.record(path, EntryFile, r.fs.unlink(r.ctx, path, r.unlinkTimeout))
}

// removeDir removes the contents of dir and then dir itself.
func (r *remover) removeDir(dir string) error {
	if err := r.removeChildren(dir); err != nil {
		return err
	}
	err := r.fs.rmdir(r.ctx, dir, r.opts.MaxRetries, r.opts.RetryDelay)
	if errcode.Is(err, errcode.ENOTEMPTY) {
		// Something was created inside while it was being emptied.
		if cerr := r.removeChildren(dir); cerr != nil {
			return cerr
		}
		err = r.fs.rmdir(r.ctx, dir, r.opts.MaxRetries, r.opts.RetryDelay)
	}
	return r.record(dir, EntryDirectory, err)
}

// removeEntry removes path, whatever it is. An entry that disappeared in the
// meantime counts as removed.
func (r *remover) removeEntry(path string) error {
	if err := r.ctx.Err(); err != nil {
		return err
	}
	info, err := r.fs.lstat(path)
	if err != nil {
		if errcode.Is(err, errcode.ENOENT) {
			return nil
		}
		return r.record(path, EntryFile, err)
	}
	if info.IsDir() {
		return r.removeDir(path)
	}
	return r.removeFile(path)
}

// removeChildren removes every entry of dir and returns the first failure. An
// asynchronous removal hands siblings to other goroutines while workers are
// free and removes them inline otherwise.
func (r *remover) removeChildren(dir string) error {
	names, err := r.readDirNames(dir)
	if err != nil {
		if errcode.Is(err, errcode.ENOENT) {
			return nil
		}
		return r.record(dir, EntryDirectory, err)
	}

	var (
		g     errgroup.Group
		first error
	)
	for _, name := range names {
		if r.stopped() {
			break
		}
		path := filepath.Join(dir, name)
		if r.sem != nil && r.sem.TryAcquire(1) {
			g.Go(func() error {
				defer r.sem.Release(1)
				return r.removeEntry(path)
			})
			continue
		}
		if err := r.removeEntry(path); err != nil && first == nil {
			first = err
		}
	}
	if err := g.Wait(); err != nil && first == nil {
		first = err
	}
	if first == nil {
		first = r.ctx.Err()
	}
	return first
}

func (r *remover) readDirNames(dir string) ([]string, error) {
	d, err := r.fs.openFile(dir, os.O_RDONLY, 0)
	if err != nil {
		return nil, err
	}
	names, err := d.Readdirnames(-1)
	d.Close()
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
