/*
Package fsextender decorates an afero filesystem with operations that survive the
failures real filesystems produce under load.

# Overview

An FS wraps one afero.Fs and implements afero.Fs itself. Every call made through it,
including the calls its own higher-level operations make, passes through a layer that
classifies failures and recovers from the transient ones:

  - EMFILE and ENFILE (descriptor exhaustion) on asynchronous calls are handed to a
    process-wide retry queue and re-attempted with backoff for up to 60 seconds.
  - EBUSY and EPERM on unlink are retried until a deadline. On Windows, EPERM first
    clears the read-only attribute.
  - EBUSY, ENOTEMPTY and EPERM on rmdir are retried a bounded number of times.
  - EPERM, EINVAL and ENOSYS on chown and chmod are ignored for non-privileged
    processes, the way cp and tar behave.
  - ENOENT on removal is success.
  - EAGAIN on File.Read is retried inline.

Everything else is returned unchanged, so errors keep their syscall.Errno and
errors.Is(err, fs.ErrNotExist) works as usual.

# Calling Conventions

Every operation has a blocking form and an asynchronous form returning a Future:

	f := fsextender.NewOsFs()

	// Blocking
	err := f.Rm("/tmp/build", fsextender.RmOptions{Recursive: true})

	// Awaitable
	err = f.RmAsync(ctx, "/tmp/build", opts).Await(ctx)

	// Callback
	f.RmAsync(ctx, "/tmp/build", opts).Then(func(_ struct{}, err error) {
	    log.Println("removed", err)
	})

All three report the same error for the same fault. Blocking calls never use the
retry queue; their backoff blocks the calling goroutine.

# Recursive Removal

Rm removes a file or, with Recursive, a whole tree. Entries are removed bottom-up: a
directory is removed only after everything below it. The asynchronous form removes
sibling subtrees concurrently. EmptyDir removes the contents of a directory and keeps
the directory. The root of a volume is always refused.

When RmOptions.Stream is set, one JSON line per processed entry is written to it:

	{"path":"/tmp/build/obj/a.o","type":"file","error":null}
	{"path":"/tmp/build/obj","type":"directory","error":null}

# Configuration

Tunables are read from the environment when an FS is created and can be overridden
with options:

	FS_EXTENDER_TIMEOUT              retry queue and async unlink ceiling (ms)
	FS_EXTENDER_TIMEOUT_SYNC         blocking unlink ceiling (ms)
	FS_EXTENDER_WIN32_TIMEOUT        async rename stabilizer ceiling (ms)
	FS_EXTENDER_WIN32_TIMEOUT_SYNC   blocking rename stabilizer ceiling (ms)
	FS_EXTENDER_IGNORE_PATCH         pass-through mode, no recovery at all
	FS_EXTENDER_IGNORE_PATCH_CLOSE   do not signal the retry queue on close

# absfs Integration

FileSystem returns an absfs.FileSystem view of an FS, and FromAbsFS turns any
absfs.FileSystem into an afero.Fs that New can wrap.
*/
package fsextender
