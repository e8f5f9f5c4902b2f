package fsextender

import (
	"context"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/n3okill/fs-extender-sub001/internal/errcode"
)

func TestUnlinkRetriesBusy(t *testing.T) {
	base := newFaultyFs(afero.NewMemMapFs())
	makeTree(t, base.Fs, "/work", "locked.txt")
	base.inject(opRemove, "locked.txt", syscall.EBUSY, 2)
	f := newTestFS(t, base)

	require.NoError(t, f.Unlink("/work/locked.txt"))
	assert.Equal(t, 3, base.count(opRemove))
	assert.False(t, exists(t, base.Fs, "/work/locked.txt"))
}

func TestUnlinkMissingIsSuccess(t *testing.T) {
	f := newTestFS(t, afero.NewMemMapFs())
	assert.NoError(t, f.Unlink("/missing"))
	assert.NoError(t, f.Remove("/missing"))
}

func TestUnlinkGivesUpAfterTimeout(t *testing.T) {
	base := newFaultyFs(afero.NewMemMapFs())
	makeTree(t, base.Fs, "/work", "locked.txt")
	base.inject(opRemove, "locked.txt", syscall.EBUSY, -1)
	f := newTestFS(t, base, WithSyncRetryTimeout(50*time.Millisecond))

	start := time.Now()
	err := f.Unlink("/work/locked.txt")
	require.Error(t, err)
	assert.Equal(t, errcode.EBUSY, errcode.Of(err))
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Greater(t, base.count(opRemove), 1)
}

func TestUnlinkDoesNotRetryOtherFailures(t *testing.T) {
	base := newFaultyFs(afero.NewMemMapFs())
	makeTree(t, base.Fs, "/work", "a.txt")
	base.inject(opRemove, "a.txt", syscall.ENOTEMPTY, -1)
	f := newTestFS(t, base)

	err := f.Unlink("/work/a.txt")
	assert.Equal(t, errcode.ENOTEMPTY, errcode.Of(err))
	assert.Equal(t, 1, base.count(opRemove))
}

func TestUnlinkFixesPermissionsOnWindows(t *testing.T) {
	base := newFaultyFs(afero.NewMemMapFs())
	makeTree(t, base.Fs, "/work", "readonly.txt")
	base.inject(opRemove, "readonly.txt", syscall.EPERM, 1)
	f := newTestFS(t, base)
	f.windows = true

	require.NoError(t, f.Unlink("/work/readonly.txt"))
	assert.Equal(t, []string{"/work/readonly.txt"}, base.history(opChmod))
}

func TestUnlinkAsync(t *testing.T) {
	base := newFaultyFs(afero.NewMemMapFs())
	makeTree(t, base.Fs, "/work", "locked.txt")
	base.inject(opRemove, "locked.txt", syscall.EBUSY, 1)
	f := newTestFS(t, base)

	ctx := context.Background()
	_, err := f.UnlinkAsync(ctx, "/work/locked.txt").Await(ctx)
	require.NoError(t, err)
	assert.False(t, exists(t, base.Fs, "/work/locked.txt"))
}

func TestPassThroughSurfacesFailures(t *testing.T) {
	base := newFaultyFs(afero.NewMemMapFs())
	makeTree(t, base.Fs, "/work", "locked.txt", "dir/")
	base.inject(opRemove, "locked.txt", syscall.EBUSY, 1)
	f := newTestFS(t, base, WithPassThrough(true))

	err := f.Unlink("/work/locked.txt")
	assert.Equal(t, errcode.EBUSY, errcode.Of(err))
	assert.Equal(t, 1, base.count(opRemove))

	err = f.Unlink("/work/missing.txt")
	assert.Equal(t, errcode.ENOENT, errcode.Of(err))
}

func TestRmdir(t *testing.T) {
	t.Run("single attempt by default", func(t *testing.T) {
		base := newFaultyFs(afero.NewMemMapFs())
		makeTree(t, base.Fs, "/work", "dir/")
		base.inject(opRemove, "/work/dir", syscall.EBUSY, 1)
		f := newTestFS(t, base)

		err := f.Rmdir("/work/dir", RmdirOptions{})
		assert.Equal(t, errcode.EBUSY, errcode.Of(err))
		assert.Equal(t, 1, base.count(opRemove))
	})

	t.Run("retries busy", func(t *testing.T) {
		base := newFaultyFs(afero.NewMemMapFs())
		makeTree(t, base.Fs, "/work", "dir/")
		base.inject(opRemove, "/work/dir", syscall.EBUSY, 2)
		f := newTestFS(t, base)

		require.NoError(t, f.Rmdir("/work/dir", RmdirOptions{MaxRetries: 2, RetryDelay: time.Millisecond}))
		assert.Equal(t, 3, base.count(opRemove))
	})

	t.Run("not a directory", func(t *testing.T) {
		base := afero.NewMemMapFs()
		makeTree(t, base, "/work", "file")
		f := newTestFS(t, base)

		err := f.Rmdir("/work/file", RmdirOptions{})
		assert.Equal(t, errcode.ENOTDIR, errcode.Of(err))
	})

	t.Run("missing", func(t *testing.T) {
		f := newTestFS(t, afero.NewMemMapFs())
		assert.NoError(t, f.Rmdir("/work/none", RmdirOptions{}))
	})

	t.Run("recursive", func(t *testing.T) {
		base := afero.NewMemMapFs()
		makeTree(t, base, "/work", "dir/a/b.txt", "dir/c.txt")
		f := newTestFS(t, base)

		ctx := context.Background()
		_, err := f.RmdirAsync(ctx, "/work/dir", RmdirOptions{Recursive: true}).Await(ctx)
		require.NoError(t, err)
		assert.False(t, exists(t, base, "/work/dir"))
		assert.NoError(t, f.Rmdir("/work/dir", RmdirOptions{Recursive: true}))
	})
}

func TestRemove(t *testing.T) {
	base := afero.NewMemMapFs()
	makeTree(t, base, "/work", "file", "empty/")
	f := newTestFS(t, base)

	require.NoError(t, f.Remove("/work/file"))
	require.NoError(t, f.Remove("/work/empty"))
	assert.False(t, exists(t, base, "/work/file"))
	assert.False(t, exists(t, base, "/work/empty"))
}

func TestSteppedBackoff(t *testing.T) {
	b := steppedBackoff(10*time.Millisecond, 25*time.Millisecond)
	var got []time.Duration
	for i := 0; i < 4; i++ {
		d, stop := b.Next()
		require.False(t, stop)
		got = append(got, d)
	}
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond, 25 * time.Millisecond, 25 * time.Millisecond}, got)
}
