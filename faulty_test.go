package fsextender

import (
	"os"
	"strings"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/n3okill/fs-extender-sub001/internal/retryqueue"
)

// Operations a faultyFs can fail.
const (
	opOpen   = "open"
	opRead   = "read"
	opRemove = "remove"
	opRename = "rename"
	opChmod  = "chmod"
	opChown  = "chown"
)

// fault fails the next times calls of op on a path containing path with errno.
// A negative times fails forever. With apply set the call is carried out before
// the error is reported.
type fault struct {
	op    string
	path  string
	errno syscall.Errno
	times int
	apply bool
}

// faultyFs is an afero.Fs that injects errors into selected calls and records
// every call it sees.
type faultyFs struct {
	afero.Fs

	mu     sync.Mutex
	faults []*fault
	calls  []string
	counts map[string]int
}

func newFaultyFs(base afero.Fs) *faultyFs {
	return &faultyFs{Fs: base, counts: make(map[string]int)}
}

func (f *faultyFs) inject(op, path string, errno syscall.Errno, times int) *fault {
	f.mu.Lock()
	defer f.mu.Unlock()
	ft := &fault{op: op, path: path, errno: errno, times: times}
	f.faults = append(f.faults, ft)
	return ft
}

// check records the call and returns the fault that fires for it, if any.
func (f *faultyFs) check(op, name string) *fault {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, op+" "+name)
	f.counts[op]++
	for _, ft := range f.faults {
		if ft.op != op || !strings.Contains(name, ft.path) || ft.times == 0 {
			continue
		}
		if ft.times > 0 {
			ft.times--
		}
		return ft
	}
	return nil
}

func (f *faultyFs) count(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.counts[op]
}

// history returns the recorded calls of op, in order.
func (f *faultyFs) history(op string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, op+" ") {
			out = append(out, strings.TrimPrefix(c, op+" "))
		}
	}
	return out
}

func (f *faultyFs) Open(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDONLY, 0)
}

func (f *faultyFs) Create(name string) (afero.File, error) {
	return f.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o666)
}

func (f *faultyFs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if ft := f.check(opOpen, name); ft != nil {
		return nil, &os.PathError{Op: "open", Path: name, Err: ft.errno}
	}
	file, err := f.Fs.OpenFile(name, flag, perm)
	if err != nil {
		return nil, err
	}
	return &faultyFile{File: file, fs: f}, nil
}

func (f *faultyFs) Remove(name string) error {
	if ft := f.check(opRemove, name); ft != nil {
		return &os.PathError{Op: "remove", Path: name, Err: ft.errno}
	}
	return f.Fs.Remove(name)
}

func (f *faultyFs) Rename(oldname, newname string) error {
	if ft := f.check(opRename, oldname); ft != nil {
		if ft.apply {
			if err := f.Fs.Rename(oldname, newname); err != nil {
				return err
			}
		}
		return &os.LinkError{Op: "rename", Old: oldname, New: newname, Err: ft.errno}
	}
	return f.Fs.Rename(oldname, newname)
}

func (f *faultyFs) Chmod(name string, mode os.FileMode) error {
	if ft := f.check(opChmod, name); ft != nil {
		return &os.PathError{Op: "chmod", Path: name, Err: ft.errno}
	}
	return f.Fs.Chmod(name, mode)
}

func (f *faultyFs) Chown(name string, uid, gid int) error {
	if ft := f.check(opChown, name); ft != nil {
		return &os.PathError{Op: "chown", Path: name, Err: ft.errno}
	}
	return f.Fs.Chown(name, uid, gid)
}

func (f *faultyFs) LstatIfPossible(name string) (os.FileInfo, bool, error) {
	if l, ok := f.Fs.(afero.Lstater); ok {
		return l.LstatIfPossible(name)
	}
	info, err := f.Fs.Stat(name)
	return info, false, err
}

type faultyFile struct {
	afero.File
	fs *faultyFs
}

func (ff *faultyFile) Read(p []byte) (int, error) {
	if ft := ff.fs.check(opRead, ff.Name()); ft != nil {
		return 0, &os.PathError{Op: "read", Path: ff.Name(), Err: ft.errno}
	}
	return ff.File.Read(p)
}

// newTestFS wraps base with a private retry queue and short ceilings so failing
// tests finish quickly. Later options override the defaults.
func newTestFS(t *testing.T, base afero.Fs, opts ...Option) *FS {
	t.Helper()
	q := retryqueue.New(retryqueue.WithTimeout(5 * time.Second))
	defaults := []Option{
		WithRetryQueue(q),
		WithRetryTimeout(5 * time.Second),
		WithSyncRetryTimeout(5 * time.Second),
		WithRenameTimeout(5 * time.Second),
		WithSyncRenameTimeout(5 * time.Second),
		WithPassThrough(false),
	}
	return New(base, append(defaults, opts...)...)
}

// makeTree creates the given files (with their path as content) and directories
// (entries ending in "/") below root.
func makeTree(t *testing.T, fsys afero.Fs, root string, entries ...string) {
	t.Helper()
	for _, e := range entries {
		p := root + "/" + e
		if strings.HasSuffix(e, "/") {
			if err := fsys.MkdirAll(p, 0o755); err != nil {
				t.Fatalf("mkdir %s: %v", p, err)
			}
			continue
		}
		if err := fsys.MkdirAll(p[:strings.LastIndex(p, "/")], 0o755); err != nil {
			t.Fatalf("mkdir parent of %s: %v", p, err)
		}
		if err := afero.WriteFile(fsys, p, []byte(e), 0o644); err != nil {
			t.Fatalf("write %s: %v", p, err)
		}
	}
}
