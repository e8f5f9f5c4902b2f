package fsextender

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/afero"

	"github.com/n3okill/fs-extender-sub001/internal/config"
	"github.com/n3okill/fs-extender-sub001/internal/errcode"
	"github.com/n3okill/fs-extender-sub001/internal/retryqueue"
)

const (
	// readRetries bounds the inline EAGAIN retry of File.Read.
	readRetries = 10
	// unlinkBackoffStep is added to the unlink and rename backoff after every attempt.
	unlinkBackoffStep = 10 * time.Millisecond
	// unlinkBackoffCap caps the unlink and rename backoff.
	unlinkBackoffCap = 100 * time.Millisecond
	// fixPermMode is applied to an entry that refuses removal on Windows.
	fixPermMode os.FileMode = 0o666
)

// ErrUnsupported is returned when the wrapped filesystem lacks a capability.
var ErrUnsupported = errors.ErrUnsupported

// FS wraps an afero.Fs. It implements afero.Fs itself, so it can stand in wherever
// the wrapped filesystem was used.
type FS struct {
	base       afero.Fs
	queue      *retryqueue.Queue
	classifier errcode.Classifier
	log        *slog.Logger

	retryTimeout      time.Duration
	syncRetryTimeout  time.Duration
	renameTimeout     time.Duration
	syncRenameTimeout time.Duration

	passThrough     bool
	ignoreClose     bool
	stabilizeRename bool
	windows         bool
	copyBufferSize  int
	concurrency     int

	registerer prometheus.Registerer
	configErr  error
}

// Option is a functional option for configuring FS.
type Option func(*FS)

// WithRetryTimeout bounds asynchronous unlink retries.
func WithRetryTimeout(d time.Duration) Option {
	return func(f *FS) {
		f.retryTimeout = d
	}
}

// WithSyncRetryTimeout bounds blocking unlink retries.
func WithSyncRetryTimeout(d time.Duration) Option {
	return func(f *FS) {
		f.syncRetryTimeout = d
	}
}

// WithRenameTimeout bounds the asynchronous rename stabilizer.
func WithRenameTimeout(d time.Duration) Option {
	return func(f *FS) {
		f.renameTimeout = d
	}
}

// WithSyncRenameTimeout bounds the blocking rename stabilizer.
func WithSyncRenameTimeout(d time.Duration) Option {
	return func(f *FS) {
		f.syncRenameTimeout = d
	}
}

// WithPassThrough disables every retry and recovery path, exposing raw OS semantics.
func WithPassThrough(enabled bool) Option {
	return func(f *FS) {
		f.passThrough = enabled
	}
}

// WithRenameStabilizer turns the rename stabilizer on or off. It is on by default
// only on Windows.
func WithRenameStabilizer(enabled bool) Option {
	return func(f *FS) {
		f.stabilizeRename = enabled
	}
}

// WithRetryQueue replaces the process-wide retry queue.
func WithRetryQueue(q *retryqueue.Queue) Option {
	return func(f *FS) {
		f.queue = q
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(f *FS) {
		if l != nil {
			f.log = l
		}
	}
}

// WithMetrics registers the metrics of the retry queue in use on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(f *FS) {
		f.registerer = reg
	}
}

// WithCopyBufferSize sets the buffer size used by CopyFile.
func WithCopyBufferSize(size int) Option {
	return func(f *FS) {
		if size > 0 {
			f.copyBufferSize = size
		}
	}
}

// WithConcurrency bounds how many sibling entries the asynchronous remover
// processes at once.
func WithConcurrency(n int) Option {
	return func(f *FS) {
		if n > 0 {
			f.concurrency = n
		}
	}
}

// New wraps base. Tunables are read from the FS_EXTENDER_* environment first and
// then overridden by opts.
func New(base afero.Fs, opts ...Option) *FS {
	cfg, cfgErr := config.Load()
	f := &FS{
		base:              base,
		queue:             retryqueue.Default(),
		classifier:        errcode.Default,
		log:               slog.New(slog.DiscardHandler),
		retryTimeout:      cfg.RetryTimeout,
		syncRetryTimeout:  cfg.SyncRetryTimeout,
		renameTimeout:     cfg.RenameTimeout,
		syncRenameTimeout: cfg.SyncRenameTimeout,
		passThrough:       cfg.PassThrough,
		ignoreClose:       cfg.IgnoreClose,
		windows:           runtime.GOOS == "windows",
		copyBufferSize:    32 * 1024, // default 32KB
		concurrency:       16,
		configErr:         cfgErr,
	}
	f.stabilizeRename = f.windows
	for _, opt := range opts {
		opt(f)
	}
	if cfgErr != nil {
		f.log.Warn("ignoring invalid environment tunables", "error", cfgErr)
	}
	if f.registerer != nil {
		if err := f.queue.Register(f.registerer); err != nil {
			f.log.Warn("registering retry queue metrics", "error", err)
		}
	}
	return f
}

// NewOsFs wraps the operating system filesystem.
func NewOsFs(opts ...Option) *FS {
	return New(&OsFs{}, opts...)
}

// Name returns the name of the filesystem
func (f *FS) Name() string {
	return "fsextender(" + f.base.Name() + ")"
}

// Base returns the wrapped filesystem.
func (f *FS) Base() afero.Fs {
	return f.base
}

// ConfigErr returns the problem found in the FS_EXTENDER_* environment when f
// was created. Invalid values were replaced by their defaults.
func (f *FS) ConfigErr() error {
	return f.configErr
}

// QueueStats returns a snapshot of the retry queue used by f.
func (f *FS) QueueStats() retryqueue.Stats {
	return f.queue.Stats()
}

func (f *FS) classify(op errcode.Op, err error) errcode.Class {
	if f.passThrough {
		if err == nil {
			return errcode.None
		}
		return errcode.Fatal
	}
	return f.classifier.Classify(op, err)
}

// cleanPath normalizes a path
func cleanPath(path string) string {
	return filepath.Clean(path)
}

// isRoot reports whether path names the root of its volume.
func isRoot(path string) bool {
	path = cleanPath(path)
	vol := filepath.VolumeName(path)
	rest := path[len(vol):]
	return rest == string(filepath.Separator) || (vol != "" && rest == "")
}
