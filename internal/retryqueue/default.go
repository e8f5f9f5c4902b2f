package retryqueue

import (
	"sync"

	"github.com/n3okill/fs-extender-sub001/internal/config"
)

var (
	defaultOnce  sync.Once
	defaultQueue *Queue
)

// Default returns the process-wide queue, created on first use with the timeout from
// the FS_EXTENDER_TIMEOUT tunable. Descriptor exhaustion is a whole-process condition,
// so every FS shares this queue unless it is given another one.
func Default() *Queue {
	defaultOnce.Do(func() {
		defaultQueue = newDefault(config.Load)
	})
	return defaultQueue
}

// newDefault builds a queue from the loaded tunables. A load error leaves the
// built-in timeout in place and is logged on the queue; the root package also
// reports it through FS.ConfigErr.
func newDefault(load func() (config.Config, error), opts ...Option) *Queue {
	cfg, err := load()
	q := New(append([]Option{WithTimeout(cfg.RetryTimeout)}, opts...)...)
	if err != nil {
		q.log.Warn("invalid retry configuration", "error", err, "timeout", q.timeout)
	}
	return q
}
