// Package retryqueue implements the process-wide queue that retries operations which
// failed because the process ran out of file descriptors.
//
// A single coalesced timer tick services the queue head. Entries that are not yet due
// are requeued at the tail so they never block entries that are. Any successful close
// anywhere in the process should call Reset, because a freed descriptor may let every
// queued operation succeed.
package retryqueue

import (
	"log/slog"
	"sync"
	"time"
)

const (
	// DefaultTimeout is the overall ceiling for an entry, measured from its first attempt.
	DefaultTimeout = 60 * time.Second
	// DefaultTick is the delay between two scheduler ticks.
	DefaultTick = time.Millisecond
	// DefaultMaxDelay caps the backoff between two attempts of one entry.
	DefaultMaxDelay = 100 * time.Millisecond
)

// Entry is one deferred operation.
type Entry struct {
	// Op names the operation for logs.
	Op string
	// Run re-attempts the operation. It receives the time of the first attempt and is
	// expected to Enqueue itself again on another descriptor-exhaustion failure.
	Run func(firstAttemptAt time.Time)
	// Fail completes the operation with its last error once the timeout is exceeded.
	Fail func(err error)
	// Err is the last observed error.
	Err error
	// FirstAttemptAt is zero for an entry that was never attempted.
	FirstAttemptAt time.Time
	LastAttemptAt  time.Time
}

// Stats is a snapshot of queue activity.
type Stats struct {
	Queued   int
	Enqueued uint64
	Retries  uint64
	Timeouts uint64
	Resets   uint64
	Timeout  time.Duration
}

// Queue is a FIFO of deferred operations driven by one pending tick at a time.
type Queue struct {
	mu       sync.Mutex
	entries  []*Entry
	armed    bool
	timeout  time.Duration
	tick     time.Duration
	maxDelay time.Duration
	now      func() time.Time
	log      *slog.Logger
	metrics  *metrics

	enqueued uint64
	retries  uint64
	timeouts uint64
	resets   uint64
}

// Option configures a Queue.
type Option func(*Queue)

// WithTimeout sets the overall per-entry ceiling.
func WithTimeout(d time.Duration) Option {
	return func(q *Queue) {
		q.timeout = d
	}
}

// WithTick sets the scheduler tick delay.
func WithTick(d time.Duration) Option {
	return func(q *Queue) {
		q.tick = d
	}
}

// WithMaxDelay caps the per-entry backoff.
func WithMaxDelay(d time.Duration) Option {
	return func(q *Queue) {
		q.maxDelay = d
	}
}

// WithLogger sets the logger used for retry and timeout records.
func WithLogger(l *slog.Logger) Option {
	return func(q *Queue) {
		if l != nil {
			q.log = l
		}
	}
}

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) {
		q.now = now
	}
}

// New creates an empty queue.
func New(opts ...Option) *Queue {
	q := &Queue{
		timeout:  DefaultTimeout,
		tick:     DefaultTick,
		maxDelay: DefaultMaxDelay,
		now:      time.Now,
		log:      slog.New(slog.DiscardHandler),
		metrics:  newMetrics(),
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue appends e and arms the scheduler if no tick is pending.
func (q *Queue) Enqueue(e *Entry) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.entries = append(q.entries, e)
	q.enqueued++
	q.metrics.enqueued.Inc()
	q.metrics.queued.Set(float64(len(q.entries)))
	q.log.Debug("operation queued", "op", e.Op, "error", e.Err, "queued", len(q.entries))
	q.armLocked()
}

// Reset marks every queued entry as attempted just now, restarting its timeout and
// backoff, and makes sure a tick is pending. Call it whenever a descriptor is released.
func (q *Queue) Reset() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.entries) == 0 {
		return
	}
	now := q.now()
	for _, e := range q.entries {
		e.FirstAttemptAt = now
		e.LastAttemptAt = now
	}
	q.resets++
	q.metrics.resets.Inc()
	q.armLocked()
}

// Len returns the number of queued entries.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries)
}

// Stats returns a snapshot of queue counters.
func (q *Queue) Stats() Stats {
	q.mu.Lock()
	defer q.mu.Unlock()

	return Stats{
		Queued:   len(q.entries),
		Enqueued: q.enqueued,
		Retries:  q.retries,
		Timeouts: q.timeouts,
		Resets:   q.resets,
		Timeout:  q.timeout,
	}
}

// Timeout returns the per-entry ceiling.
func (q *Queue) Timeout() time.Duration {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.timeout
}

func (q *Queue) armLocked() {
	if q.armed || len(q.entries) == 0 {
		return
	}
	q.armed = true
	time.AfterFunc(q.tick, q.retry)
}

// retry services the head entry: runs it when never attempted or when its backoff has
// elapsed, fails it once the timeout is exceeded, and requeues it otherwise.
func (q *Queue) retry() {
	q.mu.Lock()
	q.armed = false
	if len(q.entries) == 0 {
		q.mu.Unlock()
		return
	}

	e := q.entries[0]
	q.entries[0] = nil
	q.entries = q.entries[1:]

	var run, fail bool
	now := q.now()
	switch {
	case e.FirstAttemptAt.IsZero():
		run = true
	case now.Sub(e.FirstAttemptAt) >= q.timeout:
		fail = true
		q.timeouts++
		q.metrics.timeouts.Inc()
	default:
		if now.Sub(e.LastAttemptAt) >= q.backoff(e) {
			run = true
		} else {
			q.entries = append(q.entries, e)
		}
	}
	if run {
		q.retries++
		q.metrics.retries.Inc()
	}
	q.metrics.queued.Set(float64(len(q.entries)))
	q.armLocked()
	q.mu.Unlock()

	switch {
	case run:
		q.log.Debug("retrying operation", "op", e.Op, "error", e.Err)
		go e.Run(e.FirstAttemptAt)
	case fail:
		q.log.Warn("operation timed out in retry queue", "op", e.Op, "error", e.Err, "timeout", q.timeout)
		if e.Fail != nil {
			go e.Fail(e.Err)
		}
	}
}

// backoff is 1.2 times the span already spent retrying, at least 1ms of it and capped
// at maxDelay.
func (q *Queue) backoff(e *Entry) time.Duration {
	spent := max(e.LastAttemptAt.Sub(e.FirstAttemptAt), time.Millisecond)
	return min(spent*6/5, q.maxDelay)
}
