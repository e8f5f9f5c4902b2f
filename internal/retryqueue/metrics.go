package retryqueue

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	queued   prometheus.Gauge
	enqueued prometheus.Counter
	retries  prometheus.Counter
	timeouts prometheus.Counter
	resets   prometheus.Counter
}

func newMetrics() *metrics {
	opts := func(name, help string) prometheus.Opts {
		return prometheus.Opts{
			Namespace: "fsextender",
			Subsystem: "retry_queue",
			Name:      name,
			Help:      help,
		}
	}
	return &metrics{
		queued:   prometheus.NewGauge(prometheus.GaugeOpts(opts("queued", "Number of operations waiting in the retry queue"))),
		enqueued: prometheus.NewCounter(prometheus.CounterOpts(opts("enqueued_total", "Total number of operations queued after descriptor exhaustion"))),
		retries:  prometheus.NewCounter(prometheus.CounterOpts(opts("retries_total", "Total number of queued operations re-attempted"))),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts(opts("timeouts_total", "Total number of queued operations failed after the timeout"))),
		resets:   prometheus.NewCounter(prometheus.CounterOpts(opts("resets_total", "Total number of queue resets triggered by released descriptors"))),
	}
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.queued, m.enqueued, m.retries, m.timeouts, m.resets}
}

// Register exposes the queue metrics on reg. Registering the same queue twice on
// one registry is not an error.
func (q *Queue) Register(reg prometheus.Registerer) error {
	for _, c := range q.metrics.collectors() {
		if err := reg.Register(c); err != nil {
			var are prometheus.AlreadyRegisteredError
			if errors.As(err, &are) {
				continue
			}
			return err
		}
	}
	return nil
}
