// Package metrics exposes the reactor's internal health signals as
// prometheus collectors (mailbox depth, per-event latency, animation batch
// size, transaction settling counts), registered against their own
// registry rather than the global default so tests can spin up an isolated
// instance per reactor, the way DimaJoyti-AIOS mounts promhttp.Handler()
// over its own *prometheus.Registry in cmd/aios-daemon.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry bundles every collector the reactor touches. One per process.
type Registry struct {
	reg *prometheus.Registry

	MailboxDepth     prometheus.Gauge
	EventLatency     *prometheus.HistogramVec
	AnimationBatch   prometheus.Histogram
	SettlingWindows  prometheus.Counter
	ActivationExpiry prometheus.Counter
}

func New() *Registry {
	reg := prometheus.NewRegistry()

	r := &Registry{
		reg: reg,
		MailboxDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "riftwm",
			Subsystem: "reactor",
			Name:      "mailbox_depth",
			Help:      "Number of items currently queued in the reactor mailbox.",
		}),
		EventLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "riftwm",
			Subsystem: "reactor",
			Name:      "event_latency_seconds",
			Help:      "Time spent handling one mailbox item, by event kind.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"kind"}),
		AnimationBatch: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "riftwm",
			Subsystem: "animation",
			Name:      "batch_size",
			Help:      "Number of windows updated in one display-link tick.",
			Buckets:   []float64{1, 2, 4, 8, 16, 32},
		}),
		SettlingWindows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftwm",
			Subsystem: "txstore",
			Name:      "settling_total",
			Help:      "Number of frame-changed notifications suppressed during the post-clear settling cooldown.",
		}),
		ActivationExpiry: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "riftwm",
			Subsystem: "app",
			Name:      "activation_expired_total",
			Help:      "Number of activation handshakes that hit the 1s deadline without an observed echo.",
		}),
	}

	reg.MustRegister(r.MailboxDepth, r.EventLatency, r.AnimationBatch, r.SettlingWindows, r.ActivationExpiry)
	return r
}

func (r *Registry) Registry() *prometheus.Registry { return r.reg }

// ObserveEvent is a small helper for timing one mailbox dispatch: call with
// defer and the start time to record both kind and latency in one line.
func (r *Registry) ObserveEvent(kind string, start time.Time) {
	r.EventLatency.WithLabelValues(kind).Observe(time.Since(start).Seconds())
}
