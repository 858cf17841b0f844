package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder collects bot metrics. A nil *Recorder is valid and records nothing.
type Recorder struct {
	cycles        prometheus.Counter
	cycleDuration prometheus.Histogram
	transitions   *prometheus.CounterVec
	notifications *prometheus.CounterVec
	fetches       *prometheus.CounterVec
	saveErrors    prometheus.Counter
	openPositions prometheus.Gauge
}

func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// New registers the collectors on reg.
func New(reg *prometheus.Registry) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		cycles: f.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_cycles_total",
			Help: "Completed evaluation cycles",
		}),
		cycleDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "signal_bot_cycle_duration_seconds",
			Help:    "Duration of one evaluation cycle",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10),
		}),
		transitions: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_bot_transitions_total",
			Help: "Position transitions by kind",
		}, []string{"kind"}),
		notifications: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_bot_notifications_total",
			Help: "Notifications by result (sent, suppressed, failed, disabled)",
		}, []string{"result"}),
		fetches: f.NewCounterVec(prometheus.CounterOpts{
			Name: "signal_bot_fetch_total",
			Help: "Price history fetch attempts by interval and result",
		}, []string{"interval", "result"}),
		saveErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "signal_bot_state_save_errors_total",
			Help: "Failed state file writes",
		}),
		openPositions: f.NewGauge(prometheus.GaugeOpts{
			Name: "signal_bot_open_positions",
			Help: "Currently open positions",
		}),
	}
}

func (r *Recorder) CycleDone(d time.Duration) {
	if r == nil {
		return
	}
	r.cycles.Inc()
	r.cycleDuration.Observe(d.Seconds())
}

func (r *Recorder) Transition(kind string) {
	if r == nil {
		return
	}
	r.transitions.WithLabelValues(kind).Inc()
}

func (r *Recorder) Notification(result string) {
	if r == nil {
		return
	}
	r.notifications.WithLabelValues(result).Inc()
}

func (r *Recorder) Fetch(interval, result string) {
	if r == nil {
		return
	}
	r.fetches.WithLabelValues(interval, result).Inc()
}

func (r *Recorder) SaveError() {
	if r == nil {
		return
	}
	r.saveErrors.Inc()
}

func (r *Recorder) OpenPositions(n int) {
	if r == nil {
		return
	}
	r.openPositions.Set(float64(n))
}
