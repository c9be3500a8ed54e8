package alert

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts scheduler activity. Constructed against an explicit
// registry and passed in; the package keeps no process-global state so two
// schedulers in one test binary cannot collide.
type Metrics struct {
	runs           prometheus.Counter
	clientsChecked prometheus.Counter
	alertsSent     prometheus.Counter
	clientFailures *prometheus.CounterVec
}

// NewMetrics registers the scheduler counters on the given registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		runs: f.NewCounter(prometheus.CounterOpts{
			Name: "alert_runs_total",
			Help: "Number of alert scheduler runs.",
		}),
		clientsChecked: f.NewCounter(prometheus.CounterOpts{
			Name: "alert_clients_checked_total",
			Help: "Number of client evaluations across all runs.",
		}),
		alertsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "alert_notifications_sent_total",
			Help: "Number of client notifications dispatched.",
		}),
		clientFailures: f.NewCounterVec(prometheus.CounterOpts{
			Name: "alert_client_failures_total",
			Help: "Per-client failures absorbed by the run, by stage.",
		}, []string{"stage"}),
	}
}

// All methods are nil-safe so a scheduler without metrics wiring works.

func (m *Metrics) run() {
	if m != nil {
		m.runs.Inc()
	}
}

func (m *Metrics) checked(n int) {
	if m != nil {
		m.clientsChecked.Add(float64(n))
	}
}

func (m *Metrics) sent() {
	if m != nil {
		m.alertsSent.Inc()
	}
}

func (m *Metrics) failed(stage string) {
	if m != nil {
		m.clientFailures.WithLabelValues(stage).Inc()
	}
}
