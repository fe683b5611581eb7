package mdpreview

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Stage outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeFailed  = "failed"
	outcomeSkipped = "skipped"
)

// Metrics exposes chain and preview counters to Prometheus.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	stageTotal    *prometheus.CounterVec
	stageDuration *prometheus.HistogramVec
	loadTotal     *prometheus.CounterVec
	printTotal    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil registerer leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		stageTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdpreview",
			Name:      "stage_total",
			Help:      "Conversion stage attempts by stage and outcome.",
		}, []string{"stage", "outcome"}),
		stageDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "mdpreview",
			Name:      "stage_duration_seconds",
			Help:      "Duration of conversion stages that ran.",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"stage"}),
		loadTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdpreview",
			Name:      "load_total",
			Help:      "Preview loads by result.",
		}, []string{"result"}),
		printTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "mdpreview",
			Name:      "print_total",
			Help:      "Print requests by method.",
		}, []string{"method"}),
	}
	if reg != nil {
		reg.MustRegister(m.stageTotal, m.stageDuration, m.loadTotal, m.printTotal)
	}
	return m
}

func (m *Metrics) observeStage(stage Stage, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.stageTotal.WithLabelValues(stage.String(), outcome).Inc()
	if outcome != outcomeSkipped {
		m.stageDuration.WithLabelValues(stage.String()).Observe(d.Seconds())
	}
}

func (m *Metrics) observeLoad(result string) {
	if m == nil {
		return
	}
	m.loadTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) observePrint(method string) {
	if m == nil {
		return
	}
	m.printTotal.WithLabelValues(method).Inc()
}
