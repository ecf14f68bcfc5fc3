// Package metrics exports loop counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sweeney/alarmd/internal/logic"
)

// Metrics implements logic.Recorder. It registers on its own registry so
// several engines can run in one test binary.
type Metrics struct {
	reg        *prometheus.Registry
	events     *prometheus.CounterVec
	suppressed *prometheus.CounterVec
	faults     *prometheus.GaugeVec
	ticks      prometheus.Counter
}

// New creates and registers the collectors.
func New() *Metrics {
	m := &Metrics{
		reg: prometheus.NewRegistry(),
		events: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmd_events_total",
				Help: "Events yielded by the fusion loop",
			},
			[]string{"event"},
		),
		suppressed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alarmd_suppressed_triggers_total",
				Help: "Sensor triggers that raised no event",
			},
			[]string{"sensor", "reason"},
		),
		faults: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "alarmd_sensor_fault_count",
				Help: "Current fault count per sensor",
			},
			[]string{"sensor"},
		),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alarmd_loop_passes_total",
			Help: "Passes through the fusion loop",
		}),
	}
	m.reg.MustRegister(m.events, m.suppressed, m.faults, m.ticks)
	return m
}

func (m *Metrics) Event(ev logic.Event) {
	m.events.WithLabelValues(string(ev)).Inc()
}

func (m *Metrics) Suppressed(sensor string, v logic.Verdict) {
	m.suppressed.WithLabelValues(sensor, v.String()).Inc()
}

func (m *Metrics) FaultCount(sensor string, n int) {
	m.faults.WithLabelValues(sensor).Set(float64(n))
}

func (m *Metrics) Tick() {
	m.ticks.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}
