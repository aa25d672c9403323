package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "godlike"

// Outcome labels for CommandHandled.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds the bot collectors.
type Metrics struct {
	registry        *prometheus.Registry
	commands        *prometheus.CounterVec
	dice            *prometheus.CounterVec
	rollLogFailures prometheus.Counter
	sheetSessions   prometheus.Gauge
}

// New registers the bot collectors, plus Go runtime and process collectors,
// in a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands and interactions handled, by outcome.",
		}, []string{"command", "outcome"}),
		dice: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dice_total",
			Help:      "Dice requested in accepted rolls, by kind.",
		}, []string{"kind"}),
		rollLogFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "roll_log_failures_total",
			Help:      "Roll requests whose results could not be logged.",
		}),
		sheetSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sheet_sessions",
			Help:      "Interactive character sheets currently open.",
		}),
	}
	m.registry.MustRegister(
		m.commands,
		m.dice,
		m.rollLogFailures,
		m.sheetSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// CommandHandled counts one handled command or interaction.
func (m *Metrics) CommandHandled(command, outcome string) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(command, outcome).Inc()
}

// DiceRolled adds the dice of one accepted roll.
func (m *Metrics) DiceRolled(regular, hard, wiggle int) {
	if m == nil {
		return
	}
	m.dice.WithLabelValues("regular").Add(float64(regular))
	m.dice.WithLabelValues("hard").Add(float64(hard))
	m.dice.WithLabelValues("wiggle").Add(float64(wiggle))
}

// RollLogFailed counts one roll whose log write failed.
func (m *Metrics) RollLogFailed() {
	if m == nil {
		return
	}
	m.rollLogFailures.Inc()
}

// SheetOpened increments the open sheet gauge.
func (m *Metrics) SheetOpened() {
	if m == nil {
		return
	}
	m.sheetSessions.Inc()
}

// SheetClosed decrements the open sheet gauge.
func (m *Metrics) SheetClosed() {
	if m == nil {
		return
	}
	m.sheetSessions.Dec()
}
