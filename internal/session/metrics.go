package session

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/roach88/campusnav/internal/navstate"
)

// Metrics counts what sessions do. One Metrics may be shared by many
// sessions; counters are safe for concurrent use.
type Metrics struct {
	transitions  *prometheus.CounterVec
	suppressions *prometheus.CounterVec
	commands     *prometheus.CounterVec
	loadFailures prometheus.Counter
}

// NewMetrics creates the session collectors and registers them on reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusnav",
			Name:      "transitions_total",
			Help:      "Navigation state transitions by kind.",
		}, []string{"kind"}),
		suppressions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusnav",
			Name:      "guard_suppressions_total",
			Help:      "Updates dropped because a guard was up, by guard.",
		}, []string{"guard"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "campusnav",
			Name:      "commands_total",
			Help:      "Commands applied by session loops, by command.",
		}, []string{"command"}),
		loadFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "campusnav",
			Name:      "facility_load_failures_total",
			Help:      "Facility fetches that returned an error.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.transitions, m.suppressions, m.commands, m.loadFailures)
	}
	return m
}

func (m *Metrics) observeTransition(t navstate.Transition) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(t.Kind)).Inc()
	switch t.Kind {
	case navstate.KindResolveSuppressed, navstate.KindLocationSuppressed:
		m.suppressions.WithLabelValues("closing").Inc()
	case navstate.KindSyncSuppressed:
		m.suppressions.WithLabelValues("navigation").Inc()
	}
}

func (m *Metrics) observeCommand(k CommandKind) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(k.String()).Inc()
}

func (m *Metrics) observeLoadFailure() {
	if m == nil {
		return
	}
	m.loadFailures.Inc()
}
