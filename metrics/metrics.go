// Package metrics exports typecd activity as Prometheus metrics.
//
// A nil *Metrics is valid and records nothing, so components accept one
// unconditionally.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ardnew/typecd/typec"
)

const namespace = "typecd"

// Metrics holds the typecd collectors.
type Metrics struct {
	refreshes      *prometheus.CounterVec
	ports          prometheus.Gauge
	connectedPorts prometheus.Gauge
	switches       *prometheus.CounterVec
	commands       *prometheus.CounterVec
	records        *prometheus.CounterVec
	sweeps         prometheus.Counter

	overheatTrip       prometheus.Gauge
	overheatHysteresis prometheus.Gauge
	overheatCleared    prometheus.Gauge
	overheatEvents     prometheus.Counter

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg
// selects a private registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	m := &Metrics{
		refreshes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "status_refreshes_total",
			Help:      "Port status refreshes by overall status.",
		}, []string{"status"}),
		ports: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ports",
			Help:      "Type-C ports in the last published snapshot.",
		}),
		connectedPorts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ports_connected",
			Help:      "Ports with a power role in the last published snapshot.",
		}),
		switches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "role_switches_total",
			Help:      "Role switch requests by role kind and result.",
		}, []string{"kind", "status"}),
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "commands_total",
			Help:      "Commands by kind and result.",
		}, []string{"command", "status"}),
		records: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uevent_records_total",
			Help:      "Classified uevent records by action.",
		}, []string{"action"}),
		sweeps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dual_role_resets_total",
			Help:      "Disconnected ports forced back to dual-role mode.",
		}),
		overheatTrip: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "overheat",
			Name:      "time_to_overheat_seconds",
			Help:      "Seconds from plug-in to the last overheat trip.",
		}),
		overheatHysteresis: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "overheat",
			Name:      "time_to_hysteresis_seconds",
			Help:      "Seconds from trip to hysteresis of the last overheat event.",
		}),
		overheatCleared: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "overheat",
			Name:      "time_to_inactive_seconds",
			Help:      "Seconds from trip to clearing of the last overheat event.",
		}),
		overheatEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "overheat",
			Name:      "events_total",
			Help:      "Overheat events reported by the port cooling device.",
		}),
		gatherer: reg,
	}
	reg.MustRegister(
		m.refreshes, m.ports, m.connectedPorts, m.switches, m.commands,
		m.records, m.sweeps, m.overheatTrip, m.overheatHysteresis,
		m.overheatCleared, m.overheatEvents,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// Gatherer returns the registry the collectors are registered with.
func (m *Metrics) Gatherer() prometheus.Gatherer { return m.gatherer }

// ObserveSnapshot records a published snapshot.
func (m *Metrics) ObserveSnapshot(snap typec.Snapshot) {
	if m == nil {
		return
	}
	m.refreshes.WithLabelValues(snap.Status.String()).Inc()
	m.ports.Set(float64(len(snap.Ports)))
	connected := 0
	for _, p := range snap.Ports {
		if p.CurrentPowerRole != typec.PowerRoleNone {
			connected++
		}
	}
	m.connectedPorts.Set(float64(connected))
}

// ObserveSwitch records the result of a role switch.
func (m *Metrics) ObserveSwitch(kind typec.RoleKind, status typec.Status) {
	if m == nil {
		return
	}
	m.switches.WithLabelValues(kind.String(), status.String()).Inc()
}

// ObserveCommand records a command result.
func (m *Metrics) ObserveCommand(res typec.CommandResult) {
	if m == nil {
		return
	}
	m.commands.WithLabelValues(res.Kind.String(), res.Status.String()).Inc()
}

// ObserveRecord records the classification of one uevent record.
func (m *Metrics) ObserveRecord(action string) {
	if m == nil {
		return
	}
	m.records.WithLabelValues(action).Inc()
}

// ObserveDualReset records a port forced back to dual-role mode.
func (m *Metrics) ObserveDualReset() {
	if m == nil {
		return
	}
	m.sweeps.Inc()
}

// ObserveOverheat records the timing statistics of an overheat event.
func (m *Metrics) ObserveOverheat(trip, hysteresis, cleared int) {
	if m == nil {
		return
	}
	m.overheatEvents.Inc()
	m.overheatTrip.Set(float64(trip))
	m.overheatHysteresis.Set(float64(hysteresis))
	m.overheatCleared.Set(float64(cleared))
}
