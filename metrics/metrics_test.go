package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/typecd/typec"
)

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveSnapshot(typec.Snapshot{})
		m.ObserveSwitch(typec.RoleKindMode, typec.StatusError)
		m.ObserveCommand(typec.CommandResult{})
		m.ObserveRecord("refresh")
		m.ObserveDualReset()
		m.ObserveOverheat(1, 2, 3)
	})
}

func TestObserveSnapshot(t *testing.T) {
	m := New(prometheus.NewRegistry())

	connected := typec.NewPortStatus("port0")
	connected.CurrentPowerRole = typec.PowerRoleSink
	m.ObserveSnapshot(typec.Snapshot{
		Ports:  []typec.PortStatus{connected, typec.NewPortStatus("port1")},
		Status: typec.StatusSuccess,
	})
	m.ObserveSnapshot(typec.Snapshot{Status: typec.StatusError})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.refreshes.WithLabelValues("error")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ports))
}

func TestObserveSwitchAndRecords(t *testing.T) {
	m := New(nil)

	m.ObserveSwitch(typec.RoleKindData, typec.StatusSuccess)
	m.ObserveSwitch(typec.RoleKindData, typec.StatusSuccess)
	m.ObserveRecord("partner")
	m.ObserveDualReset()
	m.ObserveOverheat(30, 40, 50)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.switches.WithLabelValues("data", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.records.WithLabelValues("partner")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sweeps))
	assert.Equal(t, 40.0, testutil.ToFloat64(m.overheatHysteresis))
}

func TestHandler(t *testing.T) {
	m := New(nil)
	m.ObserveCommand(typec.CommandResult{Kind: typec.CommandQueryPortStatus})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	require.Equal(t, 200, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(),
		`typecd_commands_total{command="query_port_status",status="success"} 1`))
}
