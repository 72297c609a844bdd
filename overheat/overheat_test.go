package overheat

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/typecd/metrics"
	"github.com/ardnew/typecd/pkg"
)

func writeStats(t *testing.T, stats map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, value := range stats {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(value+"\n"), 0o644))
	}
	return dir
}

func TestReporter_Read(t *testing.T) {
	dir := writeStats(t, map[string]string{
		AttrTripTime:       "12",
		AttrHysteresisTime: "30",
		AttrClearedTime:    "95",
	})

	ev, err := NewReporter(dir, nil).Read()
	require.NoError(t, err)
	assert.Equal(t, Event{
		TimeToOverheat:   12 * time.Second,
		TimeToHysteresis: 30 * time.Second,
		TimeToInactive:   95 * time.Second,
	}, ev)
}

func TestReporter_ReadMissing(t *testing.T) {
	dir := writeStats(t, map[string]string{AttrTripTime: "12"})

	_, err := NewReporter(dir, nil).Read()
	assert.ErrorIs(t, err, pkg.ErrIO)
}

func TestReporter_ReadGarbage(t *testing.T) {
	dir := writeStats(t, map[string]string{
		AttrTripTime:       "soon",
		AttrHysteresisTime: "30",
		AttrClearedTime:    "95",
	})

	_, err := NewReporter(dir, nil).Read()
	assert.ErrorIs(t, err, pkg.ErrIO)
}

func TestReporter_Report(t *testing.T) {
	dir := writeStats(t, map[string]string{
		AttrTripTime:       "1",
		AttrHysteresisTime: "2",
		AttrClearedTime:    "3",
	})
	m := metrics.New(prometheus.NewRegistry())
	r := NewReporter(dir, m)

	_, ok := r.Last()
	assert.False(t, ok)

	r.Report()

	ev, ok := r.Last()
	require.True(t, ok)
	assert.Equal(t, 3*time.Second, ev.TimeToInactive)
}

func TestReporter_ReportFailureKeepsLast(t *testing.T) {
	r := NewReporter(filepath.Join(t.TempDir(), "absent"), nil)
	r.Report()

	_, ok := r.Last()
	assert.False(t, ok)
}

func TestNewReporter_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultStatsPath, NewReporter("", nil).path)
}
