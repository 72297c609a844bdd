package overheat

import (
	"fmt"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/ardnew/typecd/metrics"
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec/sysfs"
)

// DefaultStatsPath is the cooling device statistics directory.
const DefaultStatsPath = "/sys/devices/platform/google,usbc_port_cooling_dev"

// Statistics attribute names.
const (
	AttrTripTime       = "trip_time"
	AttrHysteresisTime = "hysteresis_time"
	AttrClearedTime    = "cleared_time"
)

// Event is one set of cooling device statistics.
type Event struct {
	TimeToOverheat   time.Duration
	TimeToHysteresis time.Duration
	TimeToInactive   time.Duration
}

// Reporter reads cooling device statistics.
type Reporter struct {
	path    string
	metrics *metrics.Metrics

	mu   sync.Mutex
	last Event
	seen bool
}

// NewReporter creates a reporter reading from path; empty selects
// [DefaultStatsPath].
func NewReporter(path string, m *metrics.Metrics) *Reporter {
	if path == "" {
		path = DefaultStatsPath
	}
	return &Reporter{path: path, metrics: m}
}

// Read returns the current statistics. All three attributes must be
// readable integers.
func (r *Reporter) Read() (Event, error) {
	var secs [3]int
	for i, name := range []string{AttrTripTime, AttrHysteresisTime, AttrClearedTime} {
		v, err := sysfs.ReadAttr(filepath.Join(r.path, name))
		if err != nil {
			return Event{}, fmt.Errorf("read %s: %w", name, err)
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return Event{}, fmt.Errorf("%w: %s=%q", pkg.ErrIO, name, v)
		}
		secs[i] = n
	}
	return Event{
		TimeToOverheat:   time.Duration(secs[0]) * time.Second,
		TimeToHysteresis: time.Duration(secs[1]) * time.Second,
		TimeToInactive:   time.Duration(secs[2]) * time.Second,
	}, nil
}

// Report reads the statistics and records them. Read failures are logged.
func (r *Reporter) Report() {
	ev, err := r.Read()
	if err != nil {
		pkg.LogError(pkg.ComponentOverheat, "unable to read cooling device statistics", "err", err)
		return
	}

	r.mu.Lock()
	r.last, r.seen = ev, true
	r.mu.Unlock()

	r.metrics.ObserveOverheat(
		int(ev.TimeToOverheat/time.Second),
		int(ev.TimeToHysteresis/time.Second),
		int(ev.TimeToInactive/time.Second),
	)
	pkg.LogInfo(pkg.ComponentOverheat, "usb port overheat",
		"trip", ev.TimeToOverheat,
		"hysteresis", ev.TimeToHysteresis,
		"cleared", ev.TimeToInactive)
}

// Last returns the most recently reported event.
func (r *Reporter) Last() (Event, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.last, r.seen
}
