package status

import (
	"errors"
	"strings"
	"sync/atomic"

	"github.com/ardnew/typecd/metrics"
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
	"github.com/ardnew/typecd/typec/sysfs"
)

// Store is the subset of the port attribute store the aggregator reads.
type Store interface {
	Enumerate() ([]typec.Port, error)
	ReadRole(port string, kind typec.RoleKind) (typec.Role, error)
	Accessory(port string) (string, error)
	SupportsPD(port string) bool
	ComplianceReasons(port string) (string, error)
}

// Config holds the platform attribute paths used while aggregating.
type Config struct {
	// PowerSupplyUsbType is the USB power supply usb_type attribute.
	PowerSupplyUsbType string
	// PogoUsbActive reports USB routed through the pogo dock.
	PogoUsbActive string
	// InputPowerLimitedWarning reports "other" compliance reasons as
	// INPUT_POWER_LIMITED instead of OTHER.
	InputPowerLimitedWarning bool
}

// Aggregator builds port status snapshots and publishes them.
type Aggregator struct {
	store   Store
	sync    *typec.Sync
	pub     typec.Publisher
	cfg     Config
	tcpc    *sysfs.TCPC
	session DataSessionMonitor
	metrics *metrics.Metrics
	probes  []Probe

	dataDisabled atomic.Bool
}

// Option configures an [Aggregator].
type Option func(*Aggregator)

// WithTCPC sets the port controller locator used by the contaminant and
// power limit probes. Without it both probes report an error and leave
// their defaults.
func WithTCPC(t *sysfs.TCPC) Option {
	return func(a *Aggregator) { a.tcpc = t }
}

// WithDataSessionMonitor sets the data session compliance source.
func WithDataSessionMonitor(m DataSessionMonitor) Option {
	return func(a *Aggregator) { a.session = m }
}

// WithMetrics records every published snapshot.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// New creates an aggregator publishing through pub while holding the status
// lock of s.
func New(store Store, s *typec.Sync, pub typec.Publisher, cfg Config, opts ...Option) *Aggregator {
	a := &Aggregator{
		store: store,
		sync:  s,
		pub:   pub,
		cfg:   cfg,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.probes = []Probe{
		&contaminantProbe{tcpc: a.tcpc},
		&powerLimitProbe{tcpc: a.tcpc},
		&complianceProbe{store: store, inputPowerLimited: cfg.InputPowerLimitedWarning},
		&dataSessionProbe{monitor: a.session},
	}
	return a
}

// SetUsbDataEnabled records whether USB data signaling was disabled by
// command; disabled ports report DISABLED_FORCE.
func (a *Aggregator) SetUsbDataEnabled(enabled bool) {
	a.dataDisabled.Store(!enabled)
}

// UsbDataEnabled reports the value last set with SetUsbDataEnabled.
func (a *Aggregator) UsbDataEnabled() bool {
	return !a.dataDisabled.Load()
}

// Refresh builds a snapshot and publishes it exactly once. The status lock
// is held for the whole call.
func (a *Aggregator) Refresh() typec.Snapshot {
	a.sync.LockStatus()
	defer a.sync.UnlockStatus()

	snap := a.build()
	a.pub.PublishSnapshot(snap)
	a.metrics.ObserveSnapshot(snap)
	return snap
}

func (a *Aggregator) build() typec.Snapshot {
	ports, err := a.store.Enumerate()
	if err != nil {
		pkg.LogError(pkg.ComponentStatus, "port enumeration failed", "err", err)
		return typec.Snapshot{Ports: []typec.PortStatus{}, Status: typec.StatusError}
	}

	statuses := make([]typec.PortStatus, 0, len(ports))
	for _, p := range ports {
		statuses = append(statuses, a.portStatus(p))
	}

	for _, probe := range a.probes {
		if err := probe.Probe(statuses); err != nil {
			pkg.LogWarn(pkg.ComponentStatus, "probe failed", "probe", probe.Name(), "err", err)
		}
	}

	return typec.Snapshot{Ports: statuses, Status: typec.StatusSuccess}
}

func (a *Aggregator) portStatus(p typec.Port) typec.PortStatus {
	ps := typec.NewPortStatus(p.Name)

	if p.Connected {
		ps.CurrentPowerRole = a.readRole(p.Name, typec.RoleKindPower).Power
		ps.CurrentDataRole = a.readRole(p.Name, typec.RoleKindData).Data
		ps.CurrentMode = a.readMode(p.Name)
	}

	ps.CanChangeMode = true
	if p.Connected && a.store.SupportsPD(p.Name) {
		ps.CanChangeDataRole = true
		ps.CanChangePowerRole = true
	}
	ps.SupportedModes = []typec.Mode{typec.ModeDRP}

	ps.UsbDataStatus = a.usbDataStatus()
	ps.PowerBrickStatus = a.powerBrickStatus(p, ps.CurrentPowerRole)

	pkg.LogDebug(pkg.ComponentStatus, "port status",
		"port", p.Name,
		"connected", p.Connected,
		"power", ps.CurrentPowerRole.String(),
		"data", ps.CurrentDataRole.String(),
		"mode", ps.CurrentMode.String(),
		"canChangeRole", ps.CanChangeDataRole)
	return ps
}

// readRole reads one role; failures leave the NONE value of the kind.
func (a *Aggregator) readRole(port string, kind typec.RoleKind) typec.Role {
	role, err := a.store.ReadRole(port, kind)
	if err != nil {
		if errors.Is(err, pkg.ErrUnrecognizedRole) {
			pkg.LogWarn(pkg.ComponentStatus, "unrecognized role", "port", port, "kind", kind.String(), "err", err)
		} else {
			pkg.LogError(pkg.ComponentStatus, "role read failed", "port", port, "kind", kind.String(), "err", err)
		}
		return typec.Role{Kind: kind}
	}
	return role
}

func (a *Aggregator) readMode(port string) typec.Mode {
	accessory, err := a.store.Accessory(port)
	if err != nil {
		pkg.LogError(pkg.ComponentStatus, "accessory read failed", "port", port, "err", err)
		return typec.ModeNone
	}
	switch accessory {
	case sysfs.AccessoryAnalogAudio:
		return typec.ModeAudioAccessory
	case sysfs.AccessoryDebug:
		return typec.ModeDebugAccessory
	}
	return a.readRole(port, typec.RoleKindMode).Mode
}

func (a *Aggregator) usbDataStatus() []typec.UsbDataStatus {
	var status []typec.UsbDataStatus
	enabled := true

	// While docked, device mode is reported disabled regardless of the hub
	// state, which settles on its own.
	if a.cfg.PogoUsbActive != "" {
		if v, err := sysfs.ReadAttr(a.cfg.PogoUsbActive); err == nil && v == "1" {
			status = append(status, typec.UsbDataStatusDisabledDockDeviceMode)
			enabled = false
		}
	}
	if a.dataDisabled.Load() {
		status = append(status, typec.UsbDataStatusDisabledForce)
		enabled = false
	}
	if enabled {
		status = append(status, typec.UsbDataStatusEnabled)
	}
	return status
}

func (a *Aggregator) powerBrickStatus(p typec.Port, power typec.PowerRole) typec.PowerBrickStatus {
	if !p.Connected || power == typec.PowerRoleSource {
		return typec.PowerBrickNotConnected
	}
	if a.cfg.PowerSupplyUsbType == "" {
		return typec.PowerBrickUnknown
	}
	usbType, err := sysfs.ReadAttr(a.cfg.PowerSupplyUsbType)
	if err != nil {
		pkg.LogError(pkg.ComponentStatus, "usb_type read failed", "err", err)
		return typec.PowerBrickUnknown
	}
	switch {
	case strings.Contains(usbType, "[D"):
		return typec.PowerBrickConnected
	case strings.Contains(usbType, "[U"):
		return typec.PowerBrickUnknown
	default:
		return typec.PowerBrickNotConnected
	}
}
