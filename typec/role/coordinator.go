package role

import (
	"errors"
	"fmt"
	"time"

	"github.com/ardnew/typecd/metrics"
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
	"github.com/ardnew/typecd/typec/sysfs"
)

// Default timing.
const (
	DefaultModeWaitTimeout  = 5 * time.Second
	DefaultModeWaitAttempts = 3
	DefaultRoleSwapRetry    = 700 * time.Millisecond
)

// Store is the subset of the port attribute store the coordinator writes.
type Store interface {
	WriteRole(port string, role typec.Role) error
	WriteToken(port string, kind typec.RoleKind, token string) error
	ReadToken(port string, kind typec.RoleKind) (string, error)
	PartnerPresent(port string) bool
}

// Config holds the coordinator timing.
type Config struct {
	// ModeWaitTimeout bounds each wait for a partner confirmation.
	ModeWaitTimeout time.Duration
	// ModeWaitAttempts caps the number of waits before a mode switch fails.
	ModeWaitAttempts int
	// RoleSwapRetry is the delay before retrying a busy role write.
	RoleSwapRetry time.Duration
}

// DefaultConfig returns the default timing.
func DefaultConfig() Config {
	return Config{
		ModeWaitTimeout:  DefaultModeWaitTimeout,
		ModeWaitAttempts: DefaultModeWaitAttempts,
		RoleSwapRetry:    DefaultRoleSwapRetry,
	}
}

// Coordinator executes role switch requests one at a time.
type Coordinator struct {
	store   Store
	sync    *typec.Sync
	pub     typec.Publisher
	cfg     Config
	metrics *metrics.Metrics

	sleep func(time.Duration)
}

// New creates a coordinator. Zero fields of cfg take their defaults.
func New(store Store, s *typec.Sync, pub typec.Publisher, cfg Config, m *metrics.Metrics) *Coordinator {
	def := DefaultConfig()
	if cfg.ModeWaitTimeout <= 0 {
		cfg.ModeWaitTimeout = def.ModeWaitTimeout
	}
	if cfg.ModeWaitAttempts <= 0 {
		cfg.ModeWaitAttempts = def.ModeWaitAttempts
	}
	if cfg.RoleSwapRetry <= 0 {
		cfg.RoleSwapRetry = def.RoleSwapRetry
	}
	return &Coordinator{
		store:   store,
		sync:    s,
		pub:     pub,
		cfg:     cfg,
		metrics: m,
		sleep:   time.Sleep,
	}
}

// SwitchRole performs req and publishes its result. It blocks while another
// switch is in flight.
func (c *Coordinator) SwitchRole(req typec.RoleRequest) typec.Status {
	c.sync.LockSwitch()
	defer c.sync.UnlockSwitch()

	pkg.LogInfo(pkg.ComponentRole, "role switch",
		"port", req.PortName, "role", req.Role.String(), "tx", req.TransactionID)

	var status typec.Status
	switch {
	case !validRole(req.Role):
		pkg.LogError(pkg.ComponentRole, "invalid role", "port", req.PortName, "role", req.Role.String())
		status = typec.StatusInvalidArgument
	case req.Role.Kind == typec.RoleKindMode:
		status = c.switchMode(req.PortName, req.Role)
	default:
		status = c.switchRole(req.PortName, req.Role)
	}

	c.metrics.ObserveSwitch(req.Role.Kind, status)

	c.sync.LockStatus()
	c.pub.PublishResult(typec.CommandResult{
		PortName:      req.PortName,
		Kind:          typec.CommandSwitchRole,
		Role:          req.Role,
		Status:        status,
		TransactionID: req.TransactionID,
	})
	c.sync.UnlockStatus()

	return status
}

func validRole(r typec.Role) bool {
	_, ok := r.Token()
	return ok
}

// switchRole writes a power or data role and verifies it by reading it back.
func (c *Coordinator) switchRole(port string, role typec.Role) typec.Status {
	want, _ := role.Token()

	err := c.store.WriteRole(port, role)
	if errors.Is(err, pkg.ErrBusy) {
		pkg.LogInfo(pkg.ComponentRole, "role switch busy, retrying",
			"port", port, "delay", c.cfg.RoleSwapRetry)
		c.sleep(c.cfg.RoleSwapRetry)
		err = c.store.WriteRole(port, role)
	}
	if err != nil {
		pkg.LogError(pkg.ComponentRole, "role write failed", "port", port, "err", err)
		return typec.StatusError
	}

	got, err := c.store.ReadToken(port, role.Kind)
	if err != nil {
		pkg.LogError(pkg.ComponentRole, "role read-back failed", "port", port, "err", err)
		return typec.StatusError
	}
	if got != want {
		pkg.LogError(pkg.ComponentRole, "role switch failed", "port", port,
			"err", fmt.Errorf("%w: want %q, got %q", pkg.ErrMismatch, want, got))
		return typec.StatusError
	}
	pkg.LogInfo(pkg.ComponentRole, "role switched", "port", port, "role", role.String())
	return typec.StatusSuccess
}

// switchMode writes a mode and waits for the kernel to report the partner
// re-attaching. Unless confirmed, the port is returned to dual-role.
func (c *Coordinator) switchMode(port string, role typec.Role) typec.Status {
	status := typec.StatusError

	// Arm before writing: the partner can attach as soon as the write lands.
	c.sync.ArmPartner()
	if err := c.store.WriteRole(port, role); err != nil {
		pkg.LogError(pkg.ComponentRole, "mode write failed", "port", port, "err", err)
	} else {
		for attempt := 1; attempt <= c.cfg.ModeWaitAttempts; attempt++ {
			if c.sync.WaitPartner(c.cfg.ModeWaitTimeout) {
				status = typec.StatusSuccess
				break
			}
			pkg.LogInfo(pkg.ComponentRole, "partner wait timed out",
				"port", port, "attempt", attempt, "of", c.cfg.ModeWaitAttempts)
		}
		if status != typec.StatusSuccess {
			pkg.LogError(pkg.ComponentRole, "mode switch unconfirmed", "port", port, "err", pkg.ErrTimeout)
		}
	}

	if status != typec.StatusSuccess {
		c.switchToDual(port)
	}
	return status
}

func (c *Coordinator) switchToDual(port string) {
	if err := c.store.WriteToken(port, typec.RoleKindMode, sysfs.DualToken); err != nil {
		pkg.LogError(pkg.ComponentRole, "dual-role fallback failed", "port", port, "err", err)
		return
	}
	pkg.LogInfo(pkg.ComponentRole, "port returned to dual-role", "port", port)
}

// ResetDisconnected returns every port of snap that has no partner attached
// to dual-role. Partner presence is checked against the kernel, not the
// snapshot. It does nothing, and reports false, while a switch is in flight.
func (c *Coordinator) ResetDisconnected(snap typec.Snapshot) bool {
	if !c.sync.TryLockSwitch() {
		pkg.LogDebug(pkg.ComponentRole, "switch in flight, skipping dual-role reset")
		return false
	}
	defer c.sync.UnlockSwitch()

	for _, ps := range snap.Ports {
		if c.store.PartnerPresent(ps.PortName) {
			continue
		}
		c.switchToDual(ps.PortName)
		c.metrics.ObserveDualReset()
	}
	return true
}
