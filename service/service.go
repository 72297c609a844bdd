package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/ardnew/typecd/config"
	"github.com/ardnew/typecd/discovery"
	"github.com/ardnew/typecd/metrics"
	"github.com/ardnew/typecd/overheat"
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
	"github.com/ardnew/typecd/typec/dispatch"
	"github.com/ardnew/typecd/typec/role"
	"github.com/ardnew/typecd/typec/status"
	"github.com/ardnew/typecd/typec/sysfs"
)

// Opener opens the uevent receiver used by the dispatch loop.
type Opener func(bufferSize int) (dispatch.Receiver, error)

// Service is the typecd daemon core.
type Service struct {
	cfg *config.Config

	sync    *typec.Sync
	slot    typec.SinkSlot
	pub     *publisher
	store   *sysfs.Store
	tcpc    *sysfs.TCPC
	agg     *status.Aggregator
	coord   *role.Coordinator
	loop    *dispatch.Loop
	heat    *overheat.Reporter
	devices *discovery.Watcher
	metrics *metrics.Metrics

	open    Opener
	monitor status.DataSessionMonitor
	hubHook discovery.Hook

	sinkMu sync.Mutex // serializes SetSink and ClearSink
}

// Option configures a [Service].
type Option func(*Service)

// WithOpener replaces the uevent channel opener.
func WithOpener(o Opener) Option { return func(s *Service) { s.open = o } }

// WithMetrics records service activity in m.
func WithMetrics(m *metrics.Metrics) Option { return func(s *Service) { s.metrics = m } }

// WithDataSessionMonitor sets the source of data session compliance
// warnings.
func WithDataSessionMonitor(m status.DataSessionMonitor) Option {
	return func(s *Service) { s.monitor = m }
}

// WithHubHook is called when the internal hub of an attached pogo dock is
// enumerated.
func WithHubHook(h discovery.Hook) Option { return func(s *Service) { s.hubHook = h } }

// New wires a service from cfg. The dispatch loop is not started until a
// sink is registered.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:  cfg,
		sync: typec.NewSync(),
		open: openUevent,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.pub = &publisher{slot: &s.slot, metrics: s.metrics}
	s.store = sysfs.New(cfg.TypecRoot)
	s.tcpc = sysfs.NewTCPC(cfg.TCPC.Path, cfg.TCPC.SearchRoot, cfg.TCPC.DevName, cfg.TCPC.ClientID)

	s.agg = status.New(s.store, s.sync, s.pub, status.Config{
		PowerSupplyUsbType:       cfg.PowerSupplyUsbType,
		PogoUsbActive:            cfg.Pogo.UsbActive,
		InputPowerLimitedWarning: cfg.InputPowerLimitedWarning,
	},
		status.WithTCPC(s.tcpc),
		status.WithDataSessionMonitor(s.monitor),
		status.WithMetrics(s.metrics),
	)
	s.coord = role.New(s.store, s.sync, s.pub, cfg.RoleConfig(), s.metrics)
	s.heat = overheat.NewReporter(cfg.Overheat.StatsPath, s.metrics)

	classifier, err := dispatch.NewClassifier(cfg.Markers)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	s.loop = dispatch.NewLoop(classifier, dispatch.Handlers{
		Sync:      s.sync,
		Refresher: s.agg,
		Resetter:  s.coord,
		Overheat:  s.heat,
		Metrics:   s.metrics,
	})

	s.devices = discovery.New(discovery.Config{
		SysfsRoot: cfg.USB.SysfsRoot,
		DevfsRoot: cfg.USB.DevfsRoot,
		IDPaths:   cfg.USB.IDPaths,
	}, discovery.OnAttach(s.deviceAttached), discovery.OnDetach(s.deviceDetached))

	return s, nil
}

// =============================================================================
// Sink Lifecycle
// =============================================================================

// SetSink registers sink and starts the dispatch loop. Replacing a
// registered sink keeps the running loop; a loop that exited on a receive
// failure is restarted on a new channel. A nil sink is [Service.ClearSink].
//
// If the uevent channel cannot be opened the sink is not registered.
func (s *Service) SetSink(sink typec.Sink) error {
	if sink == nil {
		return s.ClearSink()
	}

	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	s.sync.LockStatus()
	if s.slot.Registered() && s.loop.Running() {
		s.slot.Swap(sink)
		s.sync.UnlockStatus()
		pkg.LogInfo(pkg.ComponentService, "sink replaced")
		return nil
	}
	s.sync.UnlockStatus()

	rx, err := s.open(s.cfg.UeventBufferSize)
	if err != nil {
		return fmt.Errorf("service: open uevent channel: %w", err)
	}

	s.sync.LockStatus()
	prev := s.slot.Swap(sink)
	s.sync.UnlockStatus()

	if err := s.loop.Start(context.Background(), rx); err != nil {
		rx.Close()
		s.sync.LockStatus()
		s.slot.Swap(prev)
		s.sync.UnlockStatus()
		return fmt.Errorf("service: %w", err)
	}

	pkg.LogInfo(pkg.ComponentService, "sink registered")
	return nil
}

// ClearSink unregisters the sink and stops the dispatch loop before
// returning.
func (s *Service) ClearSink() error {
	s.sinkMu.Lock()
	defer s.sinkMu.Unlock()

	// The loop may be waiting for the status lock inside a refresh, so it
	// is released before stopping the loop.
	s.sync.LockStatus()
	old := s.slot.Swap(nil)
	s.sync.UnlockStatus()

	if old == nil {
		return nil
	}
	pkg.LogInfo(pkg.ComponentService, "sink cleared")
	return s.loop.Stop()
}

// Close stops the dispatch loop.
func (s *Service) Close() error {
	return s.ClearSink()
}

// =============================================================================
// Background Work
// =============================================================================

// Run watches attached USB devices until ctx is done.
func (s *Service) Run(ctx context.Context) error {
	return s.devices.Run(ctx)
}

func (s *Service) deviceAttached(dev discovery.Device) {
	if s.hubHook == nil || s.cfg.Pogo.EnableHub == "" {
		return
	}
	enabled, err := sysfs.ReadAttr(s.cfg.Pogo.EnableHub)
	if err != nil || enabled != "1" {
		return
	}
	if dev.Name != s.cfg.USB.InternalHub {
		return
	}
	pkg.LogInfo(pkg.ComponentService, "dock internal hub attached", "id", dev.ID(), "node", dev.DevfsPath)
	s.hubHook(dev)
}

func (s *Service) deviceDetached(dev discovery.Device) {
	if dev.Name == s.cfg.USB.InternalHub {
		pkg.LogInfo(pkg.ComponentService, "dock internal hub detached", "id", dev.ID())
		return
	}
	pkg.LogDebug(pkg.ComponentService, "usb device detached", "name", dev.Name, "id", dev.ID())
}

// =============================================================================
// Accessors
// =============================================================================

// Refresh rebuilds and publishes the port status.
func (s *Service) Refresh() typec.Snapshot { return s.agg.Refresh() }

// Metrics returns the metrics the service records to, or nil.
func (s *Service) Metrics() *metrics.Metrics { return s.metrics }

// Devices returns the attached USB devices.
func (s *Service) Devices() []discovery.Device { return s.devices.Devices() }

// =============================================================================
// Publisher
// =============================================================================

// publisher forwards to the sink slot and records command results.
type publisher struct {
	slot    *typec.SinkSlot
	metrics *metrics.Metrics
}

func (p *publisher) PublishSnapshot(snap typec.Snapshot) {
	p.slot.PublishSnapshot(snap)
}

func (p *publisher) PublishResult(res typec.CommandResult) {
	p.metrics.ObserveCommand(res)
	p.slot.PublishResult(res)
}
