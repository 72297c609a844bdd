package discovery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/fsnotify/fsnotify"

	"github.com/ardnew/typecd/pkg"
)

// Config locates the device trees.
type Config struct {
	SysfsRoot string
	DevfsRoot string
	// IDPaths are searched for usb.ids; empty selects [DefaultIDPaths].
	IDPaths []string
}

// Hook is called for an attached or detached device.
type Hook func(Device)

// Watcher reports USB devices as they attach and detach.
type Watcher struct {
	cfg      Config
	names    *Names
	onAttach Hook
	onDetach Hook

	mu      sync.Mutex
	devices map[string]Device // by devfs path
}

// Option configures a [Watcher].
type Option func(*Watcher)

// OnAttach sets the attach hook.
func OnAttach(h Hook) Option { return func(w *Watcher) { w.onAttach = h } }

// OnDetach sets the detach hook.
func OnDetach(h Hook) Option { return func(w *Watcher) { w.onDetach = h } }

// New creates a watcher. Empty roots take their defaults.
func New(cfg Config, opts ...Option) *Watcher {
	if cfg.SysfsRoot == "" {
		cfg.SysfsRoot = DefaultSysfsRoot
	}
	if cfg.DevfsRoot == "" {
		cfg.DevfsRoot = DefaultDevfsRoot
	}
	w := &Watcher{
		cfg:     cfg,
		names:   NewNames(cfg.IDPaths...),
		devices: make(map[string]Device),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Devices returns the attached devices ordered by devfs path.
func (w *Watcher) Devices() []Device {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([]Device, 0, len(w.devices))
	for _, d := range w.devices {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DevfsPath < out[j].DevfsPath })
	return out
}

// Run reports the devices already present, then watches for changes until
// ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.cfg.DevfsRoot); err != nil {
		return fmt.Errorf("discovery: watch %s: %w", w.cfg.DevfsRoot, err)
	}
	entries, err := os.ReadDir(w.cfg.DevfsRoot)
	if err != nil {
		return fmt.Errorf("discovery: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() {
			w.addBus(fw, filepath.Join(w.cfg.DevfsRoot, e.Name()))
		}
	}

	pkg.LogInfo(pkg.ComponentDiscovery, "watching usb devices",
		"devfs", w.cfg.DevfsRoot, "devices", len(w.Devices()))

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(fw, ev)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			pkg.LogWarn(pkg.ComponentDiscovery, "watch error", "err", err)
		}
	}
}

// addBus watches a bus directory and reports the nodes already in it.
func (w *Watcher) addBus(fw *fsnotify.Watcher, dir string) {
	if err := fw.Add(dir); err != nil {
		pkg.LogWarn(pkg.ComponentDiscovery, "unable to watch bus", "dir", dir, "err", err)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		w.attach(filepath.Join(dir, e.Name()))
	}
}

func (w *Watcher) handle(fw *fsnotify.Watcher, ev fsnotify.Event) {
	switch {
	case ev.Has(fsnotify.Create):
		if filepath.Dir(ev.Name) == filepath.Clean(w.cfg.DevfsRoot) {
			if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
				w.addBus(fw, ev.Name)
			}
			return
		}
		w.attach(ev.Name)
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.detach(ev.Name)
	}
}

func (w *Watcher) attach(node string) {
	bus, num, ok := parseDevfsPath(w.cfg.DevfsRoot, node)
	if !ok {
		return
	}

	w.mu.Lock()
	_, known := w.devices[node]
	w.mu.Unlock()
	if known {
		return
	}

	dev := w.lookup(bus, num)
	dev.DevfsPath = node
	dev.Vendor = w.names.Vendor(dev.VendorID)
	dev.Product = w.names.Product(dev.VendorID, dev.ProductID)

	w.mu.Lock()
	w.devices[node] = dev
	w.mu.Unlock()

	pkg.LogInfo(pkg.ComponentDiscovery, "usb device attached",
		"node", node, "id", dev.ID(), "vendor", dev.Vendor, "product", dev.Product)
	if w.onAttach != nil {
		w.onAttach(dev)
	}
}

// lookup finds the sysfs directory of a device node. A device not yet
// visible in sysfs is reported with its numbers only.
func (w *Watcher) lookup(bus, num uint8) Device {
	devices, err := Scan(w.cfg.SysfsRoot, w.cfg.DevfsRoot)
	if err == nil {
		for _, d := range devices {
			if d.Bus == bus && d.Num == num {
				return d
			}
		}
	}
	return Device{Bus: bus, Num: num}
}

func (w *Watcher) detach(node string) {
	w.mu.Lock()
	dev, ok := w.devices[node]
	delete(w.devices, node)
	w.mu.Unlock()
	if !ok {
		return
	}

	pkg.LogInfo(pkg.ComponentDiscovery, "usb device detached", "node", node, "id", dev.ID())
	if w.onDetach != nil {
		w.onDetach(dev)
	}
}
