package discovery

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startWatcher(t *testing.T, w *Watcher) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
}

func nextDevice(t *testing.T, ch <-chan Device) Device {
	t.Helper()
	select {
	case d := <-ch:
		return d
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for device")
		return Device{}
	}
}

func TestWatcher_ExistingAndHotplug(t *testing.T) {
	sysRoot, devRoot := t.TempDir(), t.TempDir()
	fakeDevice(t, sysRoot, "1-1", hubAttrs("1", "2"))
	require.NoError(t, os.MkdirAll(filepath.Join(devRoot, "001"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(devRoot, "001", "002"), nil, 0o644))

	idPath := filepath.Join(t.TempDir(), "usb.ids")
	require.NoError(t, os.WriteFile(idPath, []byte(testIDs), 0o644))

	attached := make(chan Device, 4)
	detached := make(chan Device, 4)
	w := New(Config{SysfsRoot: sysRoot, DevfsRoot: devRoot, IDPaths: []string{idPath}},
		OnAttach(func(d Device) { attached <- d }),
		OnDetach(func(d Device) { detached <- d }))
	startWatcher(t, w)

	hub := nextDevice(t, attached)
	assert.Equal(t, "1-1", hub.Name)
	assert.Equal(t, "Genesys Logic, Inc.", hub.Vendor)
	assert.Equal(t, "Hub", hub.Product)

	// A device on a new bus.
	fakeDevice(t, sysRoot, "2-1", map[string]string{
		"busnum": "2", "devnum": "3", "idVendor": "18d1", "idProduct": "4ee1",
	})
	require.NoError(t, os.MkdirAll(filepath.Join(devRoot, "002"), 0o755))
	// Give the watcher a moment to add the new bus directory.
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(devRoot, "002", "003"), nil, 0o644))

	phone := nextDevice(t, attached)
	assert.Equal(t, "2-1", phone.Name)
	assert.Equal(t, "Google Inc.", phone.Vendor)
	assert.Len(t, w.Devices(), 2)

	require.NoError(t, os.Remove(filepath.Join(devRoot, "001", "002")))
	gone := nextDevice(t, detached)
	assert.Equal(t, "1-1", gone.Name)
	assert.Len(t, w.Devices(), 1)
}

func TestWatcher_MissingDevfs(t *testing.T) {
	w := New(Config{SysfsRoot: t.TempDir(), DevfsRoot: filepath.Join(t.TempDir(), "absent")})
	assert.Error(t, w.Run(context.Background()))
}
