package sysfs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec"
)

// =============================================================================
// Test Helpers
// =============================================================================

// fakeClass builds a Type-C class tree in a temporary directory. Each port
// maps attribute paths (relative to the port directory) to their contents.
func fakeClass(t *testing.T, ports map[string]map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for dir, attrs := range ports {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			t.Fatal(err)
		}
		for name, value := range attrs {
			path := filepath.Join(root, dir, name)
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				t.Fatal(err)
			}
			if err := os.WriteFile(path, []byte(value+"\n"), 0o644); err != nil {
				t.Fatal(err)
			}
		}
	}
	return root
}

// =============================================================================
// ExtractSelected Tests
// =============================================================================

func TestExtractSelected(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"[host] device", "host"},
		{"host [device]", "device"},
		{"source [sink]", "sink"},
		{"[dual] source sink", "dual"},
		{"sink", "sink"},
		{"none", "none"},
		{"", ""},
		{"[unterminated", "[unterminated"},
	}

	for _, tt := range tests {
		if got := ExtractSelected(tt.input); got != tt.expected {
			t.Errorf("ExtractSelected(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

// =============================================================================
// Enumerate Tests
// =============================================================================

func TestEnumerate(t *testing.T) {
	root := fakeClass(t, map[string]map[string]string{
		"port1":         {AttrDataRole: "[host] device"},
		"port0":         {AttrDataRole: "host [device]"},
		"port0-partner": {AttrSupportsPD: "yes"},
		"port0-cable":   {},
	})
	// Regular files in the class directory are ignored.
	if err := os.WriteFile(filepath.Join(root, "uevent"), nil, 0o644); err != nil {
		t.Fatal(err)
	}

	ports, err := New(root).Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}

	want := []typec.Port{
		{Name: "port0", Connected: true},
		{Name: "port1", Connected: false},
	}
	if len(ports) != len(want) {
		t.Fatalf("Enumerate returned %d ports, want %d: %v", len(ports), len(want), ports)
	}
	for i := range want {
		if ports[i] != want[i] {
			t.Errorf("ports[%d] = %+v, want %+v", i, ports[i], want[i])
		}
	}
}

func TestEnumerate_Symlinks(t *testing.T) {
	devices := fakeClass(t, map[string]map[string]string{
		"port0":         {AttrDataRole: "[host] device"},
		"port0-partner": {},
	})
	root := t.TempDir()
	for _, name := range []string{"port0", "port0-partner"} {
		if err := os.Symlink(filepath.Join(devices, name), filepath.Join(root, name)); err != nil {
			t.Fatal(err)
		}
	}

	ports, err := New(root).Enumerate()
	if err != nil {
		t.Fatalf("Enumerate failed: %v", err)
	}
	if len(ports) != 1 || !ports[0].Connected {
		t.Errorf("Enumerate = %+v, want one connected port", ports)
	}
}

func TestEnumerate_MissingRoot(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent")).Enumerate()
	if !errors.Is(err, pkg.ErrEnumeration) {
		t.Errorf("Enumerate error = %v, want ErrEnumeration", err)
	}
}

// =============================================================================
// ReadRole Tests
// =============================================================================

func TestReadRole(t *testing.T) {
	root := fakeClass(t, map[string]map[string]string{
		"port0": {
			AttrPowerRole: "source [sink]",
			AttrDataRole:  "[host] device",
		},
		"port1": {
			AttrPowerRole: "none",
			AttrDataRole:  "host [device]",
		},
	})
	s := New(root)

	tests := []struct {
		port string
		kind typec.RoleKind
		want typec.Role
	}{
		{"port0", typec.RoleKindPower, typec.PowerRoleOf(typec.PowerRoleSink)},
		{"port0", typec.RoleKindData, typec.DataRoleOf(typec.DataRoleHost)},
		{"port0", typec.RoleKindMode, typec.ModeOf(typec.ModeDFP)},
		{"port1", typec.RoleKindPower, typec.PowerRoleOf(typec.PowerRoleNone)},
		{"port1", typec.RoleKindData, typec.DataRoleOf(typec.DataRoleDevice)},
		{"port1", typec.RoleKindMode, typec.ModeOf(typec.ModeUFP)},
	}

	for _, tt := range tests {
		got, err := s.ReadRole(tt.port, tt.kind)
		if err != nil {
			t.Errorf("ReadRole(%s, %s) failed: %v", tt.port, tt.kind, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ReadRole(%s, %s) = %v, want %v", tt.port, tt.kind, got, tt.want)
		}
	}
}

func TestReadRole_Unrecognized(t *testing.T) {
	root := fakeClass(t, map[string]map[string]string{
		"port0": {AttrDataRole: "[sideways] host"},
	})

	_, err := New(root).ReadRole("port0", typec.RoleKindData)
	if !errors.Is(err, pkg.ErrUnrecognizedRole) {
		t.Fatalf("ReadRole error = %v, want ErrUnrecognizedRole", err)
	}
	if errors.Is(err, pkg.ErrIO) {
		t.Error("unrecognized token must not be reported as an I/O error")
	}
}

func TestReadRole_IOError(t *testing.T) {
	root := fakeClass(t, map[string]map[string]string{"port0": {}})

	_, err := New(root).ReadRole("port0", typec.RoleKindPower)
	if !errors.Is(err, pkg.ErrIO) {
		t.Errorf("ReadRole error = %v, want ErrIO", err)
	}
}

// =============================================================================
// WriteRole Tests
// =============================================================================

func TestWriteRole_ReadBack(t *testing.T) {
	root := fakeClass(t, map[string]map[string]string{
		"port0": {AttrDataRole: "host [device]", AttrPortType: "[dual] source sink"},
	})
	s := New(root)

	if err := s.WriteRole("port0", typec.DataRoleOf(typec.DataRoleHost)); err != nil {
		t.Fatalf("WriteRole failed: %v", err)
	}
	token, err := s.ReadToken("port0", typec.RoleKindData)
	if err != nil {
		t.Fatalf("ReadToken failed: %v", err)
	}
	if token != "host" {
		t.Errorf("ReadToken = %q, want %q", token, "host")
	}

	if err := s.WriteRole("port0", typec.ModeOf(typec.ModeUFP)); err != nil {
		t.Fatalf("WriteRole(mode) failed: %v", err)
	}
	if token, _ := s.ReadToken("port0", typec.RoleKindMode); token != "sink" {
		t.Errorf("port_type = %q, want %q", token, "sink")
	}
}

func TestWriteRole_Invalid(t *testing.T) {
	s := New(t.TempDir())
	err := s.WriteRole("port0", typec.PowerRoleOf(typec.PowerRoleNone))
	if !errors.Is(err, pkg.ErrInvalidRole) {
		t.Errorf("WriteRole error = %v, want ErrInvalidRole", err)
	}
}

func TestWriteRole_MissingAttribute(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, "port0"), 0o755); err != nil {
		t.Fatal(err)
	}
	s := New(root)
	err := s.WriteRole("port0", typec.DataRoleOf(typec.DataRoleHost))
	if !errors.Is(err, pkg.ErrIO) {
		t.Errorf("WriteRole error = %v, want ErrIO", err)
	}
}

func TestWriteRole_MissingPort(t *testing.T) {
	s := New(t.TempDir())
	err := s.WriteRole("port9", typec.DataRoleOf(typec.DataRoleHost))
	if !errors.Is(err, pkg.ErrNoPort) {
		t.Errorf("WriteRole error = %v, want ErrNoPort", err)
	}
}

func TestIsBusy(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&os.PathError{Op: "write", Path: "x", Err: syscall.EAGAIN}, true},
		{fmt.Errorf("wrapped: %w", syscall.EBUSY), true},
		{syscall.EIO, false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := isBusy(tt.err); got != tt.want {
			t.Errorf("isBusy(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

// =============================================================================
// Partner Attribute Tests
// =============================================================================

func TestPartnerAttributes(t *testing.T) {
	root := fakeClass(t, map[string]map[string]string{
		"port0":         {},
		"port0-partner": {AttrAccessoryMode: "analog_audio", AttrSupportsPD: "yes"},
		"port1":         {},
		"port1-partner": {AttrSupportsPD: "no"},
		"port2":         {},
	})
	s := New(root)

	if acc, err := s.Accessory("port0"); err != nil || acc != AccessoryAnalogAudio {
		t.Errorf("Accessory(port0) = %q, %v", acc, err)
	}
	if !s.SupportsPD("port0") {
		t.Error("SupportsPD(port0) = false, want true")
	}
	if s.SupportsPD("port1") {
		t.Error("SupportsPD(port1) = true, want false")
	}
	if s.SupportsPD("port2") {
		t.Error("SupportsPD(port2) = true, want false")
	}
	if !s.PartnerPresent("port1") || s.PartnerPresent("port2") {
		t.Error("PartnerPresent mismatch")
	}
}
