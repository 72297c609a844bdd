package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec/dispatch"
	"github.com/ardnew/typecd/typec/sysfs"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "typecd.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestNew_Valid(t *testing.T) {
	c := New()
	require.NoError(t, c.Validate())

	assert.Equal(t, sysfs.DefaultRoot, c.TypecRoot)
	assert.Equal(t, 5*time.Second, c.Timing.ModeWaitTimeout)
	assert.Equal(t, 3, c.Timing.ModeWaitAttempts)
	assert.Equal(t, 700*time.Millisecond, c.Timing.RoleSwapRetry)
	assert.Equal(t, dispatch.DefaultMarkers(), c.Markers)
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, `
typec_root: /tmp/typec
input_power_limited_warning: true
pogo:
  usb_active: /tmp/pogo/usb_active
tcpc:
  path: /tmp/tcpc
markers:
  refresh_prefixes:
    - DEVTYPE=typec_
    - DRIVER=tcpci
timing:
  mode_wait_timeout: 2s
  mode_wait_attempts: 5
log_level: debug
`)

	c := New()
	require.NoError(t, c.LoadFile(path))
	require.NoError(t, c.Validate())

	assert.Equal(t, "/tmp/typec", c.TypecRoot)
	assert.True(t, c.InputPowerLimitedWarning)
	assert.Equal(t, "/tmp/pogo/usb_active", c.Pogo.UsbActive)
	// Unset fields of a section keep their defaults.
	assert.Equal(t, New().Pogo.EnableHub, c.Pogo.EnableHub)
	assert.Equal(t, "/tmp/tcpc", c.TCPC.Path)
	assert.Equal(t, []string{"DEVTYPE=typec_", "DRIVER=tcpci"}, c.Markers.RefreshPrefixes)
	assert.Equal(t, dispatch.DefaultPartnerPattern, c.Markers.PartnerPattern)
	assert.Equal(t, 2*time.Second, c.Timing.ModeWaitTimeout)
	assert.Equal(t, 5, c.Timing.ModeWaitAttempts)
	assert.Equal(t, "debug", c.LogLevel)

	rc := c.RoleConfig()
	assert.Equal(t, 2*time.Second, rc.ModeWaitTimeout)
	assert.Equal(t, 5, rc.ModeWaitAttempts)
}

func TestLoadFile_Empty(t *testing.T) {
	c := New()
	require.NoError(t, c.LoadFile(""))
	assert.Equal(t, New(), c)
}

func TestLoadFile_Missing(t *testing.T) {
	assert.Error(t, New().LoadFile(filepath.Join(t.TempDir(), "absent.yaml")))
}

func TestLoadFile_Malformed(t *testing.T) {
	path := writeFile(t, "timing: [not, a, map]\n")
	assert.Error(t, New().LoadFile(path))
}

func TestLoadEnv(t *testing.T) {
	c := New()
	require.NoError(t, c.loadEnv(map[string]string{
		"TYPECD_TYPEC_ROOT":                     "/env/typec",
		"TYPECD_GADGET_NAME":                    "dummy_udc.0",
		"TYPECD_TIMING_ROLE_SWAP_RETRY":         "1s",
		"TYPECD_MARKERS_PARTNER_PATTERN":        `^bind@.*-partner$`,
		"TYPECD_USB_ID_PATHS":                   "/a/usb.ids,/b/usb.ids",
		"TYPECD_CONTAMINANT_DETECTION_DISABLED": "true",
		"UNRELATED":                             "x",
	}))

	assert.Equal(t, "/env/typec", c.TypecRoot)
	assert.Equal(t, "dummy_udc.0", c.Gadget.Name)
	assert.Equal(t, time.Second, c.Timing.RoleSwapRetry)
	assert.Equal(t, `^bind@.*-partner$`, c.Markers.PartnerPattern)
	assert.Equal(t, []string{"/a/usb.ids", "/b/usb.ids"}, c.USB.IDPaths)
	assert.True(t, c.ContaminantDetectionDisabled)
	// Unset variables leave values alone.
	assert.Equal(t, New().Gadget.Pullup, c.Gadget.Pullup)
}

func TestLoadEnv_BadValue(t *testing.T) {
	c := New()
	assert.Error(t, c.loadEnv(map[string]string{"TYPECD_TIMING_MODE_WAIT_ATTEMPTS": "many"}))
}

func TestLoad(t *testing.T) {
	path := writeFile(t, "typec_root: /file/typec\nlog_format: json\n")
	t.Setenv("TYPECD_TYPEC_ROOT", "/env/typec")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/env/typec", c.TypecRoot)
	assert.Equal(t, "json", c.LogFormat)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"no root", func(c *Config) { c.TypecRoot = "" }},
		{"bad pattern", func(c *Config) { c.Markers.PartnerPattern = "(" }},
		{"no refresh markers", func(c *Config) { c.Markers.RefreshPrefixes = nil }},
		{"zero timeout", func(c *Config) { c.Timing.ModeWaitTimeout = 0 }},
		{"zero attempts", func(c *Config) { c.Timing.ModeWaitAttempts = 0 }},
		{"negative retry", func(c *Config) { c.Timing.RoleSwapRetry = -time.Second }},
		{"tiny buffer", func(c *Config) { c.UeventBufferSize = 16 }},
		{"bad level", func(c *Config) { c.LogLevel = "loud" }},
		{"bad format", func(c *Config) { c.LogFormat = "xml" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			tt.modify(c)
			assert.ErrorIs(t, c.Validate(), pkg.ErrInvalidParameter)
		})
	}
}
