package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/ardnew/typecd/discovery"
	"github.com/ardnew/typecd/overheat"
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec/dispatch"
	"github.com/ardnew/typecd/typec/role"
	"github.com/ardnew/typecd/typec/sysfs"
	"github.com/ardnew/typecd/typec/uevent"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TYPECD_"

// Config is the complete daemon configuration.
type Config struct {
	// TypecRoot is the kernel Type-C class directory.
	TypecRoot string `yaml:"typec_root" env:"TYPEC_ROOT"`
	// PowerSupplyUsbType is the USB power supply usb_type attribute.
	PowerSupplyUsbType string `yaml:"power_supply_usb_type" env:"POWER_SUPPLY_USB_TYPE"`

	Pogo     Pogo     `yaml:"pogo" envPrefix:"POGO_"`
	Gadget   Gadget   `yaml:"gadget" envPrefix:"GADGET_"`
	TCPC     TCPC     `yaml:"tcpc" envPrefix:"TCPC_"`
	Overheat Overheat `yaml:"overheat" envPrefix:"OVERHEAT_"`
	USB      USB      `yaml:"usb" envPrefix:"USB_"`

	Markers dispatch.Markers `yaml:"markers" envPrefix:"MARKERS_"`
	Timing  Timing           `yaml:"timing" envPrefix:"TIMING_"`

	// InputPowerLimitedWarning reports "other" compliance reasons as
	// INPUT_POWER_LIMITED.
	InputPowerLimitedWarning bool `yaml:"input_power_limited_warning" env:"INPUT_POWER_LIMITED_WARNING"`
	// ContaminantDetectionDisabled ignores requests to toggle contaminant
	// detection.
	ContaminantDetectionDisabled bool `yaml:"contaminant_detection_disabled" env:"CONTAMINANT_DETECTION_DISABLED"`

	// UeventBufferSize is the datagram receive buffer size.
	UeventBufferSize int `yaml:"uevent_buffer_size" env:"UEVENT_BUFFER_SIZE"`

	LogLevel      string `yaml:"log_level" env:"LOG_LEVEL"`
	LogFormat     string `yaml:"log_format" env:"LOG_FORMAT"`
	MetricsListen string `yaml:"metrics_listen" env:"METRICS_LISTEN"`
}

// Pogo holds the pogo dock attributes.
type Pogo struct {
	UsbActive     string `yaml:"usb_active" env:"USB_ACTIVE"`
	MoveDataToUsb string `yaml:"move_data_to_usb" env:"MOVE_DATA_TO_USB"`
	EnableHub     string `yaml:"enable_hub" env:"ENABLE_HUB"`
}

// Gadget holds the USB device controller attributes.
type Gadget struct {
	// Name is written to Pullup to bind the gadget.
	Name    string `yaml:"name" env:"NAME"`
	Pullup  string `yaml:"pullup" env:"PULLUP"`
	UsbData string `yaml:"usb_data" env:"USB_DATA"`
	ID      string `yaml:"id" env:"ID"`
	Vbus    string `yaml:"vbus" env:"VBUS"`
}

// TCPC locates the port controller i2c client.
type TCPC struct {
	// Path, when set, is used instead of searching.
	Path       string `yaml:"path" env:"PATH"`
	SearchRoot string `yaml:"search_root" env:"SEARCH_ROOT"`
	DevName    string `yaml:"dev_name" env:"DEV_NAME"`
	ClientID   string `yaml:"client_id" env:"CLIENT_ID"`
}

// Overheat locates the cooling device statistics.
type Overheat struct {
	StatsPath string `yaml:"stats_path" env:"STATS_PATH"`
}

// USB locates the host device trees watched for attached devices.
type USB struct {
	SysfsRoot string `yaml:"sysfs_root" env:"SYSFS_ROOT"`
	DevfsRoot string `yaml:"devfs_root" env:"DEVFS_ROOT"`
	// InternalHub is the sysfs device of the dock's internal hub.
	InternalHub string   `yaml:"internal_hub" env:"INTERNAL_HUB"`
	IDPaths     []string `yaml:"id_paths" env:"ID_PATHS"`
}

// Timing holds the role switch timing.
type Timing struct {
	ModeWaitTimeout  time.Duration `yaml:"mode_wait_timeout" env:"MODE_WAIT_TIMEOUT"`
	ModeWaitAttempts int           `yaml:"mode_wait_attempts" env:"MODE_WAIT_ATTEMPTS"`
	RoleSwapRetry    time.Duration `yaml:"role_swap_retry" env:"ROLE_SWAP_RETRY"`
}

// New returns the configuration of the reference platform.
func New() *Config {
	return &Config{
		TypecRoot:          sysfs.DefaultRoot,
		PowerSupplyUsbType: "/sys/class/power_supply/usb/usb_type",
		Pogo: Pogo{
			UsbActive:     "/sys/devices/platform/google,pogo/pogo_usb_active",
			MoveDataToUsb: "/sys/devices/platform/google,pogo/move_data_to_usb",
			EnableHub:     "/sys/devices/platform/google,pogo/enable_hub",
		},
		Gadget: Gadget{
			Name:    "11210000.dwc3",
			Pullup:  "/config/usb_gadget/g1/UDC",
			UsbData: "/sys/devices/platform/11210000.usb/usb_data_enabled",
			ID:      "/sys/devices/platform/11210000.usb/dwc3_exynos_otg_id",
			Vbus:    "/sys/devices/platform/11210000.usb/dwc3_exynos_otg_b_sess",
		},
		TCPC: TCPC{
			SearchRoot: "/sys/devices/platform/10d60000.hsi2c",
			DevName:    "i2c-max77759tcpc",
			ClientID:   "0025",
		},
		Overheat: Overheat{StatsPath: overheat.DefaultStatsPath},
		USB: USB{
			SysfsRoot:   discovery.DefaultSysfsRoot,
			DevfsRoot:   discovery.DefaultDevfsRoot,
			InternalHub: "1-1",
		},
		Markers: dispatch.DefaultMarkers(),
		Timing: Timing{
			ModeWaitTimeout:  role.DefaultModeWaitTimeout,
			ModeWaitAttempts: role.DefaultModeWaitAttempts,
			RoleSwapRetry:    role.DefaultRoleSwapRetry,
		},
		UeventBufferSize: uevent.MessageSize,
		LogLevel:         "info",
		LogFormat:        "text",
	}
}

// Load builds a configuration from defaults, the optional file at path and
// the environment, then validates it.
func Load(path string) (*Config, error) {
	c := New()
	if err := c.LoadFile(path); err != nil {
		return nil, err
	}
	if err := c.LoadEnv(); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadFile overlays a YAML file. An empty path is ignored; a missing file
// is an error.
func (c *Config) LoadFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}
	pkg.LogDebug(pkg.ComponentConfig, "configuration file loaded", "path", path)
	return nil
}

// LoadEnv overlays TYPECD_* environment variables.
func (c *Config) LoadEnv() error {
	return c.loadEnv(nil)
}

func (c *Config) loadEnv(environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(c, opts); err != nil {
		return fmt.Errorf("config: environment: %w", err)
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.TypecRoot == "" {
		errs = append(errs, errors.New("typec_root is required"))
	}
	if _, err := dispatch.NewClassifier(c.Markers); err != nil {
		errs = append(errs, fmt.Errorf("markers: %w", err))
	}
	if len(c.Markers.RefreshPrefixes) == 0 {
		errs = append(errs, errors.New("markers.refresh_prefixes must not be empty"))
	}
	if c.Timing.ModeWaitTimeout <= 0 {
		errs = append(errs, errors.New("timing.mode_wait_timeout must be positive"))
	}
	if c.Timing.ModeWaitAttempts < 1 {
		errs = append(errs, errors.New("timing.mode_wait_attempts must be at least 1"))
	}
	if c.Timing.RoleSwapRetry <= 0 {
		errs = append(errs, errors.New("timing.role_swap_retry must be positive"))
	}
	if c.UeventBufferSize < 256 {
		errs = append(errs, fmt.Errorf("uevent_buffer_size %d is too small", c.UeventBufferSize))
	}
	if _, err := pkg.ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	if _, err := pkg.ParseFormat(c.LogFormat); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("%w: %w", pkg.ErrInvalidParameter, err)
	}
	return nil
}

// RoleConfig returns the role switch timing.
func (c *Config) RoleConfig() role.Config {
	return role.Config{
		ModeWaitTimeout:  c.Timing.ModeWaitTimeout,
		ModeWaitAttempts: c.Timing.ModeWaitAttempts,
		RoleSwapRetry:    c.Timing.RoleSwapRetry,
	}
}
