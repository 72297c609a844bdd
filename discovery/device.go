package discovery

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec/sysfs"
)

// Default roots.
const (
	DefaultSysfsRoot = "/sys/bus/usb/devices"
	DefaultDevfsRoot = "/dev/bus/usb"
)

// Device is a USB device found in sysfs.
type Device struct {
	Name      string // sysfs name, e.g. "1-1.2"
	SysfsPath string
	DevfsPath string
	Bus       uint8
	Num       uint8
	VendorID  uint16
	ProductID uint16
	Class     uint8
	Speed     string // Mb/s as reported by sysfs

	Vendor  string
	Product string
}

// ID returns the "vvvv:pppp" identifier of the device.
func (d Device) ID() string {
	return fmt.Sprintf("%04x:%04x", d.VendorID, d.ProductID)
}

// UniqueID returns the usbfs unique id, bus*1000+device.
func (d Device) UniqueID() int {
	return int(d.Bus)*1000 + int(d.Num)
}

// Scan returns the devices under sysfsRoot. Root hubs and interface
// directories are skipped, as are devices whose bus or device number
// cannot be read.
func Scan(sysfsRoot, devfsRoot string) ([]Device, error) {
	entries, err := os.ReadDir(sysfsRoot)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", pkg.ErrEnumeration, err)
	}

	var devices []Device
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasPrefix(name, "usb") || strings.Contains(name, ":") {
			continue
		}
		dev, err := ReadDevice(filepath.Join(sysfsRoot, name), devfsRoot)
		if err != nil {
			continue
		}
		devices = append(devices, dev)
	}
	return devices, nil
}

// ReadDevice reads one sysfs device directory. Only busnum and devnum are
// required; other attributes are left zero when unreadable.
func ReadDevice(path, devfsRoot string) (Device, error) {
	dev := Device{Name: filepath.Base(path), SysfsPath: path}

	bus, err := readUint8(filepath.Join(path, "busnum"), 10)
	if err != nil {
		return dev, err
	}
	num, err := readUint8(filepath.Join(path, "devnum"), 10)
	if err != nil {
		return dev, err
	}
	dev.Bus, dev.Num = bus, num
	dev.DevfsPath = DevfsPath(devfsRoot, bus, num)

	if v, err := readUint16(filepath.Join(path, "idVendor")); err == nil {
		dev.VendorID = v
	}
	if v, err := readUint16(filepath.Join(path, "idProduct")); err == nil {
		dev.ProductID = v
	}
	if v, err := readUint8(filepath.Join(path, "bDeviceClass"), 16); err == nil {
		dev.Class = v
	}
	if v, err := sysfs.ReadAttr(filepath.Join(path, "speed")); err == nil {
		dev.Speed = v
	}
	return dev, nil
}

// DevfsPath returns the usbfs node of a device: root/BBB/DDD.
func DevfsPath(root string, bus, num uint8) string {
	return filepath.Join(root, fmt.Sprintf("%03d", bus), fmt.Sprintf("%03d", num))
}

// parseDevfsPath extracts bus and device numbers from a usbfs node path.
func parseDevfsPath(root, path string) (bus, num uint8, ok bool) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return 0, 0, false
	}
	busStr, numStr, found := strings.Cut(filepath.ToSlash(rel), "/")
	if !found || strings.Contains(numStr, "/") {
		return 0, 0, false
	}
	b, err := strconv.ParseUint(busStr, 10, 8)
	if err != nil {
		return 0, 0, false
	}
	n, err := strconv.ParseUint(numStr, 10, 8)
	if err != nil {
		return 0, 0, false
	}
	return uint8(b), uint8(n), true
}

func readUint8(path string, base int) (uint8, error) {
	s, err := sysfs.ReadAttr(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), base, 8)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", pkg.ErrIO, path, err)
	}
	return uint8(v), nil
}

func readUint16(path string) (uint16, error) {
	s, err := sysfs.ReadAttr(path)
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(strings.TrimPrefix(s, "0x"), 16, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %w", pkg.ErrIO, path, err)
	}
	return uint16(v), nil
}
