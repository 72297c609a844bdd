// Package discovery tracks USB devices attached while a port is in host
// mode.
//
// A [Watcher] scans the sysfs USB device tree at startup, then watches the
// usbfs device directory (normally /dev/bus/usb) with fsnotify. Each
// device node that appears or disappears is matched back to its sysfs
// directory and reported through the attach and detach hooks. Vendor and
// product names come from the system usb.ids database when one is found.
//
// The daemon uses the attach hook to recognize the internal hub of a pogo
// dock; vendor specific tuning of that hub is left to the hook.
package discovery
