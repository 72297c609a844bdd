// Package uevent receives kernel uevents from the netlink kobject-uevent
// multicast group.
//
// A [Channel] owns the netlink socket together with an epoll instance and an
// eventfd wake descriptor. [Channel.Receive] blocks, without a timeout, until
// either a datagram arrives or another goroutine calls [Channel.Interrupt],
// in which case it returns [pkg.ErrInterrupted]. This makes the wait
// cancellable without signals.
//
// Each datagram is a sequence of NUL-terminated records. The first record is
// usually "action@devpath"; the rest are KEY=value pairs:
//
//	add@/devices/platform/soc/usb/typec/port0/port0-partner
//	ACTION=add
//	DEVPATH=/devices/platform/soc/usb/typec/port0/port0-partner
//	SUBSYSTEM=typec
//	DEVTYPE=typec_partner
//
// [Parse] splits a datagram into [Record] values.
package uevent
