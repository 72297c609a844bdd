// Package sysfs reads and writes the kernel Type-C class attributes.
//
// The kernel exposes one directory per port under /sys/class/typec
// (port0, port1, ...) and, while a partner is attached, a sibling
// <port>-partner directory. Role attributes may be decorated, listing every
// supported value with the active one in brackets:
//
//	$ cat /sys/class/typec/port0/data_role
//	[host] device
//
// [Store] extracts the bracketed token and maps it onto the typec role
// types. Tokens that are neither a known role nor "none" are reported with
// [pkg.ErrUnrecognizedRole], never as an I/O failure.
//
// The store keeps no state between calls: every [Store.Enumerate] reflects
// the kernel's current view.
package sysfs
