// Package typec defines the data model shared by the typecd components.
//
// A [Snapshot] carries one [PortStatus] per Type-C port the kernel currently
// exposes. Role values ([PowerRole], [DataRole], [Mode]) always hold an
// explicit NONE when nothing is known; a zero value is never "unset".
//
// # Synchronization
//
// [Sync] is the process-wide synchronization context. It is created once and
// injected into the status aggregator and the role-switch coordinator:
//
//   - the status lock serializes snapshot construction and every hand-off
//     to the notification sink,
//   - the switch lock admits a single role switch at a time, across all
//     ports,
//   - the partner signal carries "partner attached" notifications from the
//     uevent dispatch loop to a waiting mode switch.
//
// # Notifications
//
// Results leave the core through a [Publisher], which forwards to at most
// one registered [Sink].
package typec
