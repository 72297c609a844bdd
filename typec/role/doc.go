// Package role executes Type-C role switch requests.
//
// A [Coordinator] serializes every switch through the switch lock of the
// shared [typec.Sync]. Power and data role switches are verified by reading
// the attribute back. Mode switches are verified by waiting for the kernel
// to report a new partner, which the dispatch loop signals; a mode switch
// that is not confirmed falls back to dual-role operation.
//
// Every switch produces exactly one [typec.CommandResult], published while
// the switch lock is still held so results arrive in request order.
package role
