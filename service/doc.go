// Package service assembles the typecd components and exposes the command
// surface.
//
// A [Service] owns the synchronization context, the status aggregator, the
// role switch coordinator and the uevent dispatch loop. Registering a sink
// with [Service.SetSink] opens the uevent channel and starts the loop;
// [Service.ClearSink] stops it before returning. Every command publishes
// exactly one [typec.CommandResult] to the registered sink.
package service
