package typec

import "github.com/ardnew/typecd/pkg"

// Sink consumes published snapshots and command results.
type Sink interface {
	OnSnapshot(Snapshot)
	OnCommandResult(CommandResult)
}

// Publisher hands results to the registered sink. Callers hold the status
// lock of the owning [Sync] while publishing.
type Publisher interface {
	PublishSnapshot(Snapshot)
	PublishResult(CommandResult)
}

// SinkSlot holds at most one [Sink]. Its contents are guarded by the status
// lock: Swap and both Publish methods must be called with it held.
type SinkSlot struct {
	sink Sink
}

// Swap installs sink (nil clears the slot) and returns the previous one.
func (s *SinkSlot) Swap(sink Sink) Sink {
	old := s.sink
	s.sink = sink
	return old
}

// Registered reports whether a sink is installed.
func (s *SinkSlot) Registered() bool { return s.sink != nil }

// PublishSnapshot forwards snap to the sink, if any.
func (s *SinkSlot) PublishSnapshot(snap Snapshot) {
	if s.sink == nil {
		pkg.LogDebug(pkg.ComponentStatus, "snapshot not published, no sink registered",
			"ports", len(snap.Ports))
		return
	}
	s.sink.OnSnapshot(snap)
}

// PublishResult forwards res to the sink, if any.
func (s *SinkSlot) PublishResult(res CommandResult) {
	if s.sink == nil {
		pkg.LogWarn(pkg.ComponentService, "command result not published, no sink registered",
			"command", res.Kind.String(), "tx", res.TransactionID)
		return
	}
	s.sink.OnCommandResult(res)
}
