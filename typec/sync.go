package typec

import (
	"sync"
	"time"
)

// Sync is the synchronization context shared by the status aggregator, the
// role-switch coordinator and the uevent dispatch loop.
type Sync struct {
	status    sync.Mutex // snapshot construction and sink hand-off
	switching sync.Mutex // one role switch in flight, process-wide

	partnerMu sync.Mutex
	partnerUp bool
	partnerCh chan struct{} // capacity 1; a pending token means "check the flag"
}

// NewSync creates a synchronization context.
func NewSync() *Sync {
	return &Sync{partnerCh: make(chan struct{}, 1)}
}

// LockStatus acquires the status lock.
func (s *Sync) LockStatus() { s.status.Lock() }

// UnlockStatus releases the status lock.
func (s *Sync) UnlockStatus() { s.status.Unlock() }

// LockSwitch acquires the switch lock, blocking until it is free.
func (s *Sync) LockSwitch() { s.switching.Lock() }

// TryLockSwitch acquires the switch lock only if no switch is in flight.
func (s *Sync) TryLockSwitch() bool { return s.switching.TryLock() }

// UnlockSwitch releases the switch lock.
func (s *Sync) UnlockSwitch() { s.switching.Unlock() }

// ArmPartner clears the partner-confirmed flag and discards any stale
// signal. It must be called before the attribute write whose confirmation
// will be awaited, so that a notification racing the write is not lost.
func (s *Sync) ArmPartner() {
	s.partnerMu.Lock()
	defer s.partnerMu.Unlock()
	s.partnerUp = false
	select {
	case <-s.partnerCh:
	default:
	}
}

// SignalPartner sets the partner-confirmed flag and wakes a waiter.
func (s *Sync) SignalPartner() {
	s.partnerMu.Lock()
	defer s.partnerMu.Unlock()
	s.partnerUp = true
	select {
	case s.partnerCh <- struct{}{}:
	default:
	}
}

// PartnerUp reports the partner-confirmed flag.
func (s *Sync) PartnerUp() bool {
	s.partnerMu.Lock()
	defer s.partnerMu.Unlock()
	return s.partnerUp
}

// WaitPartner waits up to timeout for a partner signal and reports the flag
// afterwards. The flag is checked on every wake, so a stale or early wake
// never counts as confirmation.
func (s *Sync) WaitPartner(timeout time.Duration) bool {
	if s.PartnerUp() {
		return true
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-s.partnerCh:
	case <-t.C:
	}
	return s.PartnerUp()
}
